package layerevents

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	obs "github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
)

type Result int

const (
	Applied Result = iota
	Duplicate
)

func (r Result) String() string {
	if r == Duplicate {
		return "duplicate"
	}
	return "applied"
}

var (
	ErrLayerExists  = errors.New("layer already exists")
	ErrUnknownLayer = errors.New("unknown layer")
	ErrNotTemporal  = errors.New("layer has no time metadata")
)

type statusSetter interface {
	SetLoadStatus(model.LoadStatus)
}

// Applier mutates a LayerList from events. It must run on the goroutine that
// owns the list (see internal/dispatch).
type Applier struct {
	list   *geoview.LayerList
	dedupe *seqDedupe
	log    *slog.Logger
}

func NewApplier(list *geoview.LayerList, dedupeSize int, log *slog.Logger) *Applier {
	if log == nil {
		log = slog.Default()
	}
	return &Applier{
		list:   list,
		dedupe: newSeqDedupe(dedupeSize),
		log:    log.With("component", "layerevents"),
	}
}

// Apply validates ev and applies it. Replays with a Seq at or below the last
// applied one for the same layer are skipped and reported as Duplicate.
func (a *Applier) Apply(ev Event) (res Result, err error) {
	start := time.Now()
	defer func() {
		result := res.String()
		switch {
		case errors.Is(err, ErrInvalid):
			result = "invalid"
		case err != nil:
			result = "error"
		}
		obs.ObserveLayerEvent(ev.Op, result, time.Since(start).Seconds())
	}()

	if err := ev.Validate(); err != nil {
		return Applied, err
	}
	if ev.Seq > 0 && a.dedupe.stale(ev.Layer, ev.Seq) {
		a.log.Debug("skipping replayed layer event", "layer", ev.Layer, "op", ev.Op, "seq", ev.Seq)
		return Duplicate, nil
	}

	switch ev.Op {
	case OpAdd:
		err = a.add(ev)
	case OpRemove:
		if !a.list.Remove(ev.Layer) {
			err = fmt.Errorf("remove %q: %w", ev.Layer, ErrUnknownLayer)
		}
	case OpLoadStatus:
		err = a.setStatus(ev)
	case OpUpdate:
		err = a.update(ev)
	}
	if err != nil {
		return Applied, err
	}
	if ev.Seq > 0 {
		a.dedupe.record(ev.Layer, ev.Seq)
	}
	a.log.Debug("applied layer event", "layer", ev.Layer, "op", ev.Op, "seq", ev.Seq)
	return Applied, nil
}

func (a *Applier) add(ev Event) error {
	if _, ok := a.list.Get(ev.Layer); ok {
		return fmt.Errorf("add %q: %w", ev.Layer, ErrLayerExists)
	}
	status := model.Loaded
	if ev.LoadStatus != nil {
		status = *ev.LoadStatus
	}
	if !ev.HasTimeInfo() {
		a.list.Append(geoview.NewBasicLayer(ev.Layer, status))
		return nil
	}
	opts := geoview.TemporalOptions{Status: status}
	if ev.TimeFiltering != nil {
		opts.TimeFiltering = *ev.TimeFiltering
	} else {
		opts.TimeFiltering = true
	}
	if ev.Extent != nil {
		opts.Extent = *ev.Extent
	}
	if ev.Interval != nil {
		opts.Interval = *ev.Interval
	}
	a.list.Append(geoview.NewTemporalLayer(ev.Layer, opts))
	return nil
}

func (a *Applier) setStatus(ev Event) error {
	l, ok := a.list.Get(ev.Layer)
	if !ok {
		return fmt.Errorf("load_status %q: %w", ev.Layer, ErrUnknownLayer)
	}
	s, ok := l.(statusSetter)
	if !ok {
		return fmt.Errorf("load_status %q: layer status is read-only", ev.Layer)
	}
	s.SetLoadStatus(*ev.LoadStatus)
	return nil
}

// update replaces time metadata and cycles the layer through Loading so
// listeners see the change.
func (a *Applier) update(ev Event) error {
	l, ok := a.list.Get(ev.Layer)
	if !ok {
		return fmt.Errorf("update %q: %w", ev.Layer, ErrUnknownLayer)
	}
	tl, ok := l.(*geoview.TemporalLayer)
	if !ok {
		return fmt.Errorf("update %q: %w", ev.Layer, ErrNotTemporal)
	}

	tf, extent, interval := tl.IsTimeFilteringEnabled(), tl.FullTimeExtent(), tl.TimeInterval()
	if ev.TimeFiltering != nil {
		tf = *ev.TimeFiltering
	}
	if ev.Extent != nil {
		extent = *ev.Extent
	}
	if ev.Interval != nil {
		interval = *ev.Interval
	}

	final := tl.LoadStatus()
	if ev.LoadStatus != nil {
		final = *ev.LoadStatus
	}
	tl.SetLoadStatus(model.Loading)
	tl.SetTimeInfo(tf, extent, interval)
	tl.SetLoadStatus(final)
	return nil
}
