// Package timeslider derives a time slider's published state from the
// time-aware layers of a bound map or scene view.
//
// All work is synchronous and happens inside the handler of the triggering
// event. A Controller is not safe for concurrent use; callers serialize
// access, e.g. through a dispatch loop or a UI event loop.
package timeslider

import (
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/signal"
)

const defaultStepCacheSize = 256

type Options struct {
	Logger   *slog.Logger
	Register prometheus.Registerer
	// StepCacheSize bounds the step -> timestamp memo.
	StepCacheSize int
}

type Controller struct {
	log *slog.Logger
	ms  *metricSet

	view       geoview.View
	state      State
	layers     geoview.LayerCollection
	viewConns  signal.Group
	layerConns signal.Group
	pushing    bool

	// last published snapshot
	extent   model.TimeExtent
	interval model.TimeValue
	steps    int
	rng      model.StepRange
	// rng was derived from the view window; End counts back from steps
	fromView bool

	stepTimes *lru.Cache[int, time.Time]

	viewChanged     signal.Signal[geoview.View]
	extentChanged   signal.Signal[model.TimeExtent]
	intervalChanged signal.Signal[model.TimeValue]
	stepsChanged    signal.Signal[int]
	startChanged    signal.Signal[int]
	endChanged      signal.Signal[int]
	changed         signal.Signal[Property]
}

func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	size := opts.StepCacheSize
	if size <= 0 {
		size = defaultStepCacheSize
	}
	cache, _ := lru.New[int, time.Time](size)
	return &Controller{
		log:       opts.Logger.With("component", "timeslider"),
		ms:        newMetricSet(opts.Register),
		stepTimes: cache,
	}
}

func (c *Controller) View() geoview.View { return c.view }
func (c *Controller) State() State       { return c.state }

// SetView binds the controller to v, or detaches it when v is nil. All
// subscriptions held for the previous view are released before any new one
// is made.
func (c *Controller) SetView(v geoview.View) {
	if v == c.view {
		return
	}
	c.detach()
	c.view = v
	c.viewChanged.Emit(v)

	if v == nil {
		c.state = Unbound
		c.log.Debug("view detached")
		c.Reconcile(TriggerViewRebound)
		return
	}

	c.state = Bound
	c.viewConns.Add(
		v.OnDataModelChanged(func() { c.Reconcile(TriggerCollectionChanged) }),
		v.OnTimeExtentChanged(func(model.TimeExtent) {
			// our own push from SetSteps
			if c.pushing {
				return
			}
			c.Reconcile(TriggerViewWindowChanged)
		}),
	)
	c.Reconcile(TriggerViewRebound)
}

// Detach is SetView(nil).
func (c *Controller) Detach() { c.SetView(nil) }

func (c *Controller) detach() {
	c.layerConns.DisconnectAll()
	c.viewConns.DisconnectAll()
	c.layers = nil
	c.ms.subscriptions.Set(0)
}

// Reconcile re-derives the time-aware layer set, resubscribes to it and
// republishes whatever changed. Running it against unchanged inputs publishes nothing.
func (c *Controller) Reconcile(t Trigger) {
	c.ms.reconciles.WithLabelValues(t.String()).Inc()
	c.resubscribe()

	extent := FullTimeExtent(c.layers)
	interval := TimeInterval(c.layers)
	n := NumberOfSteps(extent, interval)

	var (
		rng      model.StepRange
		fromView bool
	)
	if c.view != nil {
		window := c.view.TimeExtent()
		rng = StepsForViewWindow(extent, interval, window)
		fromView = n > 0 && !window.IsEmpty()
		c.state = Synchronized
	} else {
		c.state = Unbound
	}

	changed := c.publish(extent, interval, n, rng, fromView)
	c.log.Debug("reconciled",
		"trigger", t.String(),
		"extent", extent.String(),
		"interval", interval.String(),
		"steps", n,
		"start_step", rng.Start,
		"end_step", rng.End,
		"changed", changed.Names())
}

func (c *Controller) resubscribe() {
	c.layerConns.DisconnectAll()
	c.layers = nil
	defer func() { c.ms.subscriptions.Set(float64(c.layerConns.Len())) }()

	if c.view == nil {
		return
	}
	dm := c.view.DataModel()
	if dm == nil {
		return
	}
	lc := dm.OperationalLayers()
	if lc == nil {
		return
	}
	c.layers = lc
	c.layerConns.Add(
		lc.OnLayerAdded(func(geoview.Layer) { c.Reconcile(TriggerLayerAdded) }),
		lc.OnLayerRemoved(func(geoview.Layer) { c.Reconcile(TriggerLayerRemoved) }),
	)
	for _, l := range lc.Layers() {
		if _, ok := l.(geoview.TimeAware); !ok {
			continue
		}
		c.layerConns.Add(l.OnLoadStatusChanged(func(model.LoadStatus) {
			c.Reconcile(TriggerLoadStatusChanged)
		}))
	}
}

func (c *Controller) publish(extent model.TimeExtent, interval model.TimeValue, n int, rng model.StepRange, fromView bool) Property {
	prev, next := c.Selection(), absolute(rng, n, fromView)
	var p Property
	if !extent.Equal(c.extent) {
		p |= PropFullTimeExtent
	}
	if interval != c.interval {
		p |= PropTimeInterval
	}
	if n != c.steps {
		p |= PropNumberOfSteps
	}
	if rng.Start != c.rng.Start || next.Start != prev.Start {
		p |= PropStartStep
	}
	if rng.End != c.rng.End || next.End != prev.End {
		p |= PropEndStep
	}
	c.fromView = fromView
	if p == 0 {
		return 0
	}
	if p.Has(PropFullTimeExtent | PropTimeInterval) {
		c.stepTimes.Purge()
	}
	c.extent, c.interval, c.steps, c.rng = extent, interval, n, rng
	c.notify(p)
	return p
}

// notify emits one signal per changed property, then one aggregate signal.
func (c *Controller) notify(p Property) {
	for _, name := range p.Names() {
		c.ms.publishes.WithLabelValues(name).Inc()
	}
	if p.Has(PropFullTimeExtent) {
		c.extentChanged.Emit(c.extent)
	}
	if p.Has(PropTimeInterval) {
		c.intervalChanged.Emit(c.interval)
	}
	if p.Has(PropNumberOfSteps) {
		c.stepsChanged.Emit(c.steps)
	}
	if p.Has(PropStartStep) {
		c.startChanged.Emit(c.rng.Start)
	}
	if p.Has(PropEndStep) {
		c.endChanged.Emit(c.rng.End)
	}
	c.changed.Emit(p)
}

func (c *Controller) FullTimeExtent() model.TimeExtent { return c.extent }
func (c *Controller) TimeInterval() model.TimeValue    { return c.interval }
func (c *Controller) NumberOfSteps() int               { return c.steps }
func (c *Controller) StartStep() int                   { return c.rng.Start }
func (c *Controller) EndStep() int                     { return c.rng.End }
func (c *Controller) Steps() model.StepRange           { return c.rng }

// Selection returns the selected steps as absolute positions in
// [0, NumberOfSteps]. A range written through SetSteps already is one; a
// range derived from the view window has its End counted back from the
// extent end and is converted here.
func (c *Controller) Selection() model.StepRange {
	return absolute(c.rng, c.steps, c.fromView)
}

func absolute(rng model.StepRange, n int, fromView bool) model.StepRange {
	if !fromView {
		return rng
	}
	return model.StepRange{Start: rng.Start, End: n - rng.End}.Clamp(n)
}

// SetSteps stores a new range of absolute step positions and pushes the
// matching time window to the bound view. Steps are clamped into
// [0, NumberOfSteps] with start <= end; writing the current selection is a
// no-op.
func (c *Controller) SetSteps(start, end int) {
	rng := model.StepRange{Start: start, End: end}.Clamp(c.steps)
	prev := c.Selection()

	var p Property
	if rng.Start != c.rng.Start || rng.Start != prev.Start {
		p |= PropStartStep
	}
	if rng.End != c.rng.End || rng.End != prev.End {
		p |= PropEndStep
	}
	if p == 0 {
		c.fromView = false
		c.ms.stepWrites.WithLabelValues("unchanged").Inc()
		return
	}
	c.rng, c.fromView = rng, false
	c.pushWindow()
	c.ms.stepWrites.WithLabelValues("applied").Inc()
	c.notify(p)
}

func (c *Controller) pushWindow() {
	if c.view == nil {
		return
	}
	start, ok := c.TimeForStep(c.rng.Start)
	if !ok {
		return
	}
	end, ok := c.TimeForStep(c.rng.End)
	if !ok {
		return
	}
	c.pushing = true
	defer func() { c.pushing = false }()
	c.view.SetTimeExtent(model.NewTimeExtent(start, end))
}

// TimeForStep converts a step index to a timestamp using the published
// extent and interval. ok is false when either is empty.
func (c *Controller) TimeForStep(step int) (time.Time, bool) {
	if v, ok := c.stepTimes.Get(step); ok {
		return v, true
	}
	t, ok := TimeForStep(c.extent, c.interval, step)
	if ok {
		c.stepTimes.Add(step, t)
	}
	return t, ok
}

func (c *Controller) OnViewChanged(fn func(geoview.View)) *signal.Connection {
	return c.viewChanged.Connect(fn)
}

func (c *Controller) OnFullTimeExtentChanged(fn func(model.TimeExtent)) *signal.Connection {
	return c.extentChanged.Connect(fn)
}

func (c *Controller) OnTimeIntervalChanged(fn func(model.TimeValue)) *signal.Connection {
	return c.intervalChanged.Connect(fn)
}

func (c *Controller) OnNumberOfStepsChanged(fn func(int)) *signal.Connection {
	return c.stepsChanged.Connect(fn)
}

func (c *Controller) OnStartStepChanged(fn func(int)) *signal.Connection {
	return c.startChanged.Connect(fn)
}

func (c *Controller) OnEndStepChanged(fn func(int)) *signal.Connection {
	return c.endChanged.Connect(fn)
}

// OnChanged fires once per reconcile or step write that changed anything,
// with the set of changed properties.
func (c *Controller) OnChanged(fn func(Property)) *signal.Connection {
	return c.changed.Connect(fn)
}
