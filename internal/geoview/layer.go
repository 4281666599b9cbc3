package geoview

import (
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/signal"
)

// BasicLayer has a load lifecycle but no time metadata.
type BasicLayer struct {
	id            string
	status        model.LoadStatus
	statusChanged signal.Signal[model.LoadStatus]
}

var _ Layer = (*BasicLayer)(nil)

func NewBasicLayer(id string, status model.LoadStatus) *BasicLayer {
	return &BasicLayer{id: id, status: status}
}

func (l *BasicLayer) ID() string                   { return l.id }
func (l *BasicLayer) LoadStatus() model.LoadStatus { return l.status }

func (l *BasicLayer) SetLoadStatus(s model.LoadStatus) {
	if s == l.status {
		return
	}
	l.status = s
	l.statusChanged.Emit(s)
}

func (l *BasicLayer) OnLoadStatusChanged(fn func(model.LoadStatus)) *signal.Connection {
	return l.statusChanged.Connect(fn)
}

// Subscribers reports how many load-status slots are connected.
func (l *BasicLayer) Subscribers() int { return l.statusChanged.Len() }

// TemporalLayer is a time-aware layer.
type TemporalLayer struct {
	BasicLayer
	timeFiltering bool
	extent        model.TimeExtent
	interval      model.TimeValue
}

var _ TimeAware = (*TemporalLayer)(nil)

type TemporalOptions struct {
	Status        model.LoadStatus
	TimeFiltering bool
	Extent        model.TimeExtent
	Interval      model.TimeValue
}

func NewTemporalLayer(id string, o TemporalOptions) *TemporalLayer {
	return &TemporalLayer{
		BasicLayer:    BasicLayer{id: id, status: o.Status},
		timeFiltering: o.TimeFiltering,
		extent:        o.Extent,
		interval:      o.Interval,
	}
}

func (l *TemporalLayer) IsTimeFilteringEnabled() bool     { return l.timeFiltering }
func (l *TemporalLayer) FullTimeExtent() model.TimeExtent { return l.extent }
func (l *TemporalLayer) TimeInterval() model.TimeValue    { return l.interval }

// SetTimeInfo replaces the layer's time metadata. Listeners are not notified;
// callers that change a loaded layer should cycle it through Loading.
func (l *TemporalLayer) SetTimeInfo(timeFiltering bool, extent model.TimeExtent, interval model.TimeValue) {
	l.timeFiltering = timeFiltering
	l.extent = extent
	l.interval = interval
}
