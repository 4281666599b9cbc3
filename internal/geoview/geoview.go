// Package geoview models the map and scene views a slider binds to: their data
// model, operational layer list, visible time window and heading.
//
// Everything here is owned by the view side. Consumers hold non-owning
// references and receive changes through signal connections they must release.
package geoview

import (
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/signal"
)

type Layer interface {
	ID() string
	LoadStatus() model.LoadStatus
	OnLoadStatusChanged(fn func(model.LoadStatus)) *signal.Connection
}

// TimeAware is implemented by layers that carry time metadata and support time filtering.
type TimeAware interface {
	Layer
	IsTimeFilteringEnabled() bool
	FullTimeExtent() model.TimeExtent
	TimeInterval() model.TimeValue
}

type LayerCollection interface {
	Layers() []Layer
	OnLayerAdded(fn func(Layer)) *signal.Connection
	OnLayerRemoved(fn func(Layer)) *signal.Connection
}

type DataModel interface {
	OperationalLayers() LayerCollection
}

// View is the capability the time slider needs from a map or scene view.
type View interface {
	// DataModel returns nil when no map or scene is attached.
	DataModel() DataModel
	OnDataModelChanged(fn func()) *signal.Connection

	// TimeExtent is the visible time window; empty means unfiltered.
	TimeExtent() model.TimeExtent
	SetTimeExtent(model.TimeExtent)
	OnTimeExtentChanged(fn func(model.TimeExtent)) *signal.Connection
}

// Rotator is the heading capability used by the north arrow.
type Rotator interface {
	Heading() float64
	SetHeading(deg float64)
	OnHeadingChanged(fn func(float64)) *signal.Connection
}

// Kind names a concrete view variant.
type Kind string

const (
	KindMap   Kind = "map"
	KindScene Kind = "scene"
)
