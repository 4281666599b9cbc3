package geoview

import (
	"github.com/mohammed-shakir/geotime-toolkit/internal/signal"
)

// LayerList is an ordered, mutable operational layer collection.
type LayerList struct {
	layers  []Layer
	added   signal.Signal[Layer]
	removed signal.Signal[Layer]
}

var _ LayerCollection = (*LayerList)(nil)

func NewLayerList(layers ...Layer) *LayerList {
	ll := &LayerList{}
	for _, l := range layers {
		if l != nil {
			ll.layers = append(ll.layers, l)
		}
	}
	return ll
}

// Layers returns a copy; mutating it does not affect the list.
func (ll *LayerList) Layers() []Layer {
	out := make([]Layer, len(ll.layers))
	copy(out, ll.layers)
	return out
}

func (ll *LayerList) Len() int { return len(ll.layers) }

func (ll *LayerList) Get(id string) (Layer, bool) {
	for _, l := range ll.layers {
		if l.ID() == id {
			return l, true
		}
	}
	return nil, false
}

func (ll *LayerList) Append(l Layer) {
	if l == nil {
		return
	}
	ll.layers = append(ll.layers, l)
	ll.added.Emit(l)
}

// Remove drops the first layer with the given id and reports whether one was found.
func (ll *LayerList) Remove(id string) bool {
	for i, l := range ll.layers {
		if l.ID() != id {
			continue
		}
		ll.layers = append(ll.layers[:i], ll.layers[i+1:]...)
		ll.removed.Emit(l)
		return true
	}
	return false
}

func (ll *LayerList) OnLayerAdded(fn func(Layer)) *signal.Connection {
	return ll.added.Connect(fn)
}

func (ll *LayerList) OnLayerRemoved(fn func(Layer)) *signal.Connection {
	return ll.removed.Connect(fn)
}

// Subscribers reports connected added+removed slots.
func (ll *LayerList) Subscribers() int { return ll.added.Len() + ll.removed.Len() }
