package geoview

import (
	"math"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/signal"
)

// Map is a 2D data model.
type Map struct {
	layers *LayerList
}

func NewMap(layers *LayerList) *Map {
	if layers == nil {
		layers = NewLayerList()
	}
	return &Map{layers: layers}
}

func (m *Map) OperationalLayers() LayerCollection { return m.layers }
func (m *Map) LayerList() *LayerList              { return m.layers }

// Scene is a 3D data model.
type Scene struct {
	layers *LayerList
}

func NewScene(layers *LayerList) *Scene {
	if layers == nil {
		layers = NewLayerList()
	}
	return &Scene{layers: layers}
}

func (s *Scene) OperationalLayers() LayerCollection { return s.layers }
func (s *Scene) LayerList() *LayerList              { return s.layers }

// timeWindow is shared by both view kinds.
type timeWindow struct {
	extent  model.TimeExtent
	changed signal.Signal[model.TimeExtent]
}

func (w *timeWindow) TimeExtent() model.TimeExtent { return w.extent }

func (w *timeWindow) SetTimeExtent(e model.TimeExtent) {
	if w.extent.Equal(e) {
		return
	}
	w.extent = e
	w.changed.Emit(e)
}

func (w *timeWindow) OnTimeExtentChanged(fn func(model.TimeExtent)) *signal.Connection {
	return w.changed.Connect(fn)
}

// MapView renders a Map; its heading is the map rotation.
type MapView struct {
	timeWindow
	m               *Map
	rotation        float64
	mapChanged      signal.Signal[struct{}]
	rotationChanged signal.Signal[float64]
}

var (
	_ View    = (*MapView)(nil)
	_ Rotator = (*MapView)(nil)
)

func NewMapView(m *Map) *MapView {
	return &MapView{m: m}
}

func (v *MapView) Map() *Map { return v.m }

func (v *MapView) SetMap(m *Map) {
	if m == v.m {
		return
	}
	v.m = m
	v.mapChanged.Emit(struct{}{})
}

func (v *MapView) DataModel() DataModel {
	if v.m == nil {
		return nil
	}
	return v.m
}

func (v *MapView) OnDataModelChanged(fn func()) *signal.Connection {
	return v.mapChanged.Connect(func(struct{}) { fn() })
}

func (v *MapView) Heading() float64 { return v.rotation }

func (v *MapView) SetHeading(deg float64) {
	deg = normalizeDegrees(deg)
	if deg == v.rotation {
		return
	}
	v.rotation = deg
	v.rotationChanged.Emit(deg)
}

func (v *MapView) OnHeadingChanged(fn func(float64)) *signal.Connection {
	return v.rotationChanged.Connect(fn)
}

// Camera is a scene viewpoint orientation in degrees.
type Camera struct {
	Heading float64
	Pitch   float64
	Roll    float64
}

// RotateTo returns a camera at the same position with the given orientation.
func (c Camera) RotateTo(heading, pitch, roll float64) Camera {
	return Camera{Heading: normalizeDegrees(heading), Pitch: pitch, Roll: roll}
}

// SceneView renders a Scene; its heading is the camera heading.
type SceneView struct {
	timeWindow
	s                *Scene
	camera           Camera
	sceneChanged     signal.Signal[struct{}]
	viewpointChanged signal.Signal[Camera]
}

var (
	_ View    = (*SceneView)(nil)
	_ Rotator = (*SceneView)(nil)
)

func NewSceneView(s *Scene) *SceneView {
	return &SceneView{s: s}
}

func (v *SceneView) Scene() *Scene { return v.s }

func (v *SceneView) SetScene(s *Scene) {
	if s == v.s {
		return
	}
	v.s = s
	v.sceneChanged.Emit(struct{}{})
}

func (v *SceneView) DataModel() DataModel {
	if v.s == nil {
		return nil
	}
	return v.s
}

func (v *SceneView) OnDataModelChanged(fn func()) *signal.Connection {
	return v.sceneChanged.Connect(func(struct{}) { fn() })
}

func (v *SceneView) Camera() Camera { return v.camera }

func (v *SceneView) SetViewpointCamera(c Camera) {
	c.Heading = normalizeDegrees(c.Heading)
	if c == v.camera {
		return
	}
	v.camera = c
	v.viewpointChanged.Emit(c)
}

func (v *SceneView) Heading() float64 { return v.camera.Heading }

// SetHeading keeps the current pitch and roll.
func (v *SceneView) SetHeading(deg float64) {
	v.SetViewpointCamera(v.camera.RotateTo(deg, v.camera.Pitch, v.camera.Roll))
}

func (v *SceneView) OnHeadingChanged(fn func(float64)) *signal.Connection {
	return v.viewpointChanged.Connect(func(c Camera) { fn(c.Heading) })
}

// normalizeDegrees maps any angle into [0, 360).
func normalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}

// NewView builds an empty view of the given kind around the layer list.
func NewView(kind Kind, layers *LayerList) (View, bool) {
	switch kind {
	case KindMap:
		return NewMapView(NewMap(layers)), true
	case KindScene:
		return NewSceneView(NewScene(layers)), true
	default:
		return nil, false
	}
}
