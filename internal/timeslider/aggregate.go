package timeslider

import (
	"math"
	"time"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
)

// maxSteps bounds NumberOfSteps for pathological interval/extent ratios.
const maxSteps = math.MaxInt32

// eachTimeAware visits the layers that are loaded and have time filtering enabled.
func eachTimeAware(layers geoview.LayerCollection, fn func(geoview.TimeAware)) {
	if layers == nil {
		return
	}
	for _, l := range layers.Layers() {
		if l == nil || l.LoadStatus() != model.Loaded {
			continue
		}
		ta, ok := l.(geoview.TimeAware)
		if !ok || !ta.IsTimeFilteringEnabled() {
			continue
		}
		fn(ta)
	}
}

// FullTimeExtent is the union of every eligible layer's extent.
func FullTimeExtent(layers geoview.LayerCollection) model.TimeExtent {
	var out model.TimeExtent
	eachTimeAware(layers, func(l geoview.TimeAware) {
		out = out.Union(l.FullTimeExtent())
	})
	return out
}

// TimeInterval is the finest interval among eligible layers.
func TimeInterval(layers geoview.LayerCollection) model.TimeValue {
	var out model.TimeValue
	eachTimeAware(layers, func(l geoview.TimeAware) {
		out = MinInterval(out, l.TimeInterval())
	})
	return out
}

// NumberOfSteps is ceil(extent / interval), so a trailing partial interval still gets a step.
func NumberOfSteps(extent model.TimeExtent, interval model.TimeValue) int {
	if extent.IsEmpty() || interval.IsEmpty() {
		return 0
	}
	return stepsIn(durationMS(extent.Duration()), ToMilliseconds(interval))
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func stepsIn(rangeMS, intervalMS float64) int {
	if intervalMS <= 0 || math.IsNaN(intervalMS) || math.IsInf(intervalMS, 0) {
		return 0
	}
	n := math.Ceil(rangeMS / intervalMS)
	switch {
	case n > maxSteps:
		return maxSteps
	case n < -maxSteps:
		return -maxSteps
	}
	return int(n)
}
