package timeslider

import (
	"math"
	"time"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
)

// TimeForStep returns extent.Start + step*interval. It does not clamp: steps
// outside [0, NumberOfSteps] extrapolate linearly. ok is false when either
// input is empty.
func TimeForStep(extent model.TimeExtent, interval model.TimeValue, step int) (t time.Time, ok bool) {
	if extent.IsEmpty() || interval.IsEmpty() {
		return time.Time{}, false
	}
	off := math.Round(float64(step) * ToMilliseconds(interval) * float64(time.Millisecond))
	switch {
	case math.IsNaN(off):
		off = 0
	case off >= math.MaxInt64:
		off = math.MaxInt64
	case off <= math.MinInt64:
		off = math.MinInt64
	}
	return extent.Start().Add(time.Duration(off)), true
}

// StepsForViewWindow maps the visible window onto step indices. An empty
// window selects the full range. Start counts steps from the extent start to
// the window start; End counts steps from the window end back to the extent
// end, so both bounds are steps trimmed from their side. Each bound is held
// in [0, n] on its own and End may be below Start.
func StepsForViewWindow(extent model.TimeExtent, interval model.TimeValue, window model.TimeExtent) model.StepRange {
	n := NumberOfSteps(extent, interval)
	if n == 0 {
		return model.StepRange{}
	}
	if window.IsEmpty() {
		return model.StepRange{Start: 0, End: n}
	}
	ms := ToMilliseconds(interval)
	r := model.StepRange{
		Start: stepsIn(durationMS(window.Start().Sub(extent.Start())), ms),
		End:   stepsIn(durationMS(extent.End().Sub(window.End())), ms),
	}
	return r.Bound(n)
}
