package timeslider

import "github.com/mohammed-shakir/geotime-toolkit/internal/core/model"

// calendar units use fixed day counts; month and year lengths are not tracked
const (
	msPerSecond    = 1000.0
	msPerMinute    = 60000.0
	msPerHour      = 3600000.0
	msPerDay       = 86400000.0
	msPerWeek      = 604800000.0
	daysPerYear    = 365.0
	monthsPerYear  = 12
	daysPerDecade  = 3650.0
	daysPerCentury = 36500.0
)

// ToMilliseconds converts v to canonical milliseconds. Unknown units pass the magnitude through.
func ToMilliseconds(v model.TimeValue) float64 {
	d := v.Duration()
	switch v.Unit() {
	case model.Milliseconds:
		return d
	case model.Seconds:
		return d * msPerSecond
	case model.Minutes:
		return d * msPerMinute
	case model.Hours:
		return d * msPerHour
	case model.Days:
		return d * msPerDay
	case model.Weeks:
		return d * msPerWeek
	case model.Months:
		return d * (daysPerYear / monthsPerYear) * msPerDay
	case model.Years:
		return d * msPerDay * daysPerYear
	case model.Decades:
		return d * msPerDay * daysPerDecade
	case model.Centuries:
		return d * msPerDay * daysPerCentury
	default:
		return d
	}
}

// Compare returns -1, 0 or +1. Equal units compare magnitudes directly.
func Compare(a, b model.TimeValue) int {
	var x, y float64
	if a.Unit() == b.Unit() {
		x, y = a.Duration(), b.Duration()
	} else {
		x, y = ToMilliseconds(a), ToMilliseconds(b)
	}
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

// MinInterval picks the finer of two intervals, ignoring empty ones.
// Equal spans in different units resolve to the smaller unit so the fold is order independent.
func MinInterval(a, b model.TimeValue) model.TimeValue {
	switch {
	case a.IsEmpty():
		return b
	case b.IsEmpty():
		return a
	}
	switch Compare(a, b) {
	case -1:
		return a
	case 1:
		return b
	}
	if a.Unit() < b.Unit() {
		return a
	}
	return b
}
