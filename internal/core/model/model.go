// Package model defines the time value types shared by the slider core and its collaborators.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type TimeUnit int

const (
	UnitUnknown TimeUnit = iota
	Milliseconds
	Seconds
	Minutes
	Hours
	Days
	Weeks
	Months
	Years
	Decades
	Centuries
)

var unitNames = [...]string{
	UnitUnknown:  "unknown",
	Milliseconds: "milliseconds",
	Seconds:      "seconds",
	Minutes:      "minutes",
	Hours:        "hours",
	Days:         "days",
	Weeks:        "weeks",
	Months:       "months",
	Years:        "years",
	Decades:      "decades",
	Centuries:    "centuries",
}

func (u TimeUnit) String() string {
	if u < 0 || int(u) >= len(unitNames) {
		return unitNames[UnitUnknown]
	}
	return unitNames[u]
}

// ParseTimeUnit accepts the plural unit name, case-insensitive, with an optional trailing "s" dropped.
func ParseTimeUnit(s string) (TimeUnit, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UnitUnknown, false
	}
	for i, n := range unitNames {
		if i == int(UnitUnknown) {
			continue
		}
		if s == n || s+"s" == n {
			return TimeUnit(i), true
		}
	}
	// "century" does not pluralise with a plain "s"
	if s == "century" {
		return Centuries, true
	}
	return UnitUnknown, false
}

func (u TimeUnit) MarshalText() ([]byte, error) {
	return []byte(u.String()), nil
}

func (u *TimeUnit) UnmarshalText(b []byte) error {
	v, ok := ParseTimeUnit(string(b))
	if !ok {
		return fmt.Errorf("unknown time unit %q", string(b))
	}
	*u = v
	return nil
}

// TimeValue is a duration magnitude in a calendar unit. The zero value is empty.
type TimeValue struct {
	duration float64
	unit     TimeUnit
	set      bool
}

func NewTimeValue(duration float64, unit TimeUnit) TimeValue {
	return TimeValue{duration: duration, unit: unit, set: true}
}

func (v TimeValue) Duration() float64 { return v.duration }
func (v TimeValue) Unit() TimeUnit    { return v.unit }
func (v TimeValue) IsEmpty() bool     { return !v.set }

func (v TimeValue) String() string {
	if v.IsEmpty() {
		return "<empty>"
	}
	return fmt.Sprintf("%g %s", v.duration, v.unit)
}

type timeValueJSON struct {
	Duration float64  `json:"duration"`
	Unit     TimeUnit `json:"unit"`
}

func (v TimeValue) MarshalJSON() ([]byte, error) {
	if v.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(timeValueJSON{Duration: v.duration, Unit: v.unit})
}

func (v *TimeValue) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*v = TimeValue{}
		return nil
	}
	var w timeValueJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("time value: %w", err)
	}
	*v = NewTimeValue(w.Duration, w.Unit)
	return nil
}

// TimeExtent is a closed [start, end] range. The zero value is empty.
type TimeExtent struct {
	start time.Time
	end   time.Time
	set   bool
}

// NewTimeExtent orders its arguments so that start never follows end.
func NewTimeExtent(start, end time.Time) TimeExtent {
	if end.Before(start) {
		start, end = end, start
	}
	return TimeExtent{start: start, end: end, set: true}
}

func (e TimeExtent) Start() time.Time { return e.start }
func (e TimeExtent) End() time.Time   { return e.end }
func (e TimeExtent) IsEmpty() bool    { return !e.set }

func (e TimeExtent) Duration() time.Duration {
	if e.IsEmpty() {
		return 0
	}
	return e.end.Sub(e.start)
}

// Union spans both extents; an empty side contributes nothing.
func (e TimeExtent) Union(o TimeExtent) TimeExtent {
	switch {
	case e.IsEmpty():
		return o
	case o.IsEmpty():
		return e
	}
	start, end := e.start, e.end
	if o.start.Before(start) {
		start = o.start
	}
	if o.end.After(end) {
		end = o.end
	}
	return TimeExtent{start: start, end: end, set: true}
}

func (e TimeExtent) Equal(o TimeExtent) bool {
	if e.IsEmpty() || o.IsEmpty() {
		return e.IsEmpty() == o.IsEmpty()
	}
	return e.start.Equal(o.start) && e.end.Equal(o.end)
}

func (e TimeExtent) String() string {
	if e.IsEmpty() {
		return "<empty>"
	}
	return e.start.UTC().Format(time.RFC3339) + "/" + e.end.UTC().Format(time.RFC3339)
}

type timeExtentJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (e TimeExtent) MarshalJSON() ([]byte, error) {
	if e.IsEmpty() {
		return []byte("null"), nil
	}
	return json.Marshal(timeExtentJSON{Start: e.start.UTC(), End: e.end.UTC()})
}

func (e *TimeExtent) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*e = TimeExtent{}
		return nil
	}
	var w timeExtentJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return fmt.Errorf("time extent: %w", err)
	}
	if w.Start.IsZero() || w.End.IsZero() {
		return fmt.Errorf("time extent: start and end are required")
	}
	if w.End.Before(w.Start) {
		return fmt.Errorf("time extent: end %s before start %s", w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
	}
	*e = NewTimeExtent(w.Start, w.End)
	return nil
}

type LoadStatus int

const (
	LoadStatusUnknown LoadStatus = iota
	NotLoaded
	Loading
	Loaded
	FailedToLoad
)

var loadStatusNames = [...]string{
	LoadStatusUnknown: "unknown",
	NotLoaded:         "not_loaded",
	Loading:           "loading",
	Loaded:            "loaded",
	FailedToLoad:      "failed_to_load",
}

func (s LoadStatus) String() string {
	if s < 0 || int(s) >= len(loadStatusNames) {
		return loadStatusNames[LoadStatusUnknown]
	}
	return loadStatusNames[s]
}

func ParseLoadStatus(s string) (LoadStatus, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range loadStatusNames {
		if s == n {
			return LoadStatus(i), true
		}
	}
	return LoadStatusUnknown, false
}

func (s LoadStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *LoadStatus) UnmarshalText(b []byte) error {
	v, ok := ParseLoadStatus(string(b))
	if !ok {
		return fmt.Errorf("unknown load status %q", string(b))
	}
	*s = v
	return nil
}

// StepRange is a pair of step indices into the full extent.
type StepRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Bound clamps each step into [0, n] on its own; the order of the two is
// left alone.
func (r StepRange) Bound(n int) StepRange {
	if n < 0 {
		n = 0
	}
	r.Start = clampInt(r.Start, 0, n)
	r.End = clampInt(r.End, 0, n)
	return r
}

// Clamp bounds both steps to [0, n] and keeps Start <= End.
func (r StepRange) Clamp(n int) StepRange {
	r = r.Bound(n)
	if r.End < r.Start {
		r.End = r.Start
	}
	return r
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
