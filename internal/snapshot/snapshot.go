// Package snapshot captures the published slider and north arrow state and
// shares it through Redis.
package snapshot

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/northarrow"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

// Snapshot is the wire form of GET /v1/slider and of the Redis value.
type Snapshot struct {
	View           string           `json:"view"`
	State          string           `json:"state"`
	FullTimeExtent model.TimeExtent `json:"full_time_extent"`
	TimeInterval   model.TimeValue  `json:"time_interval"`
	NumberOfSteps  int              `json:"number_of_steps"`
	StartStep      int              `json:"start_step"`
	EndStep        int              `json:"end_step"`
	Selection      model.StepRange  `json:"selection"`
	StartTime      *time.Time       `json:"start_time"`
	EndTime        *time.Time       `json:"end_time"`
	Heading        float64          `json:"heading"`
	AutoHide       bool             `json:"auto_hide"`
}

// Capture reads both controllers. It must run where the controllers are
// owned; na may be nil.
func Capture(view string, ts *timeslider.Controller, na *northarrow.Controller) Snapshot {
	s := Snapshot{
		View:           view,
		State:          ts.State().String(),
		FullTimeExtent: ts.FullTimeExtent(),
		TimeInterval:   ts.TimeInterval(),
		NumberOfSteps:  ts.NumberOfSteps(),
		StartStep:      ts.StartStep(),
		EndStep:        ts.EndStep(),
		Selection:      ts.Selection(),
	}
	if t, ok := ts.TimeForStep(s.Selection.Start); ok {
		t = t.UTC()
		s.StartTime = &t
	}
	if t, ok := ts.TimeForStep(s.Selection.End); ok {
		t = t.UTC()
		s.EndTime = &t
	}
	if na != nil {
		s.Heading = na.Heading()
		s.AutoHide = na.AutoHide()
	}
	return s
}

// Fingerprint hashes the canonical JSON encoding.
func (s Snapshot) Fingerprint() uint64 {
	b, err := json.Marshal(s)
	if err != nil {
		return 0
	}
	return xxhash.Sum64(b)
}

// ETag is the quoted hex fingerprint.
func (s Snapshot) ETag() string {
	return `"` + strconv.FormatUint(s.Fingerprint(), 16) + `"`
}
