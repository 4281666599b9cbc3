// Package layerevents applies layer catalog events (add, remove, load status
// changes, time metadata updates) to an operational layer list.
package layerevents

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
)

const (
	OpAdd        = "add"
	OpRemove     = "remove"
	OpLoadStatus = "load_status"
	OpUpdate     = "update"
)

// Event is the wire form shared by the Kafka feed and POST /v1/layers/events.
// Seq orders events per layer; zero disables replay detection.
type Event struct {
	Version       int               `json:"version"`
	Op            string            `json:"op"`
	Layer         string            `json:"layer"`
	Seq           uint64            `json:"seq,omitempty"`
	TS            time.Time         `json:"ts"`
	LoadStatus    *model.LoadStatus `json:"load_status,omitempty"`
	TimeFiltering *bool             `json:"time_filtering,omitempty"`
	Extent        *model.TimeExtent `json:"extent,omitempty"`
	Interval      *model.TimeValue  `json:"interval,omitempty"`
}

var ErrInvalid = errors.New("invalid layer event")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func (e Event) Validate() error {
	if e.Version != 1 {
		return invalid("version must be 1")
	}
	switch e.Op {
	case OpAdd, OpRemove, OpLoadStatus, OpUpdate:
	default:
		return invalid("op must be add|remove|load_status|update")
	}
	if strings.TrimSpace(e.Layer) == "" {
		return invalid("layer is required")
	}
	if e.Op == OpLoadStatus && e.LoadStatus == nil {
		return invalid("load_status is required for op load_status")
	}
	if e.LoadStatus != nil && *e.LoadStatus == model.LoadStatusUnknown {
		return invalid("load_status must be a known status")
	}
	if e.Op == OpUpdate && e.TimeFiltering == nil && e.Extent == nil && e.Interval == nil {
		return invalid("update needs at least one of time_filtering, extent, interval")
	}
	if e.Extent != nil && !e.Extent.IsEmpty() && e.Extent.End().Before(e.Extent.Start()) {
		return invalid("extent end before start")
	}
	if e.Interval != nil && !e.Interval.IsEmpty() {
		if e.Interval.Unit() == model.UnitUnknown {
			return invalid("interval unit is required")
		}
		if e.Interval.Duration() < 0 {
			return invalid("interval duration must be >= 0")
		}
	}
	return nil
}

// HasTimeInfo reports whether the event carries any time metadata.
func (e Event) HasTimeInfo() bool {
	return e.TimeFiltering != nil || e.Extent != nil || e.Interval != nil
}

// Trigger names the slider reconcile an applied event leads to.
func (e Event) Trigger() string {
	switch e.Op {
	case OpAdd:
		return "layer_added"
	case OpRemove:
		return "layer_removed"
	case OpLoadStatus, OpUpdate:
		return "load_status_changed"
	default:
		return ""
	}
}
