package changefeed

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

func TestPublish_DeliversJSONInOrder(t *testing.T) {
	prod := mocks.NewAsyncProducer(t, nil)
	var got []int
	checker := func(b []byte) error {
		var ev Event
		if err := json.Unmarshal(b, &ev); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		if ev.TS.IsZero() {
			return fmt.Errorf("ts not stamped")
		}
		got = append(got, ev.StartStep)
		return nil
	}
	prod.ExpectInputWithCheckerFunctionAndSucceed(checker)
	prod.ExpectInputWithCheckerFunctionAndSucceed(checker)

	p := newPublisher(prod, "steps", 8, nil)
	p.start()

	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	if !p.Publish(Event{StartStep: 1, EndStep: 5, NumberOfSteps: 48, Start: &start}) {
		t.Fatalf("publish refused")
	}
	if !p.Publish(Event{StartStep: 2, EndStep: 5, NumberOfSteps: 48}) {
		t.Fatalf("publish refused")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("delivered start steps=%v want [1 2]", got)
	}
}

func TestPublish_ProducerErrorIsConsumed(t *testing.T) {
	prod := mocks.NewAsyncProducer(t, nil)
	prod.ExpectInputAndFail(sarama.ErrOutOfBrokers)
	prod.ExpectInputAndSucceed()

	p := newPublisher(prod, "steps", 8, nil)
	p.start()
	p.Publish(Event{StartStep: 1})
	p.Publish(Event{StartStep: 2})
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestPublish_DropsWhenFull(t *testing.T) {
	prod := mocks.NewAsyncProducer(t, nil)
	t.Cleanup(func() { _ = prod.Close() })

	p := newPublisher(prod, "", 1, nil) // pump not started
	if !p.Publish(Event{StartStep: 1}) {
		t.Fatalf("first publish should queue")
	}
	if p.Publish(Event{StartStep: 2}) {
		t.Fatalf("second publish should drop")
	}
	if p.topic != "timeslider-steps" {
		t.Fatalf("default topic=%q", p.topic)
	}
}

func TestCapture(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2020, m, d, 0, 0, 0, 0, time.UTC) }
	ll := geoview.NewLayerList(geoview.NewTemporalLayer("weekly", geoview.TemporalOptions{
		Status:        model.Loaded,
		TimeFiltering: true,
		Extent:        model.NewTimeExtent(day(1, 1), day(3, 1)),
		Interval:      model.NewTimeValue(7, model.Days),
	}))
	ts := timeslider.New(timeslider.Options{})
	if ev := Capture(ts); ev.Start != nil || ev.NumberOfSteps != 0 {
		t.Fatalf("unbound capture=%+v", ev)
	}

	ts.SetView(geoview.NewMapView(geoview.NewMap(ll)))
	ts.SetSteps(1, 4)
	ev := Capture(ts)
	if ev.StartStep != 1 || ev.EndStep != 4 || ev.NumberOfSteps != 9 {
		t.Fatalf("capture=%+v", ev)
	}
	if ev.Start == nil || !ev.Start.Equal(day(1, 8)) || ev.End == nil || !ev.End.Equal(day(1, 29)) {
		t.Fatalf("times=%v..%v", ev.Start, ev.End)
	}
}

func TestCapture_WindowFromView(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2020, m, d, 0, 0, 0, 0, time.UTC) }
	ll := geoview.NewLayerList(geoview.NewTemporalLayer("weekly", geoview.TemporalOptions{
		Status:        model.Loaded,
		TimeFiltering: true,
		Extent:        model.NewTimeExtent(day(1, 1), day(3, 1)),
		Interval:      model.NewTimeValue(7, model.Days),
	}))
	view := geoview.NewMapView(geoview.NewMap(ll))
	ts := timeslider.New(timeslider.Options{})
	ts.SetView(view)

	view.SetTimeExtent(model.NewTimeExtent(day(1, 15), day(2, 12)))
	ev := Capture(ts)
	// end step counts back from Mar 1: ceil(18d/7d) = 3
	if ev.StartStep != 2 || ev.EndStep != 3 {
		t.Fatalf("published steps=%d..%d want 2..3", ev.StartStep, ev.EndStep)
	}
	if ev.SelectedStart != 2 || ev.SelectedEnd != 6 {
		t.Fatalf("selection=%d..%d want 2..6", ev.SelectedStart, ev.SelectedEnd)
	}
	if ev.Start == nil || !ev.Start.Equal(day(1, 15)) || ev.End == nil || !ev.End.Equal(day(2, 12)) {
		t.Fatalf("times=%v..%v", ev.Start, ev.End)
	}
}

func TestRelevant(t *testing.T) {
	if Relevant(timeslider.PropTimeInterval) {
		t.Fatalf("interval alone is not a window change")
	}
	if !Relevant(timeslider.PropTimeInterval | timeslider.PropEndStep) {
		t.Fatalf("end step change should be relevant")
	}
}
