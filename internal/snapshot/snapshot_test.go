package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/northarrow"
	"github.com/mohammed-shakir/geotime-toolkit/internal/snapshot/redisstore"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

func bound(t *testing.T) (*timeslider.Controller, *northarrow.Controller, *geoview.MapView) {
	t.Helper()
	layer := geoview.NewTemporalLayer("weekly", geoview.TemporalOptions{
		Status:        model.Loaded,
		TimeFiltering: true,
		Extent: model.NewTimeExtent(
			time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC)),
		Interval: model.NewTimeValue(7, model.Days),
	})
	mv := geoview.NewMapView(geoview.NewMap(geoview.NewLayerList(layer)))
	ts := timeslider.New(timeslider.Options{})
	ts.SetView(mv)
	na := northarrow.New(nil)
	na.SetView(mv)
	return ts, na, mv
}

func TestCapture(t *testing.T) {
	ts, na, mv := bound(t)
	mv.SetHeading(30)

	s := Capture("map", ts, na)
	if s.NumberOfSteps != 48 || s.StartStep != 0 || s.EndStep != 48 || s.State != "synchronized" {
		t.Fatalf("snapshot=%+v", s)
	}
	if s.StartTime == nil || !s.StartTime.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("start time=%v", s.StartTime)
	}
	if s.Heading != 30 || !s.AutoHide {
		t.Fatalf("north arrow fields=%v/%v", s.Heading, s.AutoHide)
	}

	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["time_interval"].(map[string]any)["unit"] != "days" {
		t.Fatalf("json=%s", b)
	}
}

func TestCapture_WindowInBackHalf(t *testing.T) {
	ts, na, mv := bound(t)
	start := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	week := 7 * 24 * time.Hour
	mv.SetTimeExtent(model.NewTimeExtent(start.Add(30*week), start.Add(45*week)))

	s := Capture("map", ts, na)
	if s.StartStep != 30 || s.EndStep != 3 {
		t.Fatalf("published steps=%d..%d want 30..3", s.StartStep, s.EndStep)
	}
	if s.Selection != (model.StepRange{Start: 30, End: 45}) {
		t.Fatalf("selection=%+v want 30..45", s.Selection)
	}
	if s.EndTime == nil || !s.EndTime.Equal(start.Add(45*week)) {
		t.Fatalf("end time=%v want %v", s.EndTime, start.Add(45*week))
	}
}

func TestCapture_Unbound(t *testing.T) {
	s := Capture("map", timeslider.New(timeslider.Options{}), nil)
	if s.StartTime != nil || s.EndTime != nil || s.NumberOfSteps != 0 {
		t.Fatalf("unbound snapshot=%+v", s)
	}
	b, _ := json.Marshal(s)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	if m["full_time_extent"] != nil || m["time_interval"] != nil {
		t.Fatalf("empty values should encode as null: %s", b)
	}
}

func TestFingerprint_TracksChanges(t *testing.T) {
	ts, na, _ := bound(t)
	a := Capture("map", ts, na)
	if a.Fingerprint() != Capture("map", ts, na).Fingerprint() {
		t.Fatalf("fingerprint not stable")
	}
	ts.SetSteps(1, 2)
	b := Capture("map", ts, na)
	if a.Fingerprint() == b.Fingerprint() || a.ETag() == b.ETag() {
		t.Fatalf("fingerprint did not change with steps")
	}
	if tag := b.ETag(); len(tag) < 3 || tag[0] != '"' || tag[len(tag)-1] != '"' {
		t.Fatalf("etag=%s", tag)
	}
}

func newStore(t *testing.T) (*redisstore.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rc, err := redisstore.New(context.Background(), mr.Addr())
	if err != nil {
		t.Fatalf("redisstore: %v", err)
	}
	t.Cleanup(func() { _ = rc.Close() })
	return rc, mr
}

func TestPublisher_SkipsUnchanged(t *testing.T) {
	rc, mr := newStore(t)
	ts, na, _ := bound(t)
	p := NewPublisher(PublisherConfig{Key: "slider", Channel: "slider-events", TTL: time.Minute}, rc, nil)
	ctx := context.Background()

	wrote, err := p.Publish(ctx, Capture("map", ts, na))
	if err != nil || !wrote {
		t.Fatalf("first publish wrote=%v err=%v", wrote, err)
	}
	got, err := mr.Get("slider")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	var back Snapshot
	if err := json.Unmarshal([]byte(got), &back); err != nil || back.NumberOfSteps != 48 {
		t.Fatalf("stored=%s err=%v", got, err)
	}
	if ttl := mr.TTL("slider"); ttl != time.Minute {
		t.Fatalf("ttl=%v want 1m", ttl)
	}

	if wrote, _ := p.Publish(ctx, Capture("map", ts, na)); wrote {
		t.Fatalf("unchanged snapshot was rewritten")
	}
	ts.SetSteps(4, 8)
	if wrote, _ := p.Publish(ctx, Capture("map", ts, na)); !wrote {
		t.Fatalf("changed snapshot was skipped")
	}
}

type failingStore struct{ calls int }

func (f *failingStore) SetAndPublish(context.Context, string, string, []byte, time.Duration) error {
	f.calls++
	return errors.New("down")
}

func TestPublisher_FailureDoesNotRecordFingerprint(t *testing.T) {
	fs := &failingStore{}
	p := NewPublisher(PublisherConfig{}, fs, nil)
	s := Snapshot{NumberOfSteps: 3}
	for i := 0; i < 2; i++ {
		if _, err := p.Publish(context.Background(), s); err == nil {
			t.Fatalf("expected store error")
		}
	}
	if fs.calls != 2 {
		t.Fatalf("calls=%d want a retry after failure", fs.calls)
	}
}

type recordingStore struct{ vals chan []byte }

func (r *recordingStore) SetAndPublish(_ context.Context, _, _ string, val []byte, _ time.Duration) error {
	r.vals <- val
	return nil
}

func TestPublisher_OfferKeepsLatest(t *testing.T) {
	rs := &recordingStore{vals: make(chan []byte, 4)}
	p := NewPublisher(PublisherConfig{}, rs, nil)

	p.Offer(Snapshot{NumberOfSteps: 1})
	p.Offer(Snapshot{NumberOfSteps: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	select {
	case v := <-rs.vals:
		var s Snapshot
		_ = json.Unmarshal(v, &s)
		if s.NumberOfSteps != 2 {
			t.Fatalf("published %d want the latest offer", s.NumberOfSteps)
		}
	case <-time.After(time.Second):
		t.Fatalf("nothing published")
	}
}
