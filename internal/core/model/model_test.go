package model

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseTimeUnit(t *testing.T) {
	cases := map[string]TimeUnit{
		"days":      Days,
		"Day":       Days,
		" HOURS ":   Hours,
		"week":      Weeks,
		"century":   Centuries,
		"centuries": Centuries,
		"ms":        UnitUnknown,
		"":          UnitUnknown,
	}
	for in, want := range cases {
		got, ok := ParseTimeUnit(in)
		if got != want || ok != (want != UnitUnknown) {
			t.Fatalf("ParseTimeUnit(%q)=%v,%v want %v", in, got, ok, want)
		}
	}
}

func TestTimeValue_EmptyAndJSON(t *testing.T) {
	var empty TimeValue
	if !empty.IsEmpty() {
		t.Fatalf("zero TimeValue should be empty")
	}
	if NewTimeValue(0, Days).IsEmpty() {
		t.Fatalf("a zero-magnitude value is still set")
	}

	b, err := json.Marshal(NewTimeValue(7, Days))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"duration":7,"unit":"days"}` {
		t.Fatalf("json=%s", b)
	}
	var back TimeValue
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != NewTimeValue(7, Days) {
		t.Fatalf("round trip=%v", back)
	}

	b, _ = json.Marshal(empty)
	if string(b) != "null" {
		t.Fatalf("empty json=%s want null", b)
	}
	if err := json.Unmarshal([]byte(`{"duration":1,"unit":"fortnights"}`), &back); err == nil {
		t.Fatalf("expected unknown unit error")
	}
}

func TestTimeExtent_OrderingAndUnion(t *testing.T) {
	a := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	b := time.Date(2020, 6, 1, 0, 0, 0, 0, time.UTC)
	c := time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC)

	e := NewTimeExtent(b, a)
	if !e.Start().Equal(a) || !e.End().Equal(b) {
		t.Fatalf("reversed arguments not ordered: %v", e)
	}

	x := NewTimeExtent(a, b)
	y := NewTimeExtent(b.Add(-24*time.Hour), c)
	if u, v := x.Union(y), y.Union(x); !u.Equal(v) || !u.Equal(NewTimeExtent(a, c)) {
		t.Fatalf("union not commutative or wrong: %v %v", u, v)
	}
	if !x.Union(TimeExtent{}).Equal(x) || !(TimeExtent{}).Union(x).Equal(x) {
		t.Fatalf("empty side should be the identity")
	}
	if !(TimeExtent{}).Equal(TimeExtent{}) || x.Equal(TimeExtent{}) {
		t.Fatalf("empty equality wrong")
	}
}

func TestTimeExtent_JSON(t *testing.T) {
	e := NewTimeExtent(
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2020, 12, 1, 0, 0, 0, 0, time.UTC),
	)
	b, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"start":"2020-01-01T00:00:00Z"`) {
		t.Fatalf("json=%s", b)
	}
	var back TimeExtent
	if err := json.Unmarshal(b, &back); err != nil || !back.Equal(e) {
		t.Fatalf("round trip=%v err=%v", back, err)
	}

	bad := []string{
		`{"start":"2020-12-01T00:00:00Z","end":"2020-01-01T00:00:00Z"}`,
		`{"start":"2020-01-01T00:00:00Z"}`,
	}
	for _, in := range bad {
		if err := json.Unmarshal([]byte(in), &back); err == nil {
			t.Fatalf("expected error for %s", in)
		}
	}
	if err := json.Unmarshal([]byte("null"), &back); err != nil || !back.IsEmpty() {
		t.Fatalf("null should decode to empty")
	}
}

func TestLoadStatus_Text(t *testing.T) {
	for _, s := range []LoadStatus{NotLoaded, Loading, Loaded, FailedToLoad} {
		b, _ := s.MarshalText()
		var back LoadStatus
		if err := back.UnmarshalText(b); err != nil || back != s {
			t.Fatalf("%v round trip=%v err=%v", s, back, err)
		}
	}
	if _, ok := ParseLoadStatus("ready"); ok {
		t.Fatalf("unexpected status accepted")
	}
}

func TestStepRange_Clamp(t *testing.T) {
	cases := []struct {
		in   StepRange
		n    int
		want StepRange
	}{
		{StepRange{2, 5}, 10, StepRange{2, 5}},
		{StepRange{-1, 20}, 10, StepRange{0, 10}},
		{StepRange{8, 3}, 10, StepRange{8, 8}},
		{StepRange{3, 4}, 0, StepRange{0, 0}},
		{StepRange{3, 4}, -2, StepRange{0, 0}},
	}
	for _, c := range cases {
		if got := c.in.Clamp(c.n); got != c.want {
			t.Fatalf("%+v.Clamp(%d)=%+v want %+v", c.in, c.n, got, c.want)
		}
	}
}

func TestStepRange_BoundKeepsOrder(t *testing.T) {
	cases := []struct {
		in   StepRange
		n    int
		want StepRange
	}{
		{StepRange{30, 3}, 48, StepRange{30, 3}},
		{StepRange{-4, 60}, 48, StepRange{0, 48}},
		{StepRange{60, -1}, 48, StepRange{48, 0}},
		{StepRange{3, 4}, -2, StepRange{0, 0}},
	}
	for _, c := range cases {
		if got := c.in.Bound(c.n); got != c.want {
			t.Fatalf("%+v.Bound(%d)=%+v want %+v", c.in, c.n, got, c.want)
		}
	}
}
