package timeslider

import (
	"testing"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
)

func tv(d float64, u model.TimeUnit) model.TimeValue { return model.NewTimeValue(d, u) }

func TestToMilliseconds_PerUnit(t *testing.T) {
	cases := []struct {
		in   model.TimeValue
		want float64
	}{
		{tv(5, model.Milliseconds), 5},
		{tv(2, model.Seconds), 2000},
		{tv(3, model.Minutes), 180000},
		{tv(1, model.Hours), 3600000},
		{tv(1, model.Days), 86400000},
		{tv(1, model.Weeks), 604800000},
		{tv(12, model.Months), 365 * 86400000},
		{tv(1, model.Years), 365 * 86400000},
		{tv(1, model.Decades), 3650 * 86400000},
		{tv(1, model.Centuries), 36500 * 86400000},
		{tv(42, model.UnitUnknown), 42},
	}
	for _, c := range cases {
		if got := ToMilliseconds(c.in); got != c.want {
			t.Fatalf("ToMilliseconds(%v)=%g want %g", c.in, got, c.want)
		}
	}
}

func TestCompare_SameUnitUsesMagnitude(t *testing.T) {
	if Compare(tv(1, model.Months), tv(2, model.Months)) != -1 {
		t.Fatalf("1 month should be < 2 months")
	}
	if Compare(tv(3, model.Days), tv(3, model.Days)) != 0 {
		t.Fatalf("3 days should equal 3 days")
	}
	if Compare(tv(0.5, model.Years), tv(0.25, model.Years)) != 1 {
		t.Fatalf("0.5 years should be > 0.25 years")
	}
}

func TestCompare_MixedUnitsUseCanonicalMilliseconds(t *testing.T) {
	if Compare(tv(1, model.Hours), tv(3600000, model.Milliseconds)) != 0 {
		t.Fatalf("1 hour should equal 3,600,000 ms")
	}
	if Compare(tv(1, model.Days), tv(2, model.Hours)) < 0 {
		t.Fatalf("1 day must not be less than 2 hours")
	}
	if Compare(tv(7, model.Days), tv(1, model.Months)) != -1 {
		t.Fatalf("7 days should be finer than 1 month")
	}
}

func TestMinInterval_EmptySidesAndTies(t *testing.T) {
	var empty model.TimeValue
	week := tv(1, model.Weeks)
	days := tv(7, model.Days)

	if got := MinInterval(empty, week); got != week {
		t.Fatalf("MinInterval(empty, week)=%v", got)
	}
	if got := MinInterval(week, empty); got != week {
		t.Fatalf("MinInterval(week, empty)=%v", got)
	}
	if !MinInterval(empty, empty).IsEmpty() {
		t.Fatalf("MinInterval(empty, empty) should be empty")
	}
	// equal spans resolve to the smaller unit regardless of order
	if a, b := MinInterval(week, days), MinInterval(days, week); a != days || b != days {
		t.Fatalf("tie resolution not order independent: %v vs %v", a, b)
	}
}
