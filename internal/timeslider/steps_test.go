package timeslider

import (
	"testing"
	"time"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
)

const week = 7 * 24 * time.Hour

func scenarioExtent() model.TimeExtent {
	return model.NewTimeExtent(day(2020, 1, 1), day(2020, 12, 1))
}

func TestTimeForStep_Bounds(t *testing.T) {
	ext := scenarioExtent()
	iv := tv(7, model.Days)
	n := NumberOfSteps(ext, iv)

	first, ok := TimeForStep(ext, iv, 0)
	if !ok || !first.Equal(ext.Start()) {
		t.Fatalf("step 0 = %v,%v want %v", first, ok, ext.Start())
	}
	last, ok := TimeForStep(ext, iv, n)
	if !ok || last.Before(ext.End()) {
		t.Fatalf("step %d = %v must not precede extent end %v", n, last, ext.End())
	}
	if want := ext.Start().Add(10 * week); !mustStep(t, ext, iv, 10).Equal(want) {
		t.Fatalf("step 10 != %v", want)
	}
}

func TestTimeForStep_ExtrapolatesOutsideRange(t *testing.T) {
	ext := scenarioExtent()
	iv := tv(7, model.Days)
	if got, want := mustStep(t, ext, iv, -1), ext.Start().Add(-week); !got.Equal(want) {
		t.Fatalf("step -1 = %v want %v", got, want)
	}
	if got, want := mustStep(t, ext, iv, 100), ext.Start().Add(100*week); !got.Equal(want) {
		t.Fatalf("step 100 = %v want %v", got, want)
	}
}

func TestTimeForStep_EmptyInputs(t *testing.T) {
	if _, ok := TimeForStep(model.TimeExtent{}, tv(1, model.Days), 1); ok {
		t.Fatalf("empty extent should yield no time")
	}
	if _, ok := TimeForStep(scenarioExtent(), model.TimeValue{}, 1); ok {
		t.Fatalf("empty interval should yield no time")
	}
}

func TestStepsForViewWindow(t *testing.T) {
	ext := scenarioExtent()
	iv := tv(7, model.Days)

	cases := []struct {
		name   string
		window model.TimeExtent
		want   model.StepRange
	}{
		{"empty window selects all", model.TimeExtent{}, model.StepRange{Start: 0, End: 48}},
		{"window equals extent", ext, model.StepRange{Start: 0, End: 0}},
		{
			"whole weeks trimmed from both sides",
			model.NewTimeExtent(ext.Start().Add(3*week), ext.End().Add(-5*week)),
			model.StepRange{Start: 3, End: 5},
		},
		{
			"partial weeks round up",
			model.NewTimeExtent(ext.Start().Add(24*time.Hour), ext.End().Add(-24*time.Hour)),
			model.StepRange{Start: 1, End: 1},
		},
		{
			"window wider than extent clamps at zero",
			model.NewTimeExtent(day(2019, 1, 1), day(2021, 1, 1)),
			model.StepRange{Start: 0, End: 0},
		},
		{
			"window in the back half keeps its end count",
			model.NewTimeExtent(ext.Start().Add(30*week), ext.Start().Add(45*week)),
			// 335d extent, window ends at 315d: ceil(20d/7d) = 3
			model.StepRange{Start: 30, End: 3},
		},
		{
			"window past the end bounds each side",
			model.NewTimeExtent(day(2030, 1, 1), day(2030, 2, 1)),
			model.StepRange{Start: 48, End: 0},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := StepsForViewWindow(ext, iv, c.window)
			if got != c.want {
				t.Fatalf("got %+v want %+v", got, c.want)
			}
			if got.Start < 0 || got.Start > 48 || got.End < 0 || got.End > 48 {
				t.Fatalf("range %+v escapes [0,48]", got)
			}
		})
	}
}

func TestStepsForViewWindow_NoSteps(t *testing.T) {
	got := StepsForViewWindow(model.TimeExtent{}, tv(1, model.Days), scenarioExtent())
	if got != (model.StepRange{}) {
		t.Fatalf("got %+v want zero range", got)
	}
}

func mustStep(t *testing.T, ext model.TimeExtent, iv model.TimeValue, step int) time.Time {
	t.Helper()
	ts, ok := TimeForStep(ext, iv, step)
	if !ok {
		t.Fatalf("TimeForStep(%d) not ok", step)
	}
	return ts
}
