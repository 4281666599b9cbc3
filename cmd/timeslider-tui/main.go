package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mohammed-shakir/geotime-toolkit/internal/core/model"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/logger"
	"github.com/mohammed-shakir/geotime-toolkit/internal/northarrow"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
	"github.com/mohammed-shakir/geotime-toolkit/internal/ui/slider"
)

func main() {
	os.Exit(run())
}

func run() int {
	kind := flag.String("view", "map", "view kind (map|scene)")
	logPath := flag.String("log", "", "write debug logs to this file")
	flag.Parse()

	// the terminal belongs to the UI, so logs go to a file or nowhere
	var out io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open log: %v\n", err)
			return 1
		}
		defer f.Close()
		out = f
	}
	zl := logger.Build(logger.Config{Level: "debug", Service: "timeslider", Component: "tui"}, out)
	appLog := logger.NewSlog(&zl)

	view, ok := geoview.NewView(geoview.Kind(*kind), demoLayers())
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown view kind %q\n", *kind)
		return 2
	}

	ts := timeslider.New(timeslider.Options{Logger: appLog})
	ts.SetView(view)
	defer ts.Detach()

	arrow := northarrow.New(appLog)
	if rot, ok := view.(geoview.Rotator); ok {
		arrow.SetView(rot)
		defer arrow.Detach()
	}

	title := fmt.Sprintf("Time slider · %s view", *kind)
	if _, err := tea.NewProgram(slider.New(title, ts, arrow)).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		return 1
	}
	return 0
}

// demoLayers mixes a monthly and a weekly time-aware layer with a static basemap.
func demoLayers() *geoview.LayerList {
	day := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	return geoview.NewLayerList(
		geoview.NewBasicLayer("basemap", model.Loaded),
		geoview.NewTemporalLayer("precipitation", geoview.TemporalOptions{
			Status:        model.Loaded,
			TimeFiltering: true,
			Extent:        model.NewTimeExtent(day(2020, 1, 1), day(2020, 6, 1)),
			Interval:      model.NewTimeValue(1, model.Months),
		}),
		geoview.NewTemporalLayer("wildfires", geoview.TemporalOptions{
			Status:        model.Loaded,
			TimeFiltering: true,
			Extent:        model.NewTimeExtent(day(2020, 3, 1), day(2020, 12, 1)),
			Interval:      model.NewTimeValue(7, model.Days),
		}),
	)
}
