package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mohammed-shakir/geotime-toolkit/internal/changefeed"
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/config"
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/health"
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/observability"
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/router"
	"github.com/mohammed-shakir/geotime-toolkit/internal/core/server"
	"github.com/mohammed-shakir/geotime-toolkit/internal/dispatch"
	"github.com/mohammed-shakir/geotime-toolkit/internal/geoview"
	"github.com/mohammed-shakir/geotime-toolkit/internal/layerevents"
	"github.com/mohammed-shakir/geotime-toolkit/internal/layerevents/kafkaconsumer"
	"github.com/mohammed-shakir/geotime-toolkit/internal/logger"
	"github.com/mohammed-shakir/geotime-toolkit/internal/metrics"
	"github.com/mohammed-shakir/geotime-toolkit/internal/northarrow"
	"github.com/mohammed-shakir/geotime-toolkit/internal/snapshot"
	"github.com/mohammed-shakir/geotime-toolkit/internal/snapshot/redisstore"
	"github.com/mohammed-shakir/geotime-toolkit/internal/timeslider"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// overriding view kind via flag
	viewFlag := flag.String("view", "", "view kind (map|scene)")
	flag.Parse()

	cfg := config.FromEnv()
	if v := strings.ToLower(strings.TrimSpace(*viewFlag)); v != "" {
		cfg.ViewKind = v
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.Log.Level,
		Console:   cfg.Log.Console,
		SampleN:   cfg.Log.SampleN,
		Service:   "timeslider",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	prov := metrics.Init(metrics.Config{
		Service: "timeslider",
		Build: metrics.BuildInfo{
			Version:   Version,
			Revision:  os.Getenv("BUILD_REVISION"),
			BuildDate: os.Getenv("BUILD_DATE"),
		},
	})
	var reg prometheus.Registerer
	if cfg.MetricsEnabled {
		reg = prov.Registerer()
		observability.Init(reg, true)
	} else {
		observability.Init(nil, false)
	}
	observability.SetView(cfg.ViewKind)

	appLog.Info("starting timeslider",
		"addr", cfg.Addr,
		"version", Version,
		"view", cfg.ViewKind,
		"snapshot", cfg.Snapshot.Enabled,
		"layer_events", cfg.LayerEvents.Enabled,
		"changefeed", cfg.Changefeed.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	layers := geoview.NewLayerList()
	view, ok := geoview.NewView(geoview.Kind(cfg.ViewKind), layers)
	if !ok {
		appLog.Error("unknown view kind", "view", cfg.ViewKind)
		return 1
	}

	slider := timeslider.New(timeslider.Options{
		Logger:        appLog,
		Register:      reg,
		StepCacheSize: cfg.StepCacheSize,
	})
	slider.SetView(view)

	arrow := northarrow.New(appLog)
	if rot, ok := view.(geoview.Rotator); ok {
		arrow.SetView(rot)
	}

	loop := dispatch.New(cfg.DispatchQueue, appLog)
	ready := map[string]health.Check{
		"dispatch": func(ctx context.Context) error { return loop.Do(ctx, func() {}) },
	}

	// Everything below subscribes before the loop starts; callbacks then run on it.
	if cfg.Snapshot.Enabled {
		store, err := redisstore.New(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
			return 1
		}
		defer func() { _ = store.Close() }()

		pub := snapshot.NewPublisher(snapshot.PublisherConfig{
			Key:     cfg.Snapshot.Key,
			Channel: cfg.Snapshot.Channel,
			TTL:     cfg.Snapshot.TTL,
		}, store, appLog)
		go pub.Run(ctx)

		offer := func() { pub.Offer(snapshot.Capture(cfg.ViewKind, slider, arrow)) }
		slider.OnChanged(func(timeslider.Property) { offer() })
		arrow.OnHeadingChanged(func(float64) { offer() })
		arrow.OnAutoHideChanged(func(bool) { offer() })
		offer()

		ready["redis"] = func(ctx context.Context) error {
			_, _, err := store.Get(ctx, cfg.Snapshot.Key)
			return err
		}
	}

	if cfg.Changefeed.Enabled {
		feed, err := changefeed.NewPublisher(kafkaconsumer.SplitCSV(cfg.KafkaBrokers), cfg.Changefeed.Topic, cfg.Changefeed.QueueSize, appLog)
		if err != nil {
			appLog.Error("changefeed setup failed", "err", err)
			return 1
		}
		defer func() {
			if err := feed.Close(); err != nil {
				appLog.Warn("changefeed close", "err", err)
			}
		}()
		slider.OnChanged(func(p timeslider.Property) {
			if changefeed.Relevant(p) {
				feed.Publish(changefeed.Capture(slider))
			}
		})
	}

	applier := layerevents.NewApplier(layers, cfg.LayerEvents.DedupeSize, appLog)

	loopCtx, stopLoop := context.WithCancel(context.Background())
	go loop.Run(loopCtx)

	if cfg.LayerEvents.Enabled {
		kcfg := kafkaconsumer.NewConfig(cfg.KafkaBrokers, cfg.LayerEvents.Topic, cfg.LayerEvents.GroupID)
		cons := kafkaconsumer.New(kcfg, appLog, &zl, applier, loop)
		go func() {
			if err := cons.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				appLog.Error("layer event consumer stopped", "err", err)
			}
		}()
	}

	opts := server.Options{Ready: ready}
	if cfg.MetricsEnabled {
		opts.Metrics = prov.Handler()
	}
	deps := router.Deps{
		Loop:   loop,
		View:   geoview.Kind(cfg.ViewKind),
		Slider: slider,
		Arrow:  arrow,
		Layers: layers,
		Events: applier,
	}
	err := server.Run(ctx, cfg, appLog, deps, opts)
	// no controller callback may run once the sinks close
	stopLoop()
	<-loop.Done()
	if err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
