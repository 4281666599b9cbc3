// Package config reads service settings from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type LogCfg struct {
	Level   string
	Console bool
	SampleN int
}

type SnapshotCfg struct {
	Enabled bool
	Key     string
	Channel string
	TTL     time.Duration
}

type LayerEventsCfg struct {
	Enabled    bool
	Topic      string
	GroupID    string
	DedupeSize int
}

type ChangefeedCfg struct {
	Enabled   bool
	Topic     string
	QueueSize int
}

type Config struct {
	Addr     string
	Log      LogCfg
	ViewKind string

	RedisAddr    string
	KafkaBrokers string

	Snapshot    SnapshotCfg
	LayerEvents LayerEventsCfg
	Changefeed  ChangefeedCfg

	StepCacheSize  int
	DispatchQueue  int
	MetricsEnabled bool
}

func FromEnv() Config {
	kind := strings.ToLower(strings.TrimSpace(getenv("VIEW_KIND", "map")))
	if kind != "map" && kind != "scene" {
		kind = "map"
	}

	return Config{
		Addr: getenv("ADDR", ":8090"),
		Log: LogCfg{
			Level:   getenv("LOG_LEVEL", "info"),
			Console: getbool("LOG_CONSOLE", false),
			SampleN: getint("LOG_SAMPLE_N", 0),
		},
		ViewKind:     kind,
		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: getenv("KAFKA_BROKERS", "localhost:9092"),
		Snapshot: SnapshotCfg{
			Enabled: getbool("SNAPSHOT_ENABLED", false),
			Key:     getenv("SNAPSHOT_KEY", "timeslider:snapshot"),
			Channel: getenv("SNAPSHOT_CHANNEL", "timeslider:changes"),
			TTL:     getduration("SNAPSHOT_TTL", 0),
		},
		LayerEvents: LayerEventsCfg{
			Enabled:    getbool("LAYER_EVENTS_ENABLED", false),
			Topic:      getenv("KAFKA_TOPIC", "layer-catalog"),
			GroupID:    getenv("KAFKA_GROUP_ID", "timeslider"),
			DedupeSize: getint("LAYER_EVENTS_DEDUPE_SIZE", 4096),
		},
		Changefeed: ChangefeedCfg{
			Enabled:   getbool("CHANGEFEED_ENABLED", false),
			Topic:     getenv("CHANGEFEED_TOPIC", "timeslider-steps"),
			QueueSize: getint("CHANGEFEED_QUEUE", 1024),
		},
		StepCacheSize:  getint("STEP_CACHE_SIZE", 256),
		DispatchQueue:  getint("DISPATCH_QUEUE", 64),
		MetricsEnabled: getbool("METRICS_ENABLED", true),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return def
}
