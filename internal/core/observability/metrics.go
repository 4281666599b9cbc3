// Package observability holds the process-wide Prometheus collectors used by
// the HTTP surface and the event pipelines.
package observability

import (
	"strconv"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

var viewLabel atomic.Value

func init() {
	viewLabel.Store("map")
	set.Store(newCollectors())
}

// SetView sets the view kind label attached to request and consumer metrics.
func SetView(kind string) {
	if kind == "" {
		kind = "map"
	}
	viewLabel.Store(kind)
}

func getView() string {
	if v := viewLabel.Load(); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "map"
}

type collectors struct {
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	layerEventsTotal           *prometheus.CounterVec
	layerEventDurationSeconds  *prometheus.HistogramVec
	kafkaConsumerErrors        *prometheus.CounterVec
	snapshotPublishes          *prometheus.CounterVec
	changefeedEvents           *prometheus.CounterVec
	redisOpsTotal              *prometheus.CounterVec
	redisOpDurationSeconds     *prometheus.HistogramVec
}

var set atomic.Pointer[collectors]

func newCollectors() *collectors {
	return &collectors{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status", "view"},
		),
		httpRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"method", "route", "status", "view"},
		),
		layerEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "layer_events_total",
				Help: "Layer catalog events by op and result.",
			},
			[]string{"op", "result"},
		),
		layerEventDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "layer_event_apply_duration_seconds",
				Help:    "Time to decode and apply a layer event, including the reconcile it triggers.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
			[]string{"op"},
		),
		kafkaConsumerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kafka_consumer_errors_total",
				Help: "Kafka consumer errors by kind.",
			},
			[]string{"kind", "view"},
		),
		snapshotPublishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "snapshot_publishes_total",
				Help: "Slider snapshot publishes to redis by result.",
			},
			[]string{"result"},
		),
		changefeedEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "changefeed_events_total",
				Help: "Step change events by result (queued, dropped, error).",
			},
			[]string{"result"},
		),
		redisOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "redis_op_total",
				Help: "Redis operations by op and result.",
			},
			[]string{"op", "result"},
		),
		redisOpDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "redis_operation_duration_seconds",
				Help:    "Latency of redis operations in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14),
			},
			[]string{"op"},
		),
	}
}

func (c *collectors) all() []prometheus.Collector {
	return []prometheus.Collector{
		c.httpRequestsTotal,
		c.httpRequestDurationSeconds,
		c.layerEventsTotal,
		c.layerEventDurationSeconds,
		c.kafkaConsumerErrors,
		c.snapshotPublishes,
		c.changefeedEvents,
		c.redisOpsTotal,
		c.redisOpDurationSeconds,
	}
}

// Init replaces the collectors with a fresh set and registers them on reg
// when enabled. Observations made while disabled are kept in memory only.
func Init(reg prometheus.Registerer, enabled bool) {
	c := newCollectors()
	if enabled && reg != nil {
		reg.MustRegister(c.all()...)
	}
	set.Store(c)
}

func ObserveHTTP(method, route string, status int, durationSeconds float64) {
	c := set.Load()
	v := getView()
	st := strconv.Itoa(status)
	c.httpRequestsTotal.WithLabelValues(method, route, st, v).Inc()
	c.httpRequestDurationSeconds.WithLabelValues(method, route, st, v).Observe(durationSeconds)
}

// ObserveLayerEvent records one processed layer event. result is one of
// applied, duplicate, invalid or error.
func ObserveLayerEvent(op, result string, durationSeconds float64) {
	c := set.Load()
	if op == "" {
		op = "unknown"
	}
	c.layerEventsTotal.WithLabelValues(op, result).Inc()
	c.layerEventDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}

func IncKafkaConsumerError(kind string) {
	set.Load().kafkaConsumerErrors.WithLabelValues(kind, getView()).Inc()
}

func IncSnapshotPublish(result string) {
	set.Load().snapshotPublishes.WithLabelValues(result).Inc()
}

func IncChangefeed(result string) {
	set.Load().changefeedEvents.WithLabelValues(result).Inc()
}

func ObserveRedisOp(op string, err error, durationSeconds float64) {
	c := set.Load()
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.redisOpsTotal.WithLabelValues(op, result).Inc()
	c.redisOpDurationSeconds.WithLabelValues(op).Observe(durationSeconds)
}
