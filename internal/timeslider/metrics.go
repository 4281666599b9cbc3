package timeslider

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metricSet struct {
	reconciles    *prometheus.CounterVec
	publishes     *prometheus.CounterVec
	stepWrites    *prometheus.CounterVec
	subscriptions prometheus.Gauge
}

func newMetricSet(r prometheus.Registerer) *metricSet {
	m := &metricSet{
		reconciles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeslider_reconciles_total",
				Help: "Reconciles by triggering event.",
			},
			[]string{"trigger"},
		),
		publishes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeslider_property_changes_total",
				Help: "Published property changes by property.",
			},
			[]string{"property"},
		),
		stepWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "timeslider_step_writes_total",
				Help: "Explicit step range writes by result.",
			},
			[]string{"result"},
		),
		subscriptions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "timeslider_active_subscriptions",
				Help: "Layer and collection subscriptions currently held.",
			},
		),
	}
	if r != nil {
		r.MustRegister(m.reconciles, m.publishes, m.stepWrites, m.subscriptions)
	}
	return m
}
