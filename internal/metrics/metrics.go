// Package metrics exposes Prometheus collectors for the registry service.
//
// A nil *Metrics is valid and records nothing, so packages under test can
// skip wiring it.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "giftlist"

// Claim outcomes
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeConflict  = "conflict"
	OutcomeNotFound  = "not_found"
	OutcomeRemoteErr = "remote_error"
)

type Metrics struct {
	registry *prometheus.Registry

	claims       *prometheus.CounterVec
	storeOps     *prometheus.CounterVec
	storeLatency *prometheus.HistogramVec
	gifts        *prometheus.GaugeVec
	reloads      *prometheus.CounterVec
}

// New builds a private registry with process and Go runtime collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "claims_total",
			Help:      "Claim submissions by outcome.",
		}, []string{"outcome"}),
		storeOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Catalogue store calls by operation and result.",
		}, []string{"op", "result"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Catalogue store call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		gifts: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "catalogue",
			Name:      "gifts",
			Help:      "Gifts in the in-memory reflection by status.",
		}, []string{"status"}),
		reloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalogue",
			Name:      "reloads_total",
			Help:      "Full catalogue reloads by result.",
		}, []string{"result"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.claims,
		m.storeOps,
		m.storeLatency,
		m.gifts,
		m.reloads,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Claim(outcome string) {
	if m == nil {
		return
	}
	m.claims.WithLabelValues(outcome).Inc()
}

// StoreOp records one catalogue store call.
func (m *Metrics) StoreOp(op string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
	m.storeLatency.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

// Catalogue sets the reflection gauges.
func (m *Metrics) Catalogue(available, claimed int) {
	if m == nil {
		return
	}
	m.gifts.WithLabelValues("available").Set(float64(available))
	m.gifts.WithLabelValues("claimed").Set(float64(claimed))
}

func (m *Metrics) Reload(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.reloads.WithLabelValues(result).Inc()
}
