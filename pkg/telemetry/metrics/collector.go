// Package metrics exposes Prometheus metrics for the relay.
//
// Metrics:
//   - <ns>_<sub>_relays_total{outcome}: relay invocations by terminal outcome
//   - <ns>_<sub>_segments_emitted_total: completed segments pushed to transports
//   - <ns>_<sub>_relay_duration_seconds: end-to-end invocation duration
//   - <ns>_<sub>_first_segment_latency_seconds: time to the first segment
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"meridian-hq/ganymede/pkg/config"
)

// Collector registers and records all relay metrics. It is safe for
// concurrent use.
type Collector struct {
	registry *prometheus.Registry

	relaysTotal         *prometheus.CounterVec
	segmentsTotal       prometheus.Counter
	relayDuration       prometheus.Histogram
	firstSegmentLatency prometheus.Histogram
}

// NewCollector creates a collector and registers its metrics with the given
// registry. If registry is nil, a fresh registry is created.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		registry: registry,

		relaysTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relays_total",
				Help:      "Total number of relay invocations by terminal outcome",
			},
			[]string{"outcome"},
		),

		segmentsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "segments_emitted_total",
				Help:      "Total number of completed segments pushed to transports",
			},
		),

		relayDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "relay_duration_seconds",
				Help:      "End-to-end duration of relay invocations in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~200s
			},
		),

		firstSegmentLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "first_segment_latency_seconds",
				Help:      "Time from invocation start to the first emitted segment",
				Buckets:   prometheus.ExponentialBuckets(0.025, 2, 12), // 25ms to ~100s
			},
		),
	}

	registry.MustRegister(
		c.relaysTotal,
		c.segmentsTotal,
		c.relayDuration,
		c.firstSegmentLatency,
	)

	return c
}

// RecordRelay records one terminated relay invocation.
func (c *Collector) RecordRelay(outcome string, segments int, duration, firstSegment time.Duration) {
	c.relaysTotal.WithLabelValues(outcome).Inc()
	c.relayDuration.Observe(duration.Seconds())
	if segments > 0 {
		c.segmentsTotal.Add(float64(segments))
		c.firstSegmentLatency.Observe(firstSegment.Seconds())
	}
}

// Handler returns the HTTP handler for the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Registry returns the underlying Prometheus registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
