package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector provides Prometheus metrics for the travel agents.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errorsTotal     *prometheus.CounterVec
	registry        *prometheus.Registry
}

// NewCollector creates a collector with its own registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelai_agent_requests_total",
			Help: "Total number of agent requests by agent and status",
		},
		[]string{"agent", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "travelai_agent_request_duration_seconds",
			Help:    "Duration of agent requests by agent",
			Buckets: []float64{0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0, 60.0},
		},
		[]string{"agent"},
	)

	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travelai_agent_errors_total",
			Help: "Total number of agent errors by agent and error kind",
		},
		[]string{"agent", "kind"},
	)

	registry.MustRegister(requestsTotal)
	registry.MustRegister(requestDuration)
	registry.MustRegister(errorsTotal)

	return &Collector{
		requestsTotal:   requestsTotal,
		requestDuration: requestDuration,
		errorsTotal:     errorsTotal,
		registry:        registry,
	}
}

// RecordRequest records a completed agent request.
func (c *Collector) RecordRequest(agent string, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.requestsTotal.WithLabelValues(agent, status).Inc()
	c.requestDuration.WithLabelValues(agent).Observe(duration.Seconds())
}

// RecordError records an agent error by kind.
func (c *Collector) RecordError(agent string, kind string) {
	if c == nil {
		return
	}
	c.errorsTotal.WithLabelValues(agent, kind).Inc()
}

// Registry returns the Prometheus registry for HTTP exposure.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
