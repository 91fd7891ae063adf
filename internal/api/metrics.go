package api

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records outbound API calls.
type Metrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gascontrol_api_requests_total",
				Help: "Total REST API requests by resource, method and status code",
			},
			[]string{"resource", "method", "code"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gascontrol_api_request_duration_seconds",
				Help:    "REST API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"resource", "method"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// observe is safe on a nil receiver so clients without metrics skip it.
func (m *Metrics) observe(resource, method string, status int, start time.Time) {
	if m == nil {
		return
	}
	code := "error"
	if status > 0 {
		code = strconv.Itoa(status)
	}
	m.requests.WithLabelValues(resource, method, code).Inc()
	m.latency.WithLabelValues(resource, method).Observe(time.Since(start).Seconds())
}
