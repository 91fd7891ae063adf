package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tejusbharadwaj/gascontrol/internal/query"
)

// Metrics are the dashboard gauges published after every run.
type Metrics struct {
	Readings      prometheus.Gauge
	Gasometers    prometheus.Gauge
	AveragePerDay prometheus.Gauge
	WindowDays    prometheus.Gauge
	Failures      prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Readings: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gascontrol_window_readings",
			Help: "Readings inside the trailing window",
		}),
		Gasometers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gascontrol_window_gasometers",
			Help: "Distinct gasometers with readings inside the trailing window",
		}),
		AveragePerDay: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gascontrol_window_average_per_day",
			Help: "Readings per day over the trailing window",
		}),
		WindowDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "gascontrol_window_days",
			Help: "Length of the trailing window in days",
		}),
		Failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gascontrol_refresh_failures_total",
			Help: "Dashboard refreshes that failed",
		}),
	}

	for _, c := range []prometheus.Collector{m.Readings, m.Gasometers, m.AveragePerDay, m.WindowDays, m.Failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) publish(stats query.WindowStats, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Failures.Inc()
	}
	m.Readings.Set(float64(stats.Readings))
	m.Gasometers.Set(float64(stats.Gasometers))
	m.AveragePerDay.Set(stats.AveragePerDay)
	m.WindowDays.Set(float64(stats.Days))
}
