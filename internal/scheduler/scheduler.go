package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/tejusbharadwaj/gascontrol/internal/query"
)

// DefaultSchedule refreshes every five minutes.
const DefaultSchedule = "*/5 * * * *"

// ServiceName is the health service flipped by each run.
const ServiceName = "gascontrol.Dashboard"

// Refresher is the dashboard as seen by the scheduler.
// *views.Dashboard satisfies it.
type Refresher interface {
	Refresh(ctx context.Context) error
	Summary() query.WindowStats
}

// StatusSetter receives the outcome of each run.
type StatusSetter interface {
	SetServingStatus(service string, status grpc_health_v1.HealthCheckResponse_ServingStatus)
}

type Config struct {
	Schedule string
	Timeout  time.Duration // per run; zero means two minutes
}

type Scheduler struct {
	dashboard Refresher
	metrics   *Metrics
	health    StatusSetter
	logger    *logrus.Logger
	config    Config
	cron      *cron.Cron
}

func NewScheduler(dashboard Refresher, metrics *Metrics, health StatusSetter, logger *logrus.Logger, config Config) *Scheduler {
	if config.Schedule == "" {
		config.Schedule = DefaultSchedule
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	return &Scheduler{
		dashboard: dashboard,
		metrics:   metrics,
		health:    health,
		logger:    logger,
		config:    config,
		cron:      cron.New(),
	}
}

// Start runs one refresh immediately, then on every tick of the schedule.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.config.Schedule, s.collect); err != nil {
		return err
	}
	s.collect()
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

func (s *Scheduler) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.Timeout)
	defer cancel()

	if err := s.RunOnce(ctx); err != nil {
		s.logger.WithError(err).Error("Dashboard refresh failed")
	}
}

// RunOnce refreshes the dashboard and publishes the result. A failed
// refresh still publishes the statistics of whatever data is held.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	err := s.dashboard.Refresh(ctx)

	stats := s.dashboard.Summary()
	s.metrics.publish(stats, err)

	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	if s.health != nil {
		s.health.SetServingStatus("", status)
		s.health.SetServingStatus(ServiceName, status)
	}

	s.logger.WithFields(logrus.Fields{
		"window_days":   stats.Days,
		"readings":      stats.Readings,
		"gasometers":    stats.Gasometers,
		"average_daily": stats.AverageLabel(),
	}).Info("Dashboard refreshed")

	return err
}
