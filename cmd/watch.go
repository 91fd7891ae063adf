package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	server "github.com/tejusbharadwaj/gascontrol/internal/grpc"
	"github.com/tejusbharadwaj/gascontrol/internal/scheduler"
	"github.com/tejusbharadwaj/gascontrol/internal/views"
)

// watch refreshes the dashboard on the configured schedule and serves the
// gRPC health service and Prometheus metrics until ctx is cancelled.
func (a *app) watch(ctx context.Context, args []string) error {
	fs := a.newFlagSet("watch")
	window := fs.Int("window", a.config.Dashboard.WindowDays, "Trailing window in days")
	schedule := fs.String("schedule", a.config.Server.Schedule, "Cron schedule")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.session.Require(); err != nil {
		return err
	}

	dash := views.NewDashboard(a.client.Gasometers(), a.client.Readings(), a.viewOptions()...)
	if err := dash.SetWindow(*window); err != nil {
		return err
	}

	health := server.NewHealthChecker()
	srv, err := server.SetupServer(health, server.ServerConfig{
		RateLimit:      a.config.Server.RateLimit,
		RateLimitBurst: a.config.Server.RateLimitBurst,
	}, a.logger, a.registry)
	if err != nil {
		return fmt.Errorf("failed to setup server: %w", err)
	}

	metrics, err := scheduler.NewMetrics(a.registry)
	if err != nil {
		return fmt.Errorf("failed to register dashboard metrics: %w", err)
	}
	sched := scheduler.NewScheduler(dash, metrics, health, a.logger, scheduler.Config{
		Schedule: *schedule,
		Timeout:  a.config.API.Timeout,
	})

	host := a.config.Server.Host
	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, a.config.Server.GRPCPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, a.config.Server.MetricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if err := sched.Start(); err != nil {
		lis.Close()
		return fmt.Errorf("scheduler error: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.WithFields(logFields(host, a.config.Server.GRPCPort)).Info("Starting gRPC server")
		if err := srv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.logger.WithFields(logFields(host, a.config.Server.MetricsPort)).Info("Starting metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		handleShutdown(a, sched, health, srv, metricsServer)
		return nil
	})

	return g.Wait()
}

// handleShutdown stops the schedule first so no refresh races the servers
// going down.
func handleShutdown(a *app, sched *scheduler.Scheduler, health *server.HealthChecker, srv *grpc.Server, metricsServer *http.Server) {
	a.logger.Info("Shutting down")

	sched.Stop()
	health.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsServer.Shutdown(ctx); err != nil {
		a.logger.WithError(err).Warn("Metrics server shutdown failed")
	}

	a.logger.Info("Gracefully stopping server...")
	srv.GracefulStop()
	a.logger.Info("Server stopped")
}
