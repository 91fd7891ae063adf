package main

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/tejusbharadwaj/gascontrol/internal/api"
	"github.com/tejusbharadwaj/gascontrol/internal/config"
	"github.com/tejusbharadwaj/gascontrol/internal/session"
	"github.com/tejusbharadwaj/gascontrol/internal/views"
)

// app wires the configured components shared by every command.
type app struct {
	config   *config.Config
	logger   *logrus.Logger
	out      io.Writer
	registry *prometheus.Registry
	client   *api.Client
	session  *session.Session
	index    *views.GasometerIndex
	toasts   *views.Toasts
}

func newApp(cfg *config.Config, logger *logrus.Logger, out io.Writer) (*app, error) {
	registry := prometheus.NewRegistry()

	metrics, err := api.NewMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register api metrics: %w", err)
	}

	client, err := api.NewClient(cfg.API.BaseURL, logger,
		api.WithTimeout(cfg.API.Timeout),
		api.WithRateLimit(cfg.API.RateLimit, cfg.API.RateLimitBurst),
		api.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	index, err := views.NewGasometerIndex(cfg.Dashboard.GasometerCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create gasometer index: %w", err)
	}

	sess := session.New(session.NewFileStore(cfg.Session.Path), session.Credentials{
		Username: cfg.Auth.Username,
		Password: cfg.Auth.Password,
	})

	return &app{
		config:   cfg,
		logger:   logger,
		out:      out,
		registry: registry,
		client:   client,
		session:  sess,
		index:    index,
		toasts:   views.NewToasts(nil),
	}, nil
}

func (a *app) viewOptions() []views.Option {
	return []views.Option{
		views.WithGate(a.session),
		views.WithLogger(a.logger),
		views.WithIndex(a.index),
		views.WithToasts(a.toasts),
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage(a.out)
		return fmt.Errorf("no command given")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "login":
		return a.login(rest)
	case "logout":
		return a.logout()
	case "dashboard":
		return a.dashboard(ctx, rest)
	case "gasometers":
		return a.gasometers(ctx, rest)
	case "readings":
		return a.readings(ctx, rest)
	case "export":
		return a.export(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	case "help", "-h", "--help":
		usage(a.out)
		return nil
	default:
		usage(a.out)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// notify prints the toast left by the last view action, if any.
func (a *app) notify() {
	if toast, ok := a.toasts.Current(); ok {
		fmt.Fprintf(a.out, "[%s] %s\n", toast.Kind, toast.Message)
	}
}
