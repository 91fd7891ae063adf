package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tejusbharadwaj/gascontrol/internal/models"
	"github.com/tejusbharadwaj/gascontrol/internal/report"
	"github.com/tejusbharadwaj/gascontrol/internal/session"
	"github.com/tejusbharadwaj/gascontrol/internal/views"
)

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *app) login(args []string) error {
	fs := a.newFlagSet("login")
	username := fs.String("u", "", "Username")
	password := fs.String("p", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.session.Login(*username, *password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

func (a *app) logout() error {
	if err := a.session.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

// dashboardFlags are shared by dashboard and export.
type dashboardFlags struct {
	window int
	from   string
	to     string
}

func (d *dashboardFlags) register(fs *flag.FlagSet, defaultWindow int) {
	fs.IntVar(&d.window, "window", defaultWindow, "Trailing window in days (7, 15, 30 or 90)")
	fs.StringVar(&d.from, "from", "", "Chart start date, YYYY-MM-DD")
	fs.StringVar(&d.to, "to", "", "Chart end date, YYYY-MM-DD")
}

// loadDashboard builds and refreshes a dashboard. A failed fetch is
// reported through the toast but the dashboard is still returned with
// whatever it holds.
func (a *app) loadDashboard(ctx context.Context, f dashboardFlags) (*views.Dashboard, error) {
	dash := views.NewDashboard(a.client.Gasometers(), a.client.Readings(), a.viewOptions()...)
	if err := dash.SetWindow(f.window); err != nil {
		return nil, err
	}
	dash.SetDateRange(f.from, f.to)

	if err := dash.Refresh(ctx); err != nil {
		if errors.Is(err, session.ErrLoginRequired) {
			return nil, err
		}
		a.notify()
	}
	return dash, nil
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	fs := a.newFlagSet("dashboard")
	var f dashboardFlags
	f.register(fs, a.config.Dashboard.WindowDays)
	if err := fs.Parse(args); err != nil {
		return err
	}

	dash, err := a.loadDashboard(ctx, f)
	if err != nil {
		return err
	}
	return renderDashboard(a.out, dash)
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := a.newFlagSet("export")
	var f dashboardFlags
	f.register(fs, a.config.Dashboard.WindowDays)
	format := fs.String("format", "xlsx", "Report format, xlsx or pdf")
	out := fs.String("out", "", "Output file (default gascontrol-report.<format>)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	write := report.WriteXLSX
	switch *format {
	case "xlsx":
	case "pdf":
		write = report.WritePDF
	default:
		return fmt.Errorf("unknown report format %q", *format)
	}
	if *out == "" {
		*out = "gascontrol-report." + *format
	}

	dash, err := a.loadDashboard(ctx, f)
	if err != nil {
		return err
	}

	r := report.Build(dash)
	err = writeReport(*out, func(w io.Writer) error {
		return write(w, r, report.WithProgress(os.Stderr))
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Report written to %s\n", *out)
	return nil
}

// writeReport creates path and fills it with write. A failed write removes
// the partial file.
func writeReport(path string, write func(io.Writer) error) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if err = write(file); err != nil {
		file.Close()
		return err
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	return nil
}

func (a *app) gasometers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("gasometers: expected list, show, create, update or delete")
	}
	view := views.NewGasometersView(a.client.Gasometers(), a.viewOptions()...)
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		fs := a.newFlagSet("gasometers list")
		search := fs.String("search", "", "Filter by code or exact id")
		page := fs.Int("page", 1, "Page number")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := view.Refresh(ctx); err != nil {
			a.notify()
			return err
		}
		view.Search(*search)
		view.Goto(*page)
		return renderGasometers(a.out, view)

	case "show":
		id, _, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := view.Refresh(ctx); err != nil {
			a.notify()
			return err
		}
		g, ok := view.Get(id)
		if !ok {
			return fmt.Errorf("gasometer %d not found", id)
		}
		return renderGasometer(a.out, g)

	case "create":
		fs := a.newFlagSet("gasometers create")
		var payload models.GasometerPayload
		fs.StringVar(&payload.Code, "code", "", "Gasometer code")
		fs.IntVar(&payload.Apartment, "apartment", 0, "Apartment id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		err := view.Create(ctx, payload)
		a.notify()
		return err

	case "update":
		id, rest, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := view.Refresh(ctx); err != nil {
			a.notify()
			return err
		}
		current, ok := view.Get(id)
		if !ok {
			return fmt.Errorf("gasometer %d not found", id)
		}

		payload := models.GasometerPayload{Code: current.Code, Apartment: current.Apartment.ID}
		fs := a.newFlagSet("gasometers update")
		fs.StringVar(&payload.Code, "code", payload.Code, "Gasometer code")
		fs.IntVar(&payload.Apartment, "apartment", payload.Apartment, "Apartment id")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		err = view.Update(ctx, id, payload)
		a.notify()
		return err

	case "delete":
		id, _, err := parseID(rest)
		if err != nil {
			return err
		}
		err = view.Delete(ctx, id)
		a.notify()
		return err

	default:
		return fmt.Errorf("gasometers: unknown subcommand %q", sub)
	}
}

func (a *app) readings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("readings: expected list, show, create, update or delete")
	}
	view := views.NewReadingsView(a.client.Readings(), a.viewOptions()...)
	sub, rest := args[0], args[1:]

	switch sub {
	case "list":
		fs := a.newFlagSet("readings list")
		search := fs.String("search", "", "Filter by reading or gasometer id")
		periodicity := fs.String("periodicity", "", "Filter by periodicity")
		page := fs.Int("page", 1, "Page number")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if err := view.Refresh(ctx); err != nil {
			a.notify()
			return err
		}
		a.loadGasometerLabels(ctx)

		view.Search(*search)
		if *periodicity != "" {
			p, err := models.ParsePeriodicity(*periodicity)
			if err != nil {
				return err
			}
			view.TogglePeriodicity(p)
		}
		view.Goto(*page)
		return renderReadings(a.out, view, a.index)

	case "show":
		id, _, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := view.Refresh(ctx); err != nil {
			a.notify()
			return err
		}
		a.loadGasometerLabels(ctx)
		r, ok := view.Get(id)
		if !ok {
			return fmt.Errorf("reading %d not found", id)
		}
		return renderReading(a.out, r, a.index)

	case "create":
		fs := a.newFlagSet("readings create")
		var rf readingFlags
		rf.register(fs, models.ReadingPayload{})
		if err := fs.Parse(rest); err != nil {
			return err
		}
		payload, err := rf.payload()
		if err != nil {
			return err
		}
		err = view.Create(ctx, payload)
		a.notify()
		return err

	case "update":
		id, rest, err := parseID(rest)
		if err != nil {
			return err
		}
		if err := view.Refresh(ctx); err != nil {
			a.notify()
			return err
		}
		current, ok := view.Get(id)
		if !ok {
			return fmt.Errorf("reading %d not found", id)
		}

		fs := a.newFlagSet("readings update")
		var rf readingFlags
		rf.register(fs, models.ReadingPayload{
			Gasometer:   current.Gasometer,
			Date:        current.Date,
			Consumption: current.Consumption.Float64(),
			Periodicity: current.Periodicity,
		})
		if err := fs.Parse(rest); err != nil {
			return err
		}
		payload, err := rf.payload()
		if err != nil {
			return err
		}
		err = view.Update(ctx, id, payload)
		a.notify()
		return err

	case "delete":
		id, _, err := parseID(rest)
		if err != nil {
			return err
		}
		err = view.Delete(ctx, id)
		a.notify()
		return err

	default:
		return fmt.Errorf("readings: unknown subcommand %q", sub)
	}
}

// loadGasometerLabels fills the index so readings show gasometer codes.
// Failures only cost the labels.
func (a *app) loadGasometerLabels(ctx context.Context) {
	gasometers := views.NewGasometersView(a.client.Gasometers(),
		views.WithGate(a.session),
		views.WithLogger(a.logger),
		views.WithIndex(a.index),
	)
	if err := gasometers.Refresh(ctx); err != nil {
		a.logger.WithError(err).Debug("Gasometer labels unavailable")
	}
}

type readingFlags struct {
	gasometer   int
	date        string
	consumption float64
	periodicity string
}

func (r *readingFlags) register(fs *flag.FlagSet, defaults models.ReadingPayload) {
	fs.IntVar(&r.gasometer, "gasometer", defaults.Gasometer, "Gasometer id")
	fs.StringVar(&r.date, "date", defaults.Date, "Reading date, YYYY-MM-DD")
	fs.Float64Var(&r.consumption, "consumption", defaults.Consumption, "Consumption in m³")
	fs.StringVar(&r.periodicity, "periodicity", string(defaults.Periodicity), "SEMANAL, MENSAL, BIMESTRAL or SEMESTRAL")
}

func (r *readingFlags) payload() (models.ReadingPayload, error) {
	payload := models.ReadingPayload{
		Gasometer:   r.gasometer,
		Date:        r.date,
		Consumption: r.consumption,
	}
	if r.periodicity != "" {
		p, err := models.ParsePeriodicity(r.periodicity)
		if err != nil {
			return payload, err
		}
		payload.Periodicity = p
	}
	return payload, nil
}

// parseID takes the leading positional id off args.
func parseID(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, errors.New("missing id")
	}
	id, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || id <= 0 {
		return 0, nil, fmt.Errorf("invalid id %q", args[0])
	}
	return id, args[1:], nil
}
