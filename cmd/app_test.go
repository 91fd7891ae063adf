package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejusbharadwaj/gascontrol/internal/api/apitest"
	"github.com/tejusbharadwaj/gascontrol/internal/config"
	"github.com/tejusbharadwaj/gascontrol/internal/models"
	"github.com/tejusbharadwaj/gascontrol/internal/session"
)

func newTestApp(t *testing.T, baseURL string) (*app, *bytes.Buffer) {
	t.Helper()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.API.BaseURL = baseURL
	cfg.Session.Path = filepath.Join(t.TempDir(), "session.json")

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	var out bytes.Buffer
	a, err := newApp(cfg, logger, &out)
	require.NoError(t, err)
	return a, &out
}

func TestCommandsRequireLogin(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()

	a, _ := newTestApp(t, backend.URL())
	ctx := context.Background()

	assert.ErrorIs(t, a.run(ctx, []string{"gasometers", "list"}), session.ErrLoginRequired)
	assert.ErrorIs(t, a.run(ctx, []string{"dashboard"}), session.ErrLoginRequired)
	assert.ErrorIs(t, a.run(ctx, []string{"login", "-u", "admin", "-p", "wrong"}), session.ErrInvalidCredentials)
	assert.ErrorIs(t, a.run(ctx, []string{"login", "-p", "1234"}), session.ErrUsernameRequired)
	assert.Empty(t, backend.Requests())
}

func TestCommandsRoundTrip(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()

	a, out := newTestApp(t, backend.URL())
	ctx := context.Background()
	date := time.Now().UTC().AddDate(0, 0, -2).Format("2006-01-02")

	require.NoError(t, a.run(ctx, []string{"login", "-u", "admin", "-p", "1234"}))

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"gasometers", "create", "-code", "GAS-100", "-apartment", "7"}))
	assert.Contains(t, out.String(), "[success] Gasometer successfully created")

	out.Reset()
	require.Error(t, a.run(ctx, []string{"gasometers", "create", "-code", "GAS-101", "-apartment", "7"}))
	assert.Contains(t, out.String(), "[error] Failed to create gasometer: Este apartamento já possui um gasômetro.")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"gasometers", "list"}))
	assert.Contains(t, out.String(), "GAS-100")
	assert.Contains(t, out.String(), "Page 1 of 1 (1 items)")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"readings", "create",
		"-gasometer", "1", "-date", date, "-consumption", "3.5", "-periodicity", "monthly"}))
	assert.Contains(t, out.String(), "Reading successfully created")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"readings", "update", "2", "-consumption", "4"}))
	assert.Contains(t, out.String(), "Reading successfully edited")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"readings", "list", "-periodicity", "MENSAL"}))
	assert.Contains(t, out.String(), "GAS-100")
	assert.Contains(t, out.String(), "4.00")

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"dashboard", "-window", "30"}))
	assert.Contains(t, out.String(), "Last 30 days")
	assert.Contains(t, out.String(), date)

	reportPath := filepath.Join(t.TempDir(), "report.pdf")
	require.NoError(t, a.run(ctx, []string{"export", "-format", "pdf", "-out", reportPath}))
	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"readings", "delete", "2"}))
	assert.Contains(t, out.String(), "Reading successfully deleted")

	require.NoError(t, a.run(ctx, []string{"logout"}))
	assert.ErrorIs(t, a.run(ctx, []string{"readings", "list"}), session.ErrLoginRequired)
}

func TestReadingsListEmptyCollection(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.FailWith("GET /leituras/", 404)

	a, out := newTestApp(t, backend.URL())
	ctx := context.Background()
	require.NoError(t, a.run(ctx, []string{"login", "-u", "admin", "-p", "1234"}))

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"readings", "list"}))
	assert.Equal(t, "No readings found.\n", out.String())
}

func TestCommandErrors(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.AddGasometer("GAS-1", 1)
	backend.AddReading(1, "2024-01-01", "1", models.Weekly)

	a, _ := newTestApp(t, backend.URL())
	ctx := context.Background()
	require.NoError(t, a.run(ctx, []string{"login", "-u", "admin", "-p", "1234"}))

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "no command", args: nil, wantErr: "no command given"},
		{name: "unknown command", args: []string{"frobnicate"}, wantErr: `unknown command "frobnicate"`},
		{name: "bad id", args: []string{"gasometers", "delete", "abc"}, wantErr: `invalid id "abc"`},
		{name: "missing id", args: []string{"readings", "show"}, wantErr: "missing id"},
		{name: "unknown gasometer", args: []string{"gasometers", "show", "99"}, wantErr: "gasometer 99 not found"},
		{name: "bad window", args: []string{"dashboard", "-window", "14"}, wantErr: "invalid window: 14"},
		{name: "bad format", args: []string{"export", "-format", "csv"}, wantErr: `unknown report format "csv"`},
		{name: "bad periodicity", args: []string{"readings", "list", "-periodicity", "daily"}, wantErr: "invalid periodicity: daily"},
		{name: "future reading", args: []string{"readings", "create", "-gasometer", "1", "-date", "2999-01-01", "-periodicity", "SEMANAL"}, wantErr: "reading date cannot be in the future"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := a.run(ctx, tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDashboardFetchFailure(t *testing.T) {
	backend := apitest.NewBackend()
	defer backend.Close()
	backend.FailWith("GET /gasometros/", 500)

	a, out := newTestApp(t, backend.URL())
	ctx := context.Background()
	require.NoError(t, a.run(ctx, []string{"login", "-u", "admin", "-p", "1234"}))

	out.Reset()
	require.NoError(t, a.run(ctx, []string{"dashboard"}))
	assert.Contains(t, out.String(), "[error] Failed to fetch data\n")
	assert.Contains(t, out.String(), "Last 7 days")
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "ok.xlsx")
	require.NoError(t, writeReport(path, func(w io.Writer) error {
		_, err := io.WriteString(w, "data")
		return err
	}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	path = filepath.Join(dir, "partial.pdf")
	want := errors.New("disk full")
	err = writeReport(path, func(w io.Writer) error {
		_, _ = io.WriteString(w, "%PDF-")
		return want
	})
	assert.ErrorIs(t, err, want)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "partial report is removed")
}
