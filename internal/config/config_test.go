package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))
	return configPath
}

func TestLoad(t *testing.T) {
	configPath := writeConfig(t, `
api:
  base_url: "http://backend:8000/api"
  timeout: 10s
  rate_limit: 2.5
  rate_limit_burst: 4

session:
  path: "/tmp/gascontrol/session.json"

dashboard:
  window_days: 30
  gasometer_cache_size: 50

server:
  grpc_port: 6000
  schedule: "@every 1m"

logging:
  level: "debug"
  format: "text"
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, config)

	assert.Equal(t, "http://backend:8000/api", config.API.BaseURL)
	assert.Equal(t, 10*time.Second, config.API.Timeout)
	assert.Equal(t, 2.5, config.API.RateLimit)
	assert.Equal(t, 4, config.API.RateLimitBurst)
	assert.Equal(t, "/tmp/gascontrol/session.json", config.Session.Path)
	assert.Equal(t, 30, config.Dashboard.WindowDays)
	assert.Equal(t, 50, config.Dashboard.GasometerCacheSize)
	assert.Equal(t, 6000, config.Server.GRPCPort)
	assert.Equal(t, "@every 1m", config.Server.Schedule)
	assert.Equal(t, "debug", config.Logging.Level)

	// untouched sections keep their defaults
	assert.Equal(t, "admin", config.Auth.Username)
	assert.Equal(t, "1234", config.Auth.Password)
	assert.Equal(t, 9090, config.Server.MetricsPort)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api", config.API.BaseURL)
	assert.Equal(t, 30*time.Second, config.API.Timeout)
	assert.Equal(t, 7, config.Dashboard.WindowDays)
	assert.Equal(t, 50051, config.Server.GRPCPort)
	assert.Equal(t, "*/5 * * * *", config.Server.Schedule)
	assert.Equal(t, "json", config.Logging.Format)
	assert.NotEmpty(t, config.Session.Path)
}

func TestLoadWithEnvExpansion(t *testing.T) {
	t.Setenv("BACKEND_HOST", "envhost")
	t.Setenv("BACKEND_PORT", "8001")

	configPath := writeConfig(t, `
api:
  base_url: http://$BACKEND_HOST:$BACKEND_PORT/api
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://envhost:8001/api", config.API.BaseURL)
}

func TestLoadWithEnvOverride(t *testing.T) {
	t.Setenv("GASCONTROL_API_BASE_URL", "http://override/api")
	t.Setenv("GASCONTROL_DASHBOARD_WINDOW_DAYS", "90")

	configPath := writeConfig(t, `
api:
  base_url: "http://file/api"
dashboard:
  window_days: 15
`)

	config, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "http://override/api", config.API.BaseURL)
	assert.Equal(t, 90, config.Dashboard.WindowDays)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "malformed yaml", content: "api: [unclosed", wantErr: "failed to unmarshal raw config"},
		{name: "bad window", content: "dashboard:\n  window_days: 14\n", wantErr: "dashboard.window_days must be one of [7 15 30 90]"},
		{name: "bad level", content: "logging:\n  level: loud\n", wantErr: "logging.level"},
		{name: "bad format", content: "logging:\n  format: xml\n", wantErr: "logging.format must be json or text"},
		{name: "empty base url", content: "api:\n  base_url: \"\"\n", wantErr: "api.base_url is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

func TestNewLogger(t *testing.T) {
	logger := LoggingConfig{Level: "warn", Format: "text"}.NewLogger()
	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, logger.Formatter)

	logger = LoggingConfig{Level: "info", Format: "json"}.NewLogger()
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)
}
