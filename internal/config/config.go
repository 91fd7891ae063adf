package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tejusbharadwaj/gascontrol/internal/query"
)

// EnvPrefix prefixes environment overrides, e.g. GASCONTROL_API_BASE_URL.
const EnvPrefix = "GASCONTROL"

// Config holds all configuration for our application
type Config struct {
	API       APIConfig       `mapstructure:"api" yaml:"api"`
	Session   SessionConfig   `mapstructure:"session" yaml:"session"`
	Auth      AuthConfig      `mapstructure:"auth" yaml:"auth"`
	Dashboard DashboardConfig `mapstructure:"dashboard" yaml:"dashboard"`
	Server    ServerConfig    `mapstructure:"server" yaml:"server"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
}

type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RateLimit      float64       `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
}

type SessionConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig is the single accepted login.
type AuthConfig struct {
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password"`
}

type DashboardConfig struct {
	WindowDays         int `mapstructure:"window_days" yaml:"window_days"`
	GasometerCacheSize int `mapstructure:"gasometer_cache_size" yaml:"gasometer_cache_size"`
}

// ServerConfig configures watch mode.
type ServerConfig struct {
	Host           string  `mapstructure:"host" yaml:"host"`
	GRPCPort       int     `mapstructure:"grpc_port" yaml:"grpc_port"`
	MetricsPort    int     `mapstructure:"metrics_port" yaml:"metrics_port"`
	Schedule       string  `mapstructure:"schedule" yaml:"schedule"`
	RateLimit      float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst" yaml:"rate_limit_burst"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load builds the configuration from defaults, the YAML file at path and
// GASCONTROL_* environment variables, in increasing precedence. $VAR
// references inside the file are expanded. An empty path skips the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		data, err := readExpanded(path)
		if err != nil {
			return nil, err
		}
		v.SetConfigType("yaml")
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// readExpanded normalises the file through yaml, then expands environment
// variables in it.
func readExpanded(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// First unmarshal into a map to reject malformed files early
	var rawConfig map[string]interface{}
	if err := yaml.Unmarshal(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raw config: %w", err)
	}

	data, err = yaml.Marshal(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raw config: %w", err)
	}

	return []byte(os.ExpandEnv(string(data))), nil
}

// Validate rejects settings the rest of the program cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout cannot be negative")
	}
	if !query.ValidWindow(c.Dashboard.WindowDays) {
		return fmt.Errorf("dashboard.window_days must be one of %v", query.TrailingWindows)
	}
	if c.Dashboard.GasometerCacheSize < 1 {
		return errors.New("dashboard.gasometer_cache_size must be positive")
	}
	if c.Session.Path == "" {
		return errors.New("session.path is required")
	}
	if _, err := logrus.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format)
	}
	return nil
}

// NewLogger builds the logger described by the logging section.
func (c LoggingConfig) NewLogger() *logrus.Logger {
	logger := logrus.New()
	if c.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	if level, err := logrus.ParseLevel(c.Level); err == nil {
		logger.SetLevel(level)
	}
	return logger
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000/api")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.rate_limit", 0.0)
	v.SetDefault("api.rate_limit_burst", 1)

	v.SetDefault("session.path", defaultSessionPath())

	v.SetDefault("auth.username", "admin")
	v.SetDefault("auth.password", "1234")

	v.SetDefault("dashboard.window_days", query.DefaultWindow)
	v.SetDefault("dashboard.gasometer_cache_size", 1000)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.grpc_port", 50051)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("server.schedule", "*/5 * * * *")
	v.SetDefault("server.rate_limit", 5.0)
	v.SetDefault("server.rate_limit_burst", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gascontrol-session.json"
	}
	return filepath.Join(home, ".gascontrol", "session.json")
}
