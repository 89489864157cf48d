package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig contains server-specific configuration
type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"min=1,max=65535"`
	SessionSecret     string        `mapstructure:"session_secret" validate:"required,min=16"`
	SessionTTL        time.Duration `mapstructure:"session_ttl" validate:"gt=0"`
	CookieName        string        `mapstructure:"cookie_name" validate:"required"`
	SecureCookies     bool          `mapstructure:"secure_cookies"`
	BrowseIdleTimeout time.Duration `mapstructure:"browse_idle_timeout" validate:"gt=0"`
	AllowedOrigin     string        `mapstructure:"allowed_origin"`
}

// BackendConfig describes the Postlog REST backend
type BackendConfig struct {
	BaseURL  string        `mapstructure:"base_url" validate:"required,url"`
	LoginURL string        `mapstructure:"login_url" validate:"omitempty,url"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// TelemetryConfig contains telemetry configuration
type TelemetryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// MetricsConfig toggles the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// Load loads the configuration from viper
func Load() (*Config, error) {
	cfg := &Config{}

	// Set defaults
	setDefaults()

	// Unmarshal configuration
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}

	// Post-process configuration
	if err := postProcess(cfg); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for missing or malformed values
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.port", 3000)
	viper.SetDefault("server.session_ttl", 24*time.Hour)
	viper.SetDefault("server.cookie_name", "access_token")
	viper.SetDefault("server.secure_cookies", false)
	viper.SetDefault("server.browse_idle_timeout", 30*time.Minute)

	// Backend defaults
	viper.SetDefault("backend.base_url", "https://api.postlog.gethiroscope.com")
	viper.SetDefault("backend.timeout", 60*time.Second)

	// Telemetry defaults
	viper.SetDefault("telemetry.enabled", false)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.json", false)

	// Environment variable mappings
	viper.BindEnv("server.session_secret", "SESSION_SECRET")
	viper.BindEnv("backend.base_url", "POSTLOG_BACKEND_URL")
	viper.BindEnv("backend.login_url", "POSTLOG_LOGIN_URL")
	viper.BindEnv("telemetry.endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func postProcess(cfg *Config) error {
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")

	// The backend starts the OAuth flow at its root
	if cfg.Backend.LoginURL == "" {
		cfg.Backend.LoginURL = cfg.Backend.BaseURL
	}

	if cfg.Server.SessionSecret == "" {
		cfg.Server.SessionSecret = os.Getenv("SESSION_SECRET")
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	return nil
}
