// Package config loads the server configuration from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the complete server configuration.
type Config struct {
	// DB is the SQLite database path.
	DB string `yaml:"db" validate:"required"`

	// Addr is the HTTP listen address.
	Addr string `yaml:"addr" validate:"required"`

	// AdminUser is the username of the admin created on first run.
	AdminUser string `yaml:"admin_user" validate:"required,max=64"`

	Log       LogConfig       `yaml:"log"`
	Tracing   TracingConfig   `yaml:"tracing"`
	LoginRate LoginRateConfig `yaml:"login_rate"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=console json"`

	// Path is an optional file that receives every log line as well.
	Path string `yaml:"path"`
}

// TracingConfig configures OpenTelemetry tracing.
type TracingConfig struct {
	Exporter   string  `yaml:"exporter" validate:"oneof=none stdout"`
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// LoginRateConfig limits login attempts per client address.
type LoginRateConfig struct {
	PerMinute int `yaml:"per_minute" validate:"gte=1"`
	Burst     int `yaml:"burst" validate:"gte=1"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace" validate:"required_if=Enabled true"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		DB:        "izposoja.sqlite3",
		Addr:      ":8080",
		AdminUser: "admin",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Tracing: TracingConfig{
			Exporter:   "none",
			SampleRate: 1,
		},
		LoginRate: LoginRateConfig{
			PerMinute: 10,
			Burst:     5,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "izposoja",
		},
	}
}

// Load reads path over the defaults and validates the result. An empty
// path yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("%s: failed %s %s", fe.Namespace(), fe.Tag(), fe.Param()))
	}
	return errors.Join(errs...)
}
