// Package config holds the persisted application configuration: poll
// cadences, retry cadence, logging and notification preferences.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Default poll and retry cadences in milliseconds. Physics updates at
// a much higher rate than graphics or static info by design.
const (
	DefaultPhysicsIntervalMS    = 10
	DefaultGraphicsIntervalMS   = 1000
	DefaultStaticInfoIntervalMS = 1000
	DefaultRetryIntervalMS      = 2000
)

// LoggingConfig defines runtime logging behavior.
type LoggingConfig struct {
	Level     string `json:"level"`
	LogToFile bool   `json:"log_to_file"`
}

// TelemetryConfig contains the per-region poll cadences and the
// disconnected-state retry cadence, all in milliseconds.
type TelemetryConfig struct {
	PhysicsIntervalMS    int `json:"physics_interval_ms"`
	GraphicsIntervalMS   int `json:"graphics_interval_ms"`
	StaticInfoIntervalMS int `json:"static_info_interval_ms"`
	RetryIntervalMS      int `json:"retry_interval_ms"`
}

// NotificationConfig stores desktop notification preferences for the
// monitor CLI.
type NotificationConfig struct {
	Enabled            bool `json:"enabled"`
	OnConnectionStatus bool `json:"on_connection_status"`
	OnRunStatus        bool `json:"on_run_status"`
}

// AppConfig is the root persisted application configuration.
type AppConfig struct {
	Telemetry     TelemetryConfig    `json:"telemetry"`
	Logging       LoggingConfig      `json:"logging"`
	Notifications NotificationConfig `json:"notifications"`
}

func Default() AppConfig {
	return AppConfig{
		Telemetry: TelemetryConfig{
			PhysicsIntervalMS:    DefaultPhysicsIntervalMS,
			GraphicsIntervalMS:   DefaultGraphicsIntervalMS,
			StaticInfoIntervalMS: DefaultStaticInfoIntervalMS,
			RetryIntervalMS:      DefaultRetryIntervalMS,
		},
		Logging: LoggingConfig{
			Level:     "info",
			LogToFile: false,
		},
		Notifications: NotificationConfig{
			Enabled:            false,
			OnConnectionStatus: true,
			OnRunStatus:        true,
		},
	}
}

// Load reads path, falling back to defaults when the file does not exist.
func Load(path string) (AppConfig, error) {
	cfg := Default()
	cleanPath := filepath.Clean(path)
	// #nosec G304 -- path is provided by the CLI user.
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}

		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}

	if err := json.Unmarshal(raw, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("decode config json: %w", err)
	}

	cfg.FillMissingDefaults()

	return cfg, nil
}

// FillMissingDefaults replaces zero or negative values with defaults, so a
// partial config file keeps working across new fields.
func (c *AppConfig) FillMissingDefaults() {
	if c.Telemetry.PhysicsIntervalMS <= 0 {
		c.Telemetry.PhysicsIntervalMS = DefaultPhysicsIntervalMS
	}
	if c.Telemetry.GraphicsIntervalMS <= 0 {
		c.Telemetry.GraphicsIntervalMS = DefaultGraphicsIntervalMS
	}
	if c.Telemetry.StaticInfoIntervalMS <= 0 {
		c.Telemetry.StaticInfoIntervalMS = DefaultStaticInfoIntervalMS
	}
	if c.Telemetry.RetryIntervalMS <= 0 {
		c.Telemetry.RetryIntervalMS = DefaultRetryIntervalMS
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c AppConfig) Validate() error {
	if c.Telemetry.PhysicsIntervalMS <= 0 {
		return errors.New("physics interval must be positive")
	}
	if c.Telemetry.GraphicsIntervalMS <= 0 {
		return errors.New("graphics interval must be positive")
	}
	if c.Telemetry.StaticInfoIntervalMS <= 0 {
		return errors.New("static info interval must be positive")
	}
	if c.Telemetry.RetryIntervalMS <= 0 {
		return errors.New("retry interval must be positive")
	}

	return nil
}

func Save(path string, cfg AppConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0o600); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename temp config: %w", err)
	}

	return nil
}
