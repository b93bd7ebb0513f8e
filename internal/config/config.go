package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Session   SessionConfig   `yaml:"session"`
	Reports   ReportsConfig   `yaml:"reports"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type SessionConfig struct {
	StartDelay   time.Duration `yaml:"start_delay"`
	HoldDuration time.Duration `yaml:"hold_duration"`
	TargetReps   int           `yaml:"target_reps"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

type ReportsConfig struct {
	// Database names the in-memory SQLite database holding the report list.
	Database string `yaml:"database"`
}

type CatalogConfig struct {
	// Path to an alternative catalog YAML. Empty uses the built-in catalog.
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Default returns the configuration used when a field is absent from the file.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Tailscale: TailscaleConfig{
			Hostname: "physiotrainer",
			StateDir: "tsnet-state",
		},
		Session: SessionConfig{
			StartDelay:   10 * time.Second,
			HoldDuration: 15 * time.Second,
			TargetReps:   5,
			TickInterval: 500 * time.Millisecond,
		},
		Reports: ReportsConfig{Database: "physio-reports"},
		Metrics: MetricsConfig{Enabled: true},
	}
}

// Load reads config from a YAML file on top of the defaults, then applies
// environment variable overrides. Env vars use the prefix PHYSIO_:
//
//	PHYSIO_SERVER_HOST, PHYSIO_SERVER_PORT,
//	PHYSIO_TAILSCALE_ENABLED, PHYSIO_TAILSCALE_HOSTNAME, PHYSIO_TAILSCALE_STATE_DIR,
//	PHYSIO_SESSION_START_DELAY, PHYSIO_SESSION_HOLD_DURATION,
//	PHYSIO_SESSION_TARGET_REPS, PHYSIO_SESSION_TICK_INTERVAL,
//	PHYSIO_REPORTS_DATABASE, PHYSIO_CATALOG_PATH, PHYSIO_METRICS_ENABLED
//
// An empty path skips the file and uses defaults plus environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("environment override: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("PHYSIO_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PHYSIO_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PHYSIO_TAILSCALE_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PHYSIO_TAILSCALE_ENABLED: %w", err)
		}
		cfg.Tailscale.Enabled = enabled
	}
	if v := os.Getenv("PHYSIO_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("PHYSIO_TAILSCALE_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
	durations := []struct {
		env string
		dst *time.Duration
	}{
		{"PHYSIO_SESSION_START_DELAY", &cfg.Session.StartDelay},
		{"PHYSIO_SESSION_HOLD_DURATION", &cfg.Session.HoldDuration},
		{"PHYSIO_SESSION_TICK_INTERVAL", &cfg.Session.TickInterval},
	}
	for _, d := range durations {
		if v := os.Getenv(d.env); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", d.env, err)
			}
			*d.dst = parsed
		}
	}
	if v := os.Getenv("PHYSIO_SESSION_TARGET_REPS"); v != "" {
		if reps, err := strconv.Atoi(v); err == nil {
			cfg.Session.TargetReps = reps
		}
	}
	if v := os.Getenv("PHYSIO_REPORTS_DATABASE"); v != "" {
		cfg.Reports.Database = v
	}
	if v := os.Getenv("PHYSIO_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("PHYSIO_METRICS_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PHYSIO_METRICS_ENABLED: %w", err)
		}
		cfg.Metrics.Enabled = enabled
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	if c.Session.StartDelay < 0 {
		return fmt.Errorf("session.start_delay must not be negative")
	}
	if c.Session.HoldDuration <= 0 {
		return fmt.Errorf("session.hold_duration must be positive")
	}
	if c.Session.TargetReps <= 0 {
		return fmt.Errorf("session.target_reps must be positive")
	}
	if c.Session.TickInterval <= 0 {
		return fmt.Errorf("session.tick_interval must be positive")
	}
	if c.Reports.Database == "" {
		return fmt.Errorf("reports.database is required")
	}
	return nil
}
