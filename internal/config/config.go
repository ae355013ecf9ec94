// Package config loads the harness configuration from an optional YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the immutable run configuration. It is built once at process
// start from defaults, the config file, and command line flags, in that
// order of increasing priority.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Workload WorkloadConfig `yaml:"workload"`
	Retry    RetryConfig    `yaml:"retry"`
}

// DatabaseConfig selects and configures the storage engine.
type DatabaseConfig struct {
	// Driver is one of sqlite, postgres, mysql.
	Driver string `yaml:"driver"`

	// DSN is the engine address: a file path for sqlite, a URL otherwise.
	DSN string `yaml:"dsn"`

	// BusyTimeout is the per-connection SQLite busy timeout.
	BusyTimeout Duration `yaml:"busy_timeout"`
}

// WorkloadConfig sizes the insertion workload.
type WorkloadConfig struct {
	// Workers is the number of concurrent insertion workers.
	Workers int `yaml:"workers"`

	// Inserts is the total number of records to insert across all workers.
	Inserts int64 `yaml:"inserts"`
}

// RetryConfig bounds the contention retry policy.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts"`
	BaseDelay   Duration `yaml:"base_delay"`
	MaxDelay    Duration `yaml:"max_delay"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "stress.db",
			BusyTimeout: 0,
		},
		Workload: WorkloadConfig{
			Workers: 4,
			Inserts: 10000,
		},
		Retry: RetryConfig{
			MaxAttempts: 8,
			BaseDelay:   Duration(5 * time.Millisecond),
			MaxDelay:    Duration(250 * time.Millisecond),
		},
	}
}

// Load reads the configuration file at path, overlaying it on the defaults.
// A missing file is not an error; the defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate enforces the run configuration invariants.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database dsn is required")
	}
	if c.Workload.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workload.Workers)
	}
	if c.Workload.Inserts < 0 {
		return fmt.Errorf("inserts must not be negative, got %d", c.Workload.Inserts)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay < 0 || c.Retry.MaxDelay < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	if c.Retry.MaxDelay < c.Retry.BaseDelay {
		return fmt.Errorf("retry max_delay %v is below base_delay %v", c.Retry.MaxDelay.Std(), c.Retry.BaseDelay.Std())
	}
	return nil
}

// Duration is a time.Duration that unmarshals from YAML strings like "250ms"
// as well as integer nanoseconds.
type Duration time.Duration

// Std converts back to the standard library type.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("duration must be a string or integer nanoseconds: %w", err)
	}
	*d = Duration(n)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Std().String(), nil
}
