// Package config loads the adapter configuration from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/fidde/fprime_openmct/internal/logging"
	"github.com/fidde/fprime_openmct/pkg/models"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FPRIME_OPENMCT_"

// Config is the complete adapter configuration.
type Config struct {
	// APIAddr is the listen address of the REST API
	APIAddr string `yaml:"api_addr"`

	// DictionaryFile is served at the dictionary path; empty serves the
	// embedded sample
	DictionaryFile string `yaml:"dictionary_file"`

	Dictionary dictionary.Config `yaml:"dictionary"`

	Log logging.Config `yaml:"log"`

	// TelemetryType is registered for every telemetry point
	TelemetryType models.TypeDescriptor `yaml:"telemetry_type"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		APIAddr:         "0.0.0.0:8080",
		Dictionary:      dictionary.DefaultConfig(),
		Log:             logging.DefaultConfig(),
		TelemetryType:   models.DefaultTelemetryType(),
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load reads the YAML file at path over the defaults, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides fields from FPRIME_OPENMCT_* variables.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	str("API_ADDR", &c.APIAddr)
	str("DICTIONARY_FILE", &c.DictionaryFile)
	str("DICTIONARY_BACKEND", &c.Dictionary.Backend)
	str("DICTIONARY_URL", &c.Dictionary.URL)
	str("DICTIONARY_PATH", &c.Dictionary.Path)
	str("DICTIONARY_SQLITE_PATH", &c.Dictionary.SQLitePath)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	if v := getenv(EnvPrefix + "DICTIONARY_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parsing %sDICTIONARY_TIMEOUT: %w", EnvPrefix, err)
		}
		c.Dictionary.Timeout = d
	}
	if v := getenv(EnvPrefix + "DICTIONARY_COALESCE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %sDICTIONARY_COALESCE: %w", EnvPrefix, err)
		}
		c.Dictionary.Coalesce = b
	}
	return nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	var errs []error
	if c.APIAddr == "" {
		errs = append(errs, errors.New("api_addr is required"))
	}
	if err := c.Dictionary.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Log.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.TelemetryType.Name == "" {
		errs = append(errs, errors.New("telemetry_type.name is required"))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("shutdown_timeout must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
