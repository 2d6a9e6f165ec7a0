package dictionary

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/fidde/fprime_openmct/internal/observability"
)

// Backend names.
const (
	BackendHTTP   = "http"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config holds dictionary loader configuration.
type Config struct {
	// Backend selects the source: "http", "file" or "sqlite"
	Backend string `yaml:"backend"`

	// URL of the document for the http backend
	URL string `yaml:"url"`

	// Path of the document for the file backend
	Path string `yaml:"path"`

	// SQLitePath is the database for the sqlite backend
	SQLitePath string `yaml:"sqlite_path"`

	// Timeout bounds each http fetch (0 = none)
	Timeout time.Duration `yaml:"timeout"`

	// Coalesce shares in-flight loads between concurrent callers
	Coalesce bool `yaml:"coalesce"`
}

// DefaultConfig returns default loader configuration.
func DefaultConfig() Config {
	return Config{
		Backend:  BackendHTTP,
		URL:      "http://localhost:8080" + DefaultPath,
		Timeout:  30 * time.Second,
		Coalesce: true,
	}
}

// Validate checks that the selected backend has its location set.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendHTTP:
		if c.URL == "" {
			return fmt.Errorf("dictionary.url is required for the %s backend", c.Backend)
		}
	case BackendFile:
		if c.Path == "" {
			return fmt.Errorf("dictionary.path is required for the %s backend", c.Backend)
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("dictionary.sqlite_path is required for the %s backend", c.Backend)
		}
	default:
		return fmt.Errorf("unknown dictionary backend: %s (supported: http, file, sqlite)", c.Backend)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("dictionary.timeout must not be negative")
	}
	return nil
}

// New creates a loader based on configuration. The returned close function
// releases backend resources and is never nil.
func New(cfg Config, metrics *observability.Metrics, logger *slog.Logger) (Loader, func() error, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		base    Loader
		closeFn = func() error { return nil }
	)

	switch cfg.Backend {
	case BackendHTTP:
		l := NewHTTPLoader(cfg.URL, WithTimeout(cfg.Timeout))
		logger.Info("Using HTTP dictionary source", "url", l.URL(), "timeout", cfg.Timeout)
		base = l

	case BackendFile:
		logger.Info("Using file dictionary source", "path", cfg.Path)
		base = NewFileLoader(cfg.Path)

	case BackendSQLite:
		logger.Info("Using SQLite dictionary source", "path", cfg.SQLitePath)
		l, err := NewSQLiteLoader(cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("creating SQLite loader: %w", err)
		}
		base = l
		closeFn = l.Close
	}

	var loader Loader = NewInstrumented(base, cfg.Backend, metrics, logger)
	if cfg.Coalesce {
		loader = NewCoalescing(loader, metrics)
	}
	return loader, closeFn, nil
}
