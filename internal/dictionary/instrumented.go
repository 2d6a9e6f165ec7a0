package dictionary

import (
	"context"
	"log/slog"
	"time"

	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/pkg/models"
)

// Instrumented records metrics and debug logs for every load of the wrapped
// Loader. Errors are returned unchanged.
type Instrumented struct {
	next    Loader
	backend string
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewInstrumented wraps next. backend labels the metrics.
func NewInstrumented(next Loader, backend string, metrics *observability.Metrics, logger *slog.Logger) *Instrumented {
	if logger == nil {
		logger = slog.Default()
	}
	return &Instrumented{
		next:    next,
		backend: backend,
		metrics: metrics,
		logger:  logger,
	}
}

// Load delegates to the wrapped Loader.
func (l *Instrumented) Load(ctx context.Context) (*models.Dictionary, error) {
	start := time.Now()
	dict, err := l.next.Load(ctx)
	elapsed := time.Since(start)

	count := 0
	if dict != nil {
		count = len(dict.Measurements)
	}
	l.metrics.ObserveLoad(l.backend, elapsed, count, err)

	if err != nil {
		l.logger.WarnContext(ctx, "dictionary load failed",
			"backend", l.backend,
			"duration", elapsed,
			"error", err,
		)
		return nil, err
	}

	l.logger.DebugContext(ctx, "dictionary loaded",
		"backend", l.backend,
		"name", dict.Name,
		"measurements", count,
		"duration", elapsed,
	)
	return dict, nil
}
