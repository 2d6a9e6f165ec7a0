// Package plugin installs the F´ dictionary providers into a host registry.
package plugin

import (
	"fmt"

	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/fidde/fprime_openmct/internal/host"
	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/internal/provider"
	"github.com/fidde/fprime_openmct/pkg/models"
)

type options struct {
	telemetryType models.TypeDescriptor
	metrics       *observability.Metrics
}

// Option customizes Install.
type Option func(*options)

// WithTelemetryType overrides the descriptor registered for telemetry points.
func WithTelemetryType(t models.TypeDescriptor) Option {
	return func(o *options) {
		o.telemetryType = t
	}
}

// WithMetrics records resolutions in m.
func WithMetrics(m *observability.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// Install registers the root folder, the object provider for the
// fprime.taxonomy namespace, the composition provider and the telemetry
// point type with reg.
func Install(reg host.Registry, loader dictionary.Loader, opts ...Option) error {
	o := options{telemetryType: models.DefaultTelemetryType()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := reg.AddRoot(models.RootIdentifier()); err != nil {
		return fmt.Errorf("registering root: %w", err)
	}
	if err := reg.AddProvider(models.Namespace, provider.NewObjectProvider(loader, o.metrics)); err != nil {
		return fmt.Errorf("registering object provider: %w", err)
	}
	if err := reg.AddCompositionProvider(provider.NewCompositionProvider(loader, o.metrics)); err != nil {
		return fmt.Errorf("registering composition provider: %w", err)
	}
	if err := reg.AddType(models.TelemetryType, o.telemetryType); err != nil {
		return fmt.Errorf("registering type: %w", err)
	}
	return nil
}
