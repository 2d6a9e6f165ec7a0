// Package provider implements the object and composition providers that
// translate the telemetry dictionary into host domain objects.
package provider

import (
	"context"
	"fmt"

	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/pkg/models"
)

// ObjectProvider resolves identifiers in the fprime.taxonomy namespace.
type ObjectProvider struct {
	loader  dictionary.Loader
	metrics *observability.Metrics
}

// NewObjectProvider creates an object provider. metrics may be nil.
func NewObjectProvider(loader dictionary.Loader, metrics *observability.Metrics) *ObjectProvider {
	return &ObjectProvider{loader: loader, metrics: metrics}
}

// Get resolves id to the root folder or to a telemetry point.
// A key with no matching measurement yields a *models.NotFoundError.
func (p *ObjectProvider) Get(ctx context.Context, id models.Identifier) (*models.ObjectDescriptor, error) {
	obj, err := p.get(ctx, id)
	p.metrics.ObserveResolution("object", err)
	return obj, err
}

func (p *ObjectProvider) get(ctx context.Context, id models.Identifier) (*models.ObjectDescriptor, error) {
	if id.Namespace != models.Namespace {
		return nil, fmt.Errorf("resolving %s: %w", id, models.ErrNamespaceMismatch)
	}

	dict, err := p.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", id, err)
	}

	if id.Key == models.RootKey {
		return &models.ObjectDescriptor{
			Identifier: id,
			Name:       dict.Name,
			Type:       models.FolderType,
			Location:   models.RootLocation,
		}, nil
	}

	m, ok := dict.Find(id.Key)
	if !ok {
		return nil, &models.NotFoundError{Identifier: id}
	}
	return TelemetryObject(m), nil
}

// TelemetryObject builds the telemetry-point descriptor of m. A measurement
// without values gets an empty list, never null.
func TelemetryObject(m models.Measurement) *models.ObjectDescriptor {
	values := m.Values
	if values == nil {
		values = []models.ValueDescriptor{}
	}
	return &models.ObjectDescriptor{
		Identifier: models.Identifier{Namespace: models.Namespace, Key: m.Key},
		Name:       m.Name,
		Type:       models.TelemetryType,
		Location:   models.RootIdentifier().String(),
		Telemetry:  &models.Telemetry{Values: values},
	}
}
