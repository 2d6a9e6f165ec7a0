package provider

import (
	"context"
	"fmt"

	"github.com/fidde/fprime_openmct/internal/dictionary"
	"github.com/fidde/fprime_openmct/internal/observability"
	"github.com/fidde/fprime_openmct/pkg/models"
)

// CompositionProvider lists the children of the root folder.
type CompositionProvider struct {
	loader  dictionary.Loader
	metrics *observability.Metrics
}

// NewCompositionProvider creates a composition provider. metrics may be nil.
func NewCompositionProvider(loader dictionary.Loader, metrics *observability.Metrics) *CompositionProvider {
	return &CompositionProvider{loader: loader, metrics: metrics}
}

// AppliesTo reports whether obj is a folder in the fprime.taxonomy namespace.
func (p *CompositionProvider) AppliesTo(obj *models.ObjectDescriptor) bool {
	return obj != nil &&
		obj.Identifier.Namespace == models.Namespace &&
		obj.Type == models.FolderType
}

// Load returns one identifier per measurement, in dictionary order.
func (p *CompositionProvider) Load(ctx context.Context, obj *models.ObjectDescriptor) ([]models.Identifier, error) {
	ids, err := p.load(ctx, obj)
	p.metrics.ObserveResolution("composition", err)
	return ids, err
}

func (p *CompositionProvider) load(ctx context.Context, obj *models.ObjectDescriptor) ([]models.Identifier, error) {
	if obj == nil {
		return nil, models.ErrNotComposable
	}
	if !p.AppliesTo(obj) {
		return nil, fmt.Errorf("loading composition of %s: %w", obj.Identifier, models.ErrNotComposable)
	}

	dict, err := p.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading composition of %s: %w", obj.Identifier, err)
	}

	ids := make([]models.Identifier, len(dict.Measurements))
	for i, m := range dict.Measurements {
		ids[i] = models.Identifier{Namespace: models.Namespace, Key: m.Key}
	}
	return ids, nil
}
