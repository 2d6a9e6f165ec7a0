// Package host models the registration and lookup surface of the
// visualization host: namespace roots, per-namespace object providers,
// composition providers and the type registry.
package host

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/fidde/fprime_openmct/pkg/models"
)

var (
	// ErrNoProvider is returned when no object provider owns a namespace.
	ErrNoProvider = errors.New("no object provider for namespace")

	// ErrProviderExists is returned when a namespace already has a provider.
	ErrProviderExists = errors.New("object provider already registered for namespace")
)

// ObjectProvider resolves identifiers of one namespace.
type ObjectProvider interface {
	Get(ctx context.Context, id models.Identifier) (*models.ObjectDescriptor, error)
}

// CompositionProvider lists the children of the objects it applies to.
type CompositionProvider interface {
	AppliesTo(obj *models.ObjectDescriptor) bool
	Load(ctx context.Context, obj *models.ObjectDescriptor) ([]models.Identifier, error)
}

// Registry is the registration API a plugin installs itself into.
type Registry interface {
	AddRoot(id models.Identifier) error
	AddProvider(namespace string, p ObjectProvider) error
	AddCompositionProvider(p CompositionProvider) error
	AddType(name string, t models.TypeDescriptor) error
}

// Host is an in-process Registry that also answers lookups.
// It is safe for concurrent use.
type Host struct {
	mu           sync.RWMutex
	roots        []models.Identifier
	objects      map[string]ObjectProvider
	compositions []CompositionProvider
	types        map[string]models.TypeDescriptor
}

// New creates an empty host.
func New() *Host {
	return &Host{
		objects: make(map[string]ObjectProvider),
		types:   make(map[string]models.TypeDescriptor),
	}
}

var _ Registry = (*Host)(nil)

// AddRoot declares id as a root of the object tree. Repeated roots are ignored.
func (h *Host) AddRoot(id models.Identifier) error {
	if id.Namespace == "" || id.Key == "" {
		return fmt.Errorf("adding root %q: namespace and key are required", id)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, r := range h.roots {
		if r == id {
			return nil
		}
	}
	h.roots = append(h.roots, id)
	return nil
}

// AddProvider registers p as the object provider of namespace.
func (h *Host) AddProvider(namespace string, p ObjectProvider) error {
	if namespace == "" {
		return errors.New("adding object provider: namespace is required")
	}
	if p == nil {
		return fmt.Errorf("adding object provider for %s: provider is nil", namespace)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.objects[namespace]; ok {
		return fmt.Errorf("%w: %s", ErrProviderExists, namespace)
	}
	h.objects[namespace] = p
	return nil
}

// AddCompositionProvider appends p to the providers consulted by Composition.
func (h *Host) AddCompositionProvider(p CompositionProvider) error {
	if p == nil {
		return errors.New("adding composition provider: provider is nil")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.compositions = append(h.compositions, p)
	return nil
}

// AddType registers the descriptor of a type name, replacing any previous one.
func (h *Host) AddType(name string, t models.TypeDescriptor) error {
	if name == "" {
		return errors.New("adding type: name is required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.types[name] = t
	return nil
}

// Roots returns the registered roots in registration order.
func (h *Host) Roots() []models.Identifier {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]models.Identifier, len(h.roots))
	copy(out, h.roots)
	return out
}

// Get resolves id through the provider owning its namespace.
func (h *Host) Get(ctx context.Context, id models.Identifier) (*models.ObjectDescriptor, error) {
	h.mu.RLock()
	p, ok := h.objects[id.Namespace]
	h.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoProvider, id.Namespace)
	}
	return p.Get(ctx, id)
}

// Composition returns the children of obj from the first registered
// composition provider that applies to it.
func (h *Host) Composition(ctx context.Context, obj *models.ObjectDescriptor) ([]models.Identifier, error) {
	h.mu.RLock()
	providers := make([]CompositionProvider, len(h.compositions))
	copy(providers, h.compositions)
	h.mu.RUnlock()

	for _, p := range providers {
		if p.AppliesTo(obj) {
			return p.Load(ctx, obj)
		}
	}
	return nil, models.ErrNotComposable
}

// Type returns the descriptor registered for name.
func (h *Host) Type(name string) (models.TypeDescriptor, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	t, ok := h.types[name]
	return t, ok
}

// Types returns all registered types keyed by name.
func (h *Host) Types() map[string]models.TypeDescriptor {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make(map[string]models.TypeDescriptor, len(h.types))
	for k, v := range h.types {
		out[k] = v
	}
	return out
}

// TypeNames returns the registered type names, sorted.
func (h *Host) TypeNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.types))
	for name := range h.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
