package models

import (
	"fmt"
	"strings"
)

const (
	// Namespace is the only namespace the adapter produces or consumes.
	Namespace = "fprime.taxonomy"

	// RootKey is the sentinel key of the root folder.
	RootKey = "full_topology"

	// FolderType is the host type of the root folder.
	FolderType = "folder"

	// TelemetryType is the host type of every measurement object.
	TelemetryType = "general.telemetry"

	// RootLocation marks an object placed at the root of the host tree.
	RootLocation = "ROOT"
)

// Identifier addresses a domain object in the host.
type Identifier struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
}

// RootIdentifier returns the identifier of the root folder.
func RootIdentifier() Identifier {
	return Identifier{Namespace: Namespace, Key: RootKey}
}

// String returns the "namespace:key" form used for locations and URLs.
func (id Identifier) String() string {
	return id.Namespace + ":" + id.Key
}

// IsRoot reports whether id addresses the root folder.
func (id Identifier) IsRoot() bool {
	return id.Namespace == Namespace && id.Key == RootKey
}

// ParseIdentifier parses the "namespace:key" form. The key may itself contain
// colons; only the first one separates the namespace.
func ParseIdentifier(s string) (Identifier, error) {
	ns, key, ok := strings.Cut(s, ":")
	if !ok || ns == "" || key == "" {
		return Identifier{}, fmt.Errorf("invalid identifier %q: want namespace:key", s)
	}
	return Identifier{Namespace: ns, Key: key}, nil
}

// ObjectDescriptor is the host's representation of an addressable entity.
type ObjectDescriptor struct {
	Identifier Identifier `json:"identifier"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`

	// Location is either RootLocation or the string form of the parent identifier
	Location string `json:"location"`

	// Telemetry is set for telemetry points only
	Telemetry *Telemetry `json:"telemetry,omitempty"`
}

// Telemetry carries the value metadata of a telemetry point.
type Telemetry struct {
	Values []ValueDescriptor `json:"values"`
}

// TypeDescriptor is what the host's rendering layer shows for a type.
type TypeDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	CSSClass    string `json:"cssClass" yaml:"css_class"`
}

// DefaultTelemetryType returns the descriptor registered for TelemetryType.
func DefaultTelemetryType() TypeDescriptor {
	return TypeDescriptor{
		Name:        "General Telemetry Point",
		Description: "General telemetry point.",
		CSSClass:    "icon-telemetry",
	}
}
