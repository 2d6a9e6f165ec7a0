// Package convert turns an F´ topology dictionary (or a channel catalog) into
// the telemetry dictionary document and the initial-states document.
package convert

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog lists the telemetry channels of a deployment.
type Catalog struct {
	// Name labels the deployment; defaults to the catalog file name
	Name     string    `yaml:"name"`
	Channels []Channel `yaml:"channels"`
}

// Channel is one F´ telemetry channel, e.g. "sendBuffComp.SendState".
type Channel struct {
	Name string `yaml:"name"`
	Type Type   `yaml:"type"`
}

// Type describes a channel's serializable type.
type Type struct {
	// Kind is a primitive (F32, U16, bool, ...), "enum", "string", "array"
	// or "serializable"
	Kind string `yaml:"kind"`

	// Length and Member describe arrays
	Length int   `yaml:"length,omitempty"`
	Member *Type `yaml:"member,omitempty"`

	// Members describe serializables, in declaration order
	Members []Member `yaml:"members,omitempty"`

	// Enum lists enumerators in declaration order
	Enum []Enumerator `yaml:"enum,omitempty"`
}

// Member is a named field of a serializable.
type Member struct {
	Name string `yaml:"name"`
	Type Type   `yaml:"type"`
}

// Enumerator is one enum constant.
type Enumerator struct {
	Name  string `yaml:"name"`
	Value int64  `yaml:"value"`
}

// LoadCatalog reads a topology dictionary XML file, or a YAML or JSON catalog
// file for any other extension.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.EqualFold(filepath.Ext(path), ".xml") {
		return LoadTopologyDictionary(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	if c.Name == "" {
		base := filepath.Base(path)
		c.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return &c, nil
}
