// Package models defines the core data structures of the dictionary adapter.
//
// This package contains the telemetry dictionary document read from an F´
// deployment and the domain objects (folders and telemetry points) handed to
// the visualization host.
package models

import (
	"fmt"
	"maps"
)

// Dictionary is the static document describing a deployment's telemetry.
// It mirrors the JSON written by the dictionary converter.
type Dictionary struct {
	// Name is the human-readable label for the whole deployment
	Name string `json:"name"`

	// Key is an optional stable key for the deployment (usually equal to Name)
	Key string `json:"key,omitempty"`

	// Measurements are the telemetry points in document order
	Measurements []Measurement `json:"measurements"`
}

// Measurement is one telemetry point definition.
type Measurement struct {
	// Key is unique within the dictionary and forms the object identifier key
	Key string `json:"key"`

	// Name is the human-readable label
	Name string `json:"name"`

	// Values describe the sample fields (value, timestamp, ...). Their shape is
	// owned by the host's telemetry-value contract and passed through as-is.
	Values []ValueDescriptor `json:"values"`
}

// ValueDescriptor is the metadata of one telemetry sample field, for example
// {"key": "value", "name": "Value", "format": "float", "hints": {"range": 1}}.
type ValueDescriptor map[string]any

// Validate checks the invariants the resolvers rely on: every measurement key
// is non-empty, unique, and distinct from the root folder key.
func (d *Dictionary) Validate() error {
	seen := make(map[string]int, len(d.Measurements))
	for i, m := range d.Measurements {
		if m.Key == "" {
			return fmt.Errorf("measurement %d: %w", i, ErrEmptyKey)
		}
		if m.Key == RootKey {
			return fmt.Errorf("measurement %d (%q): %w", i, m.Key, ErrReservedKey)
		}
		if first, ok := seen[m.Key]; ok {
			return fmt.Errorf("measurement %d (%q) repeats measurement %d: %w", i, m.Key, first, ErrDuplicateKey)
		}
		seen[m.Key] = i
	}
	return nil
}

// Find returns the measurement with the given key.
func (d *Dictionary) Find(key string) (Measurement, bool) {
	for _, m := range d.Measurements {
		if m.Key == key {
			return m, true
		}
	}
	return Measurement{}, false
}

// Clone returns a deep copy of the dictionary, including the nested value
// descriptor maps and slices.
func (d *Dictionary) Clone() *Dictionary {
	if d == nil {
		return nil
	}
	out := &Dictionary{
		Name: d.Name,
		Key:  d.Key,
	}
	if d.Measurements != nil {
		out.Measurements = make([]Measurement, len(d.Measurements))
		for i, m := range d.Measurements {
			out.Measurements[i] = m.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the measurement.
func (m Measurement) Clone() Measurement {
	out := Measurement{Key: m.Key, Name: m.Name}
	if m.Values != nil {
		out.Values = make([]ValueDescriptor, len(m.Values))
		for i, v := range m.Values {
			out.Values[i] = v.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the descriptor.
func (v ValueDescriptor) Clone() ValueDescriptor {
	if v == nil {
		return nil
	}
	out := make(ValueDescriptor, len(v))
	for k, val := range v {
		out[k] = cloneValue(val)
	}
	return out
}

// cloneValue copies the container types produced by encoding/json.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := maps.Clone(t)
		for k, val := range out {
			out[k] = cloneValue(val)
		}
		return out
	case ValueDescriptor:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}
