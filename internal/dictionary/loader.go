// Package dictionary loads the telemetry dictionary document.
//
// Every Load fetches and parses the document again; nothing is memoized
// across calls. Backends report retrieval failures as *models.FetchError and
// malformed or invalid documents as *models.ParseError.
package dictionary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/fidde/fprime_openmct/pkg/models"
)

// DefaultPath is where the host expects the dictionary document.
const DefaultPath = "/FPrimeDeploymentTopologyAppDictionary.json"

// Loader fetches and parses the dictionary document.
// Implementations must be safe for concurrent use.
type Loader interface {
	Load(ctx context.Context) (*models.Dictionary, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (*models.Dictionary, error)

// Load calls f(ctx).
func (f LoaderFunc) Load(ctx context.Context) (*models.Dictionary, error) {
	return f(ctx)
}

// Decode parses and validates a dictionary document read from r.
// source names the origin in returned errors.
func Decode(r io.Reader, source string) (*models.Dictionary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &models.FetchError{Source: source, Err: err}
	}
	return Parse(data, source)
}

// Parse decodes and validates a dictionary document.
func Parse(data []byte, source string) (*models.Dictionary, error) {
	// Decode into raw fields first so a missing "measurements" member is
	// distinguishable from an empty one.
	var raw struct {
		Name         string             `json:"name"`
		Key          string             `json:"key"`
		Measurements *[]json.RawMessage `json:"measurements"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &models.ParseError{Source: source, Err: err}
	}
	if raw.Measurements == nil {
		return nil, &models.ParseError{Source: source, Err: errors.New(`missing "measurements"`)}
	}

	dict := &models.Dictionary{
		Name:         raw.Name,
		Key:          raw.Key,
		Measurements: make([]models.Measurement, 0, len(*raw.Measurements)),
	}
	for i, msg := range *raw.Measurements {
		var m models.Measurement
		if err := json.Unmarshal(msg, &m); err != nil {
			return nil, &models.ParseError{Source: source, Err: fmt.Errorf("measurement %d: %w", i, err)}
		}
		dict.Measurements = append(dict.Measurements, m)
	}

	if err := dict.Validate(); err != nil {
		return nil, &models.ParseError{Source: source, Err: err}
	}
	return dict, nil
}
