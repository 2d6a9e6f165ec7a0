package convert

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fidde/fprime_openmct/pkg/models"
)

// Output file names.
const (
	DictionaryFile    = "FPrimeDeploymentTopologyAppDictionary.json"
	InitialStatesFile = "initial_states.json"
)

// Value formats.
const (
	FormatFloat   = "float"
	FormatInteger = "integer"
	FormatEnum    = "enum"
	FormatText    = "text"
)

// floatZero keeps the decimal point so float channels are distinguishable
// from integer ones in initial_states.json.
const floatZero = json.Number("0.0")

var primitiveFormats = map[string]string{
	"f32":  FormatFloat,
	"f64":  FormatFloat,
	"i8":   FormatInteger,
	"i16":  FormatInteger,
	"i32":  FormatInteger,
	"i64":  FormatInteger,
	"u8":   FormatInteger,
	"u16":  FormatInteger,
	"u32":  FormatInteger,
	"u64":  FormatInteger,
	"bool": FormatInteger,
}

// leaf is one primitive reachable inside a channel's type.
type leaf struct {
	path   []string
	format string
	enum   []Enumerator
}

// Result is the output of Convert.
type Result struct {
	Dictionary *models.Dictionary

	// InitialStates maps measurement keys to their starting value. Text
	// measurements have no entry.
	InitialStates map[string]any
}

// Convert flattens every channel into one measurement per primitive leaf.
// Arrays contribute their index and serializables their member name to the
// measurement key.
func Convert(c *Catalog) (*Result, error) {
	res := &Result{
		Dictionary: &models.Dictionary{
			Name:         c.Name,
			Key:          c.Name,
			Measurements: []models.Measurement{},
		},
		InitialStates: make(map[string]any),
	}

	for _, ch := range c.Channels {
		if ch.Name == "" {
			return nil, errors.New("channel without name")
		}

		var leaves []leaf
		if err := flatten(ch.Type, nil, &leaves); err != nil {
			return nil, fmt.Errorf("channel %s: %w", ch.Name, err)
		}

		base := strings.ReplaceAll(ch.Name, ".", "_")
		for _, l := range leaves {
			key := base
			if len(l.path) > 0 {
				key += "_" + strings.Join(l.path, "_")
			}

			res.Dictionary.Measurements = append(res.Dictionary.Measurements, models.Measurement{
				Key:    key,
				Name:   key,
				Values: []models.ValueDescriptor{valueDescriptor(l), timestampDescriptor()},
			})

			switch l.format {
			case FormatFloat:
				res.InitialStates[key] = floatZero
			case FormatInteger:
				res.InitialStates[key] = 0
			case FormatEnum:
				if len(l.enum) > 0 {
					res.InitialStates[key] = l.enum[0].Name
				}
			}
		}
	}

	if err := res.Dictionary.Validate(); err != nil {
		return nil, fmt.Errorf("converted dictionary: %w", err)
	}
	return res, nil
}

func flatten(t Type, path []string, out *[]leaf) error {
	kind := strings.ToLower(t.Kind)

	if format, ok := primitiveFormats[kind]; ok {
		*out = append(*out, leaf{path: path, format: format})
		return nil
	}

	switch kind {
	case "enum":
		if len(t.Enum) == 0 {
			return errors.New("enum without enumerators")
		}
		*out = append(*out, leaf{path: path, format: FormatEnum, enum: t.Enum})
	case "string":
		*out = append(*out, leaf{path: path, format: FormatText})
	case "array":
		if t.Member == nil || t.Length <= 0 {
			return errors.New("array needs a member type and a positive length")
		}
		for i := 0; i < t.Length; i++ {
			if err := flatten(*t.Member, appendPath(path, strconv.Itoa(i)), out); err != nil {
				return err
			}
		}
	case "serializable":
		for _, m := range t.Members {
			if err := flatten(m.Type, appendPath(path, m.Name), out); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unsupported type %q", t.Kind)
	}
	return nil
}

// appendPath copies so sibling leaves never share a backing array.
func appendPath(path []string, elem string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, elem)
}

func valueDescriptor(l leaf) models.ValueDescriptor {
	v := models.ValueDescriptor{
		"key":    "value",
		"name":   "Value",
		"hints":  map[string]any{"range": 1},
		"format": l.format,
	}
	if l.format == FormatEnum {
		enums := make([]any, len(l.enum))
		for i, e := range l.enum {
			enums[i] = map[string]any{"string": e.Name, "value": e.Value}
		}
		v["enumerations"] = enums
	}
	return v
}

func timestampDescriptor() models.ValueDescriptor {
	return models.ValueDescriptor{
		"key":    "utc",
		"source": "timestamp",
		"name":   "Timestamp",
		"format": "utc",
		"hints":  map[string]any{"domain": 1},
	}
}

// WriteFiles writes the dictionary and initial states into dir.
func (r *Result) WriteFiles(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	if err := writeJSON(filepath.Join(dir, DictionaryFile), r.Dictionary); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, InitialStatesFile), r.InitialStates)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
