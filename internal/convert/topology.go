package convert

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Type names used by topology dictionaries for built-in types.
const (
	xmlEnumType   = "ENUM"
	xmlStringType = "string"
)

// topologyDictionary mirrors the parts of a *TopologyAppDictionary.xml file
// needed to describe telemetry channels. Commands, events and parameters are
// ignored.
type topologyDictionary struct {
	XMLName       xml.Name          `xml:"dictionary"`
	Topology      string            `xml:"topology,attr"`
	Enums         []xmlEnum         `xml:"enums>enum"`
	Serializables []xmlSerializable `xml:"serializables>serializable"`
	Arrays        []xmlArray        `xml:"arrays>array"`
	Channels      []xmlChannel      `xml:"channels>channel"`
}

type xmlEnum struct {
	Type  string        `xml:"type,attr"`
	Name  string        `xml:"name,attr"`
	Items []xmlEnumItem `xml:"item"`
}

type xmlEnumItem struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type xmlSerializable struct {
	Type    string      `xml:"type,attr"`
	Members []xmlMember `xml:"members>member"`
}

type xmlMember struct {
	Name string   `xml:"name,attr"`
	Type string   `xml:"type,attr"`
	Size string   `xml:"size,attr"`
	Enum *xmlEnum `xml:"enum"`
}

type xmlArray struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type"`
	Size string `xml:"size"`
}

type xmlChannel struct {
	Component string   `xml:"component,attr"`
	Name      string   `xml:"name,attr"`
	Type      string   `xml:"type,attr"`
	Enum      *xmlEnum `xml:"enum"`
}

// LoadTopologyDictionary reads an F´ topology dictionary XML file. The
// catalog is named after the file with its .xml extension removed.
func LoadTopologyDictionary(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology dictionary: %w", err)
	}
	defer f.Close()

	base := filepath.Base(path)
	return ParseTopologyDictionary(f, strings.TrimSuffix(base, filepath.Ext(base)))
}

// ParseTopologyDictionary decodes a topology dictionary and resolves every
// channel's type through the dictionary's enum, array and serializable
// definitions. Channels keep their document order.
func ParseTopologyDictionary(r io.Reader, name string) (*Catalog, error) {
	var doc topologyDictionary
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing topology dictionary: %w", err)
	}

	res := newTypeResolver(&doc)
	c := &Catalog{Name: name, Channels: make([]Channel, 0, len(doc.Channels))}
	for _, ch := range doc.Channels {
		full := ch.Name
		if ch.Component != "" {
			full = ch.Component + "." + ch.Name
		}

		t, err := res.resolve(ch.Type, ch.Enum)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", full, err)
		}
		c.Channels = append(c.Channels, Channel{Name: full, Type: t})
	}
	return c, nil
}

// typeResolver turns type names into Type trees.
type typeResolver struct {
	enums         map[string]xmlEnum
	arrays        map[string]xmlArray
	serializables map[string]xmlSerializable

	// resolving holds the named types on the current path, to reject cycles
	resolving map[string]bool
}

func newTypeResolver(doc *topologyDictionary) *typeResolver {
	r := &typeResolver{
		enums:         make(map[string]xmlEnum, len(doc.Enums)),
		arrays:        make(map[string]xmlArray, len(doc.Arrays)),
		serializables: make(map[string]xmlSerializable, len(doc.Serializables)),
		resolving:     make(map[string]bool),
	}
	for _, e := range doc.Enums {
		r.enums[e.Type] = e
	}
	for _, a := range doc.Arrays {
		r.arrays[a.Name] = a
	}
	for _, s := range doc.Serializables {
		r.serializables[s.Type] = s
	}
	return r
}

// resolve looks name up as a primitive, then as a named enum, array or
// serializable. inline is the enum nested in the element for type ENUM.
func (r *typeResolver) resolve(name string, inline *xmlEnum) (Type, error) {
	name = strings.TrimSpace(name)

	switch {
	case name == "":
		return Type{}, errors.New("missing type")
	case name == xmlEnumType:
		if inline == nil {
			return Type{}, errors.New("ENUM type without enum definition")
		}
		return enumType(*inline)
	case strings.EqualFold(name, xmlStringType):
		return Type{Kind: "string"}, nil
	}
	if _, ok := primitiveFormats[strings.ToLower(name)]; ok {
		return Type{Kind: name}, nil
	}

	if r.resolving[name] {
		return Type{}, fmt.Errorf("type %s refers to itself", name)
	}
	r.resolving[name] = true
	defer delete(r.resolving, name)

	if e, ok := r.enums[name]; ok {
		return enumType(e)
	}
	if a, ok := r.arrays[name]; ok {
		return r.arrayType(a)
	}
	if s, ok := r.serializables[name]; ok {
		return r.serializableType(s)
	}
	return Type{}, fmt.Errorf("unknown type %q", name)
}

func (r *typeResolver) arrayType(a xmlArray) (Type, error) {
	size, err := strconv.Atoi(strings.TrimSpace(a.Size))
	if err != nil || size <= 0 {
		return Type{}, fmt.Errorf("array %s: invalid size %q", a.Name, a.Size)
	}
	member, err := r.resolve(a.Type, nil)
	if err != nil {
		return Type{}, fmt.Errorf("array %s: %w", a.Name, err)
	}
	return Type{Kind: "array", Length: size, Member: &member}, nil
}

func (r *typeResolver) serializableType(s xmlSerializable) (Type, error) {
	t := Type{Kind: "serializable", Members: make([]Member, 0, len(s.Members))}
	for _, m := range s.Members {
		mt, err := r.resolve(m.Type, m.Enum)
		if err != nil {
			return Type{}, fmt.Errorf("serializable %s member %s: %w", s.Type, m.Name, err)
		}

		// On a string member size is the string length, otherwise it makes
		// the member an array.
		if m.Size != "" && mt.Kind != "string" {
			size, err := strconv.Atoi(strings.TrimSpace(m.Size))
			if err != nil || size <= 0 {
				return Type{}, fmt.Errorf("serializable %s member %s: invalid size %q", s.Type, m.Name, m.Size)
			}
			elem := mt
			mt = Type{Kind: "array", Length: size, Member: &elem}
		}
		t.Members = append(t.Members, Member{Name: m.Name, Type: mt})
	}
	return t, nil
}

// enumType keeps declaration order. Items without a value continue from the
// previous one.
func enumType(e xmlEnum) (Type, error) {
	t := Type{Kind: "enum", Enum: make([]Enumerator, 0, len(e.Items))}
	next := int64(0)
	for _, item := range e.Items {
		v := next
		if item.Value != "" {
			parsed, err := strconv.ParseInt(strings.TrimSpace(item.Value), 0, 64)
			if err != nil {
				return Type{}, fmt.Errorf("enum item %s: invalid value %q", item.Name, item.Value)
			}
			v = parsed
		}
		t.Enum = append(t.Enum, Enumerator{Name: item.Name, Value: v})
		next = v + 1
	}
	return t, nil
}
