// Package proto implements the Protocol Buffers (proto3) schema model.
package proto

import "fmt"

// ScalarTypes is the fixed set of 15 proto3 scalar type names.
var ScalarTypes = map[string]bool{
	"double": true, "float": true, "int32": true, "int64": true,
	"uint32": true, "uint64": true, "sint32": true, "sint64": true,
	"fixed32": true, "fixed64": true, "sfixed32": true, "sfixed64": true,
	"bool": true, "string": true, "bytes": true,
}

// FieldDef is a single message field.
type FieldDef struct {
	Name     string
	Type     string // scalar name, message/enum name, or "map"
	Number   uint32 // > 0
	Label    string // "repeated", "optional", or ""
	KeyType  string // set when Type == "map"
	ValueType string // set when Type == "map"
}

// IsMap reports whether the field is a map field.
func (f *FieldDef) IsMap() bool { return f.Type == "map" && f.KeyType != "" }

// IsRepeated reports whether the field is repeated.
func (f *FieldDef) IsRepeated() bool { return f.Label == "repeated" }

// EnumDef is a proto3 enum definition with ordered, unique values.
type EnumDef struct {
	Name      string
	ValueNames []string // insertion order
	Values    map[string]int32
}

// NewEnumDef creates an empty EnumDef.
func NewEnumDef(name string) *EnumDef {
	return &EnumDef{Name: name, Values: make(map[string]int32)}
}

// AddValue appends an enum value, preserving declaration order.
func (e *EnumDef) AddValue(name string, number int32) {
	e.ValueNames = append(e.ValueNames, name)
	e.Values[name] = number
}

// MessageDef is a proto3 message, possibly containing nested messages/enums.
type MessageDef struct {
	Name           string
	Fields         []*FieldDef
	NestedMessages []*MessageDef
	NestedEnums    []*EnumDef
}

// Schema is a fully parsed, validated proto3 schema file.
type Schema struct {
	Syntax   string // always "proto3" for a valid schema
	Package  string
	Imports  []string
	Messages []*MessageDef
	Enums    []*EnumDef

	// byName indexes every message and enum (including nested ones) by its
	// simple name, resolving cyclic references by name at use instead of
	// storing back-pointers between sibling types.
	messagesByName map[string]*MessageDef
	enumsByName    map[string]*EnumDef
}

// Build indexes the schema's messages and enums for name resolution. Call
// after all top-level messages/enums have been appended.
func (s *Schema) Build() error {
	s.messagesByName = make(map[string]*MessageDef)
	s.enumsByName = make(map[string]*EnumDef)
	for _, m := range s.Messages {
		if err := s.indexMessage(m); err != nil {
			return err
		}
	}
	for _, e := range s.Enums {
		if _, exists := s.enumsByName[e.Name]; exists {
			return fmt.Errorf("duplicate enum name %q", e.Name)
		}
		s.enumsByName[e.Name] = e
	}
	return s.validate()
}

func (s *Schema) indexMessage(m *MessageDef) error {
	if _, exists := s.messagesByName[m.Name]; exists {
		return fmt.Errorf("duplicate message name %q", m.Name)
	}
	s.messagesByName[m.Name] = m
	for _, nested := range m.NestedMessages {
		if err := s.indexMessage(nested); err != nil {
			return err
		}
	}
	for _, e := range m.NestedEnums {
		if _, exists := s.enumsByName[e.Name]; exists {
			return fmt.Errorf("duplicate enum name %q", e.Name)
		}
		s.enumsByName[e.Name] = e
	}
	return nil
}

// MessageByName looks up a message by its simple name.
func (s *Schema) MessageByName(name string) (*MessageDef, bool) {
	m, ok := s.messagesByName[name]
	return m, ok
}

// EnumByName looks up an enum by its simple name.
func (s *Schema) EnumByName(name string) (*EnumDef, bool) {
	e, ok := s.enumsByName[name]
	return e, ok
}

// validate enforces schema invariants: unique positive field numbers per
// message, unique enum value numbers, and that every field type resolves to
// a scalar or a known message/enum.
func (s *Schema) validate() error {
	for _, m := range allMessages(s.Messages) {
		seen := make(map[uint32]bool, len(m.Fields))
		for _, f := range m.Fields {
			if f.Number == 0 {
				return fmt.Errorf("message %s: field %s has non-positive number", m.Name, f.Name)
			}
			if seen[f.Number] {
				return fmt.Errorf("message %s: duplicate field number %d", m.Name, f.Number)
			}
			seen[f.Number] = true
			if f.IsMap() {
				if !isResolvableType(s, f.ValueType) {
					return fmt.Errorf("message %s: field %s has unresolvable map value type %q", m.Name, f.Name, f.ValueType)
				}
				continue
			}
			if !isResolvableType(s, f.Type) {
				return fmt.Errorf("message %s: field %s has unresolvable type %q", m.Name, f.Name, f.Type)
			}
		}
	}
	for _, e := range allEnums(s) {
		seen := make(map[int32]bool, len(e.Values))
		for _, name := range e.ValueNames {
			n := e.Values[name]
			if seen[n] {
				return fmt.Errorf("enum %s: duplicate value number %d", e.Name, n)
			}
			seen[n] = true
		}
	}
	return nil
}

func isResolvableType(s *Schema, t string) bool {
	if ScalarTypes[t] {
		return true
	}
	if _, ok := s.messagesByName[t]; ok {
		return true
	}
	if _, ok := s.enumsByName[t]; ok {
		return true
	}
	return false
}

func allMessages(top []*MessageDef) []*MessageDef {
	var out []*MessageDef
	var walk func([]*MessageDef)
	walk = func(ms []*MessageDef) {
		for _, m := range ms {
			out = append(out, m)
			walk(m.NestedMessages)
		}
	}
	walk(top)
	return out
}

func allEnums(s *Schema) []*EnumDef {
	out := make([]*EnumDef, 0, len(s.enumsByName))
	for _, e := range s.enumsByName {
		out = append(out, e)
	}
	return out
}
