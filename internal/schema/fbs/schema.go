// Package fbs implements the FlatBuffers IDL schema model.
package fbs

import "fmt"

// ScalarNames is the set of FlatBuffers scalar type names.
var ScalarNames = map[string]bool{
	"bool": true, "byte": true, "ubyte": true, "short": true, "ushort": true,
	"int": true, "uint": true, "long": true, "ulong": true,
	"float": true, "double": true, "string": true,
}

// FieldTypeKind tags the variant of a field's declared type.
type FieldTypeKind int

const (
	TypeScalar FieldTypeKind = iota
	TypeUser                 // table, struct, enum, or union name resolved by use
	TypeVector
)

// FieldType describes a field's declared type.
type FieldType struct {
	Kind    FieldTypeKind
	Name    string // scalar name or user-type name
	Element *FieldType // set when Kind == TypeVector
}

// FieldDef is a single table or struct field.
type FieldDef struct {
	Name         string
	Type         FieldType
	DefaultValue string // literal text, "" when absent
	Metadata     map[string]string
	Deprecated   bool
}

// TableDef is a FlatBuffers table: sparse, vtable-addressed fields.
type TableDef struct {
	Name     string
	Fields   []*FieldDef
	Metadata map[string]string
}

// StructDef is a FlatBuffers struct: fixed-size, inline fields only — no
// vectors or tables.
type StructDef struct {
	Name     string
	Fields   []*FieldDef
	Metadata map[string]string
}

// EnumDef is a FlatBuffers enum with an explicit underlying scalar type.
type EnumDef struct {
	Underlying string // the scalar T in "enum Color:T"
	Name       string
	ValueNames []string
	Values     map[string]int64
}

// NewEnumDef creates an empty EnumDef.
func NewEnumDef(name, underlying string) *EnumDef {
	return &EnumDef{Name: name, Underlying: underlying, Values: make(map[string]int64)}
}

// AddValue appends an enum value. A value lacking an explicit
// number receives previous+1 starting at 0 — callers compute that before
// calling AddValue.
func (e *EnumDef) AddValue(name string, number int64) {
	e.ValueNames = append(e.ValueNames, name)
	e.Values[name] = number
}

// UnionDef is a FlatBuffers union: a named list of alternative table types.
type UnionDef struct {
	Name    string
	Members []string
}

// Schema is a fully parsed FlatBuffers schema file.
type Schema struct {
	Namespace      string
	Includes       []string
	Tables         []*TableDef
	Structs        []*StructDef
	Enums          []*EnumDef
	Unions         []*UnionDef
	RootType       string
	FileIdentifier string
	FileExtension  string
	Attributes     []string

	tablesByName map[string]*TableDef
	structsByName map[string]*StructDef
	enumsByName  map[string]*EnumDef
	unionsByName map[string]*UnionDef
}

// Build indexes every declared type by name and enforces schema invariants.
func (s *Schema) Build() error {
	s.tablesByName = make(map[string]*TableDef, len(s.Tables))
	s.structsByName = make(map[string]*StructDef, len(s.Structs))
	s.enumsByName = make(map[string]*EnumDef, len(s.Enums))
	s.unionsByName = make(map[string]*UnionDef, len(s.Unions))

	for _, t := range s.Tables {
		if _, exists := s.tablesByName[t.Name]; exists {
			return fmt.Errorf("duplicate table name %q", t.Name)
		}
		s.tablesByName[t.Name] = t
	}
	for _, st := range s.Structs {
		if _, exists := s.structsByName[st.Name]; exists {
			return fmt.Errorf("duplicate struct name %q", st.Name)
		}
		for _, f := range st.Fields {
			if f.Type.Kind == TypeVector {
				return fmt.Errorf("struct %s: field %s is a vector; struct fields must be fixed-size", st.Name, f.Name)
			}
			if f.Type.Kind == TypeUser {
				if _, isTable := s.tablesByName[f.Type.Name]; isTable {
					return fmt.Errorf("struct %s: field %s refers to table %q; struct fields must be scalar or nested struct", st.Name, f.Name, f.Type.Name)
				}
			}
		}
		s.structsByName[st.Name] = st
	}
	for _, e := range s.Enums {
		if _, exists := s.enumsByName[e.Name]; exists {
			return fmt.Errorf("duplicate enum name %q", e.Name)
		}
		s.enumsByName[e.Name] = e
	}
	for _, u := range s.Unions {
		if _, exists := s.unionsByName[u.Name]; exists {
			return fmt.Errorf("duplicate union name %q", u.Name)
		}
		s.unionsByName[u.Name] = u
	}

	if s.RootType != "" {
		if _, ok := s.tablesByName[s.RootType]; !ok {
			return fmt.Errorf("root_type %q does not name an existing table", s.RootType)
		}
	}
	return nil
}

// TableByName looks up a table by its simple name.
func (s *Schema) TableByName(name string) (*TableDef, bool) {
	t, ok := s.tablesByName[name]
	return t, ok
}

// StructByName looks up a struct by its simple name.
func (s *Schema) StructByName(name string) (*StructDef, bool) {
	st, ok := s.structsByName[name]
	return st, ok
}

// EnumByName looks up an enum by its simple name.
func (s *Schema) EnumByName(name string) (*EnumDef, bool) {
	e, ok := s.enumsByName[name]
	return e, ok
}

// UnionByName looks up a union by its simple name.
func (s *Schema) UnionByName(name string) (*UnionDef, bool) {
	u, ok := s.unionsByName[name]
	return u, ok
}

// RootTable returns the table named by root_type.
func (s *Schema) RootTable() (*TableDef, bool) {
	if s.RootType == "" {
		return nil, false
	}
	return s.TableByName(s.RootType)
}
