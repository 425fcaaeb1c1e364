// Package capnp implements the Cap'n Proto IDL schema model.
package capnp

import "fmt"

// TypeKind tags the variant of a field's type.
type TypeKind int

const (
	TypePrimitive TypeKind = iota
	TypeUser               // resolved by name at use
	TypeList               // Generic{kind: "List", element_type: ...}
)

// FieldType describes a Cap'n Proto field's declared type.
type FieldType struct {
	Kind    TypeKind
	Name    string     // primitive name, or user type name
	Element *FieldType // set when Kind == TypeList
}

// Primitive type name constants.
const (
	Void    = "Void"
	Bool    = "Bool"
	Int8    = "Int8"
	Int16   = "Int16"
	Int32   = "Int32"
	Int64   = "Int64"
	UInt8   = "UInt8"
	UInt16  = "UInt16"
	UInt32  = "UInt32"
	UInt64  = "UInt64"
	Float32 = "Float32"
	Float64 = "Float64"
	Text    = "Text"
	Data    = "Data"
	AnyPtr  = "AnyPointer"
)

var primitiveNames = map[string]bool{
	Void: true, Bool: true, Int8: true, Int16: true, Int32: true, Int64: true,
	UInt8: true, UInt16: true, UInt32: true, UInt64: true,
	Float32: true, Float64: true, Text: true, Data: true, AnyPtr: true,
}

// IsPrimitiveName reports whether name is a built-in Cap'n Proto primitive.
func IsPrimitiveName(name string) bool { return primitiveNames[name] }

// IsPointerType reports whether the field type occupies a pointer slot
// rather than the data section.
func (t *FieldType) IsPointerType() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case TypeList:
		return true
	case TypePrimitive:
		return t.Name == Text || t.Name == Data || t.Name == AnyPtr
	case TypeUser:
		return true // struct or interface; also true for an enum name, so callers check FieldDef.IsEnum first (enums are data-section UInt16)
	}
	return false
}

// FieldDef is a single struct field.
type FieldDef struct {
	Name         string
	Ordinal      uint16
	Type         FieldType
	DefaultValue string // literal text as written in the schema; typed interpretation is deferred to the codec
	IsEnum       bool   // true when Type.Kind == TypeUser resolves to an EnumDef (data-section UInt16, not a pointer)
}

// Union is an anonymous or named union of ≥2 fields sharing a discriminant.
type Union struct {
	Name   string // "" for an anonymous union
	Fields []*FieldDef
}

// Group is a named inline grouping of fields under one ordinal.
type Group struct {
	Name    string
	Ordinal uint16
	Fields  []*FieldDef
}

// Annotation is a `$name(value)` schema annotation.
type Annotation struct {
	Name  string
	Value string
}

// StructDef is a Cap'n Proto struct definition.
type StructDef struct {
	Name            string
	Fields          []*FieldDef
	Unions          []*Union
	Groups          []*Group
	NestedStructs   []*StructDef
	NestedEnums     []*EnumDef
	NestedInterfaces []*InterfaceDef
	Annotations     []Annotation
}

// EnumDef is a Cap'n Proto enum: ordered, unique uint16 values.
type EnumDef struct {
	Name       string
	ValueNames []string
	Values     map[string]uint16
}

// NewEnumDef creates an empty EnumDef.
func NewEnumDef(name string) *EnumDef {
	return &EnumDef{Name: name, Values: make(map[string]uint16)}
}

// AddValue appends an enum value, preserving declaration order.
func (e *EnumDef) AddValue(name string, ordinal uint16) {
	e.ValueNames = append(e.ValueNames, name)
	e.Values[name] = ordinal
}

// MethodDef is one RPC method on an interface.
type MethodDef struct {
	Name       string
	ParamType  string
	ResultType string
}

// InterfaceDef is a Cap'n Proto interface: a bag of methods.
type InterfaceDef struct {
	Name    string
	Methods []*MethodDef
}

// Using aliases an imported file to a local identifier.
type Using struct {
	Alias      string
	ImportPath string
}

// ConstDef is a top-level `const name :Type = value;` declaration.
type ConstDef struct {
	Name  string
	Type  FieldType
	Value string
}

// Schema is a fully parsed Cap'n Proto schema file.
type Schema struct {
	FileID     string // required; hex string from @0xHEX;
	Usings     []Using
	Structs    []*StructDef
	Enums      []*EnumDef
	Interfaces []*InterfaceDef
	Constants  []*ConstDef

	structsByName map[string]*StructDef
	enumsByName   map[string]*EnumDef
}

// Build indexes structs/enums by name, resolving cyclic references by name
// at use instead of storing back-pointers, and enforces schema invariants.
func (s *Schema) Build() error {
	if s.FileID == "" {
		return fmt.Errorf("schema missing required @0x file id")
	}
	s.structsByName = make(map[string]*StructDef)
	s.enumsByName = make(map[string]*EnumDef)
	for _, st := range s.Structs {
		if err := s.indexStruct(st); err != nil {
			return err
		}
	}
	for _, e := range s.Enums {
		if err := indexEnum(s.enumsByName, e); err != nil {
			return err
		}
	}
	return s.validate()
}

func (s *Schema) indexStruct(st *StructDef) error {
	if _, exists := s.structsByName[st.Name]; exists {
		return fmt.Errorf("duplicate struct name %q", st.Name)
	}
	s.structsByName[st.Name] = st
	for _, nested := range st.NestedStructs {
		if err := s.indexStruct(nested); err != nil {
			return err
		}
	}
	for _, e := range st.NestedEnums {
		if err := indexEnum(s.enumsByName, e); err != nil {
			return err
		}
	}
	return nil
}

func indexEnum(by map[string]*EnumDef, e *EnumDef) error {
	if _, exists := by[e.Name]; exists {
		return fmt.Errorf("duplicate enum name %q", e.Name)
	}
	by[e.Name] = e
	return nil
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

func (s *Schema) validate() error {
	for _, st := range allStructs(s.Structs) {
		if err := validateOrdinals(st.Name, fieldOrdinals(st.Fields)); err != nil {
			return err
		}
		for _, u := range st.Unions {
			if len(u.Fields) < 2 {
				return fmt.Errorf("struct %s: union %q must have at least 2 fields", st.Name, u.Name)
			}
		}
	}
	for _, e := range s.enumsByName {
		seen := make(map[uint16]bool, len(e.Values))
		for _, name := range e.ValueNames {
			v := e.Values[name]
			if seen[v] {
				return fmt.Errorf("enum %s: duplicate ordinal %d", e.Name, v)
			}
			seen[v] = true
		}
	}
	return nil
}

func fieldOrdinals(fields []*FieldDef) []uint16 {
	out := make([]uint16, len(fields))
	for i, f := range fields {
		out[i] = f.Ordinal
	}
	return out
}

func validateOrdinals(structName string, ordinals []uint16) error {
	seen := make(map[uint16]bool, len(ordinals))
	for _, o := range ordinals {
		if seen[o] {
			return fmt.Errorf("struct %s: duplicate ordinal %d", structName, o)
		}
		seen[o] = true
	}
	return nil
}

func allStructs(top []*StructDef) []*StructDef {
	var out []*StructDef
	var walk func([]*StructDef)
	walk = func(ss []*StructDef) {
		for _, s := range ss {
			out = append(out, s)
			walk(s.NestedStructs)
		}
	}
	walk(top)
	return out
}
