// Package validate checks a generic model.Message against a proto3 schema:
// every field must resolve to a declared FieldDef and satisfy its declared
// type. Issues are collected rather than short-circuited, matching the
// leniency of the binary codec's unknown-field tolerance.
package validate

import (
	"fmt"

	"github.com/lutaml/unibuf/internal/model"
	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

// Validate checks msg against the message named messageType in schema,
// returning every TypeValidationError found. Proto3 treats all fields as
// optional, so a field's absence is never itself an issue.
func Validate(msg *model.Message, schema *protoschema.Schema, messageType string) ([]*model.TypeValidationError, error) {
	def, ok := schema.MessageByName(messageType)
	if !ok {
		return nil, &model.SchemaValidationError{Message: "unknown message type " + messageType}
	}
	return validateMessage(msg, schema, def), nil
}

func validateMessage(msg *model.Message, schema *protoschema.Schema, def *protoschema.MessageDef) []*model.TypeValidationError {
	var issues []*model.TypeValidationError
	for _, f := range msg.Fields {
		fd, ok := fieldByName(def, f.Name)
		if !ok {
			issues = append(issues, &model.TypeValidationError{Field: f.Name, Message: "unknown field"})
			continue
		}
		issues = append(issues, validateField(f, fd, schema)...)
	}
	return issues
}

func fieldByName(def *protoschema.MessageDef, name string) (*protoschema.FieldDef, bool) {
	for _, f := range def.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func validateField(f model.Field, fd *protoschema.FieldDef, schema *protoschema.Schema) []*model.TypeValidationError {
	if fd.IsMap() {
		return validateMap(f, fd, schema)
	}
	if fd.IsRepeated() {
		if f.Value.Kind != model.KindList {
			// One element of a repeated field stored as its own Field entry.
			return validateScalarOrMessage(f.Name, f.Value, fd.Type, schema)
		}
		var issues []*model.TypeValidationError
		for _, item := range f.Value.List {
			issues = append(issues, validateScalarOrMessage(f.Name, item, fd.Type, schema)...)
		}
		return issues
	}
	return validateScalarOrMessage(f.Name, f.Value, fd.Type, schema)
}

func validateMap(f model.Field, fd *protoschema.FieldDef, schema *protoschema.Schema) []*model.TypeValidationError {
	if f.Value.Kind != model.KindMap {
		return []*model.TypeValidationError{{Field: f.Name, Message: "map field requires a map value"}}
	}
	var issues []*model.TypeValidationError
	for _, v := range f.Value.MapValues {
		issues = append(issues, validateScalarOrMessage(f.Name, v, fd.ValueType, schema)...)
	}
	return issues
}

func validateScalarOrMessage(fieldName string, v model.Value, declared string, schema *protoschema.Schema) []*model.TypeValidationError {
	if protoschema.ScalarTypes[declared] {
		if err := validateScalar(fieldName, v, declared); err != nil {
			return []*model.TypeValidationError{err}
		}
		return nil
	}
	if e, ok := schema.EnumByName(declared); ok {
		return validateEnumValue(fieldName, v, e)
	}
	if nested, ok := schema.MessageByName(declared); ok {
		if v.Kind != model.KindMessage || v.Message == nil {
			return []*model.TypeValidationError{{Field: fieldName, Message: fmt.Sprintf("expected message %s, got %s", declared, v.Kind)}}
		}
		return validateMessage(v.Message, schema, nested)
	}
	return []*model.TypeValidationError{{Field: fieldName, Message: "declared type " + declared + " does not resolve to any known scalar, enum, or message"}}
}

func validateEnumValue(fieldName string, v model.Value, e *protoschema.EnumDef) []*model.TypeValidationError {
	switch v.Kind {
	case model.KindScalar:
		switch v.ScalarKind {
		case model.ScalarString:
			if _, ok := e.Values[v.Str]; !ok {
				return []*model.TypeValidationError{{Field: fieldName, Message: "unknown enum value " + v.Str + " for " + e.Name}}
			}
			return nil
		case model.ScalarInt:
			for _, n := range e.Values {
				if int64(n) == v.Int {
					return nil
				}
			}
			return []*model.TypeValidationError{{Field: fieldName, Message: fmt.Sprintf("unknown enum number %d for %s", v.Int, e.Name)}}
		}
	}
	return []*model.TypeValidationError{{Field: fieldName, Message: "enum field requires a string or integer value"}}
}

const (
	minInt32 = -(1 << 31)
	maxInt32 = (1 << 31) - 1
	maxUint32 = (1 << 32) - 1
)

func validateScalar(fieldName string, v model.Value, declared string) *model.TypeValidationError {
	switch declared {
	case "bool":
		if v.Kind != model.KindScalar || v.ScalarKind != model.ScalarBool {
			return &model.TypeValidationError{Field: fieldName, Message: "expected a bool value"}
		}
	case "string", "bytes":
		if v.Kind != model.KindScalar || v.ScalarKind != model.ScalarString {
			return &model.TypeValidationError{Field: fieldName, Message: "expected a string value"}
		}
	case "double", "float":
		if v.Kind != model.KindScalar || (v.ScalarKind != model.ScalarFloat && v.ScalarKind != model.ScalarInt) {
			return &model.TypeValidationError{Field: fieldName, Message: "expected a numeric value"}
		}
	case "int32", "sint32", "sfixed32":
		if v.Kind != model.KindScalar || v.ScalarKind != model.ScalarInt {
			return &model.TypeValidationError{Field: fieldName, Message: "expected an integer value"}
		}
		if v.Int < minInt32 || v.Int > maxInt32 {
			return &model.TypeValidationError{Field: fieldName, Message: fmt.Sprintf("%d out of range for %s", v.Int, declared)}
		}
	case "uint32", "fixed32":
		if v.Kind != model.KindScalar || v.ScalarKind != model.ScalarInt {
			return &model.TypeValidationError{Field: fieldName, Message: "expected an integer value"}
		}
		if v.Int < 0 || v.Int > maxUint32 {
			return &model.TypeValidationError{Field: fieldName, Message: fmt.Sprintf("%d out of range for %s", v.Int, declared)}
		}
	case "int64", "sint64", "sfixed64":
		if v.Kind != model.KindScalar || v.ScalarKind != model.ScalarInt {
			return &model.TypeValidationError{Field: fieldName, Message: "expected an integer value"}
		}
	case "uint64", "fixed64":
		if v.Kind != model.KindScalar || v.ScalarKind != model.ScalarInt {
			return &model.TypeValidationError{Field: fieldName, Message: "expected an integer value"}
		}
		if v.Int < 0 {
			return &model.TypeValidationError{Field: fieldName, Message: fmt.Sprintf("%d out of range for %s", v.Int, declared)}
		}
	}
	return nil
}
