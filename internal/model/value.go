// Package model implements the generic value tree shared by
// the textproto and Protocol Buffers binary codecs, and adaptable as the
// output shape for Cap'n Proto and FlatBuffers decoding.
package model

import "fmt"

// Kind tags the variant held by a Value.
type Kind int

const (
	KindScalar Kind = iota
	KindMessage
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMessage:
		return "message"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ScalarKind tags the variant held by a scalar Value.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarInt
	ScalarFloat
	ScalarBool
	ScalarNull
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarString:
		return "string"
	case ScalarInt:
		return "int"
	case ScalarFloat:
		return "float"
	case ScalarBool:
		return "bool"
	case ScalarNull:
		return "null"
	default:
		return "unknown"
	}
}

// Value is a tagged variant: Scalar(String|Int|Float|Bool|Null) | Message |
// List | Map. Only the fields relevant to Kind are meaningful at a time.
type Value struct {
	Kind Kind

	// KindScalar
	ScalarKind ScalarKind
	Str        string
	Int        int64
	Float      float64
	Bool       bool

	// KindMessage
	Message *Message

	// KindList
	List []Value

	// KindMap — proto3 maps have scalar keys; stored as parallel slices to
	// preserve insertion order (map[Value]Value would erase it).
	MapKeys   []Value
	MapValues []Value
}

// NewString builds a string scalar Value.
func NewString(s string) Value { return Value{Kind: KindScalar, ScalarKind: ScalarString, Str: s} }

// NewInt builds an integer scalar Value.
func NewInt(n int64) Value { return Value{Kind: KindScalar, ScalarKind: ScalarInt, Int: n} }

// NewFloat builds a float scalar Value.
func NewFloat(f float64) Value { return Value{Kind: KindScalar, ScalarKind: ScalarFloat, Float: f} }

// NewBool builds a boolean scalar Value.
func NewBool(b bool) Value { return Value{Kind: KindScalar, ScalarKind: ScalarBool, Bool: b} }

// NewNull builds a null scalar Value.
func NewNull() Value { return Value{Kind: KindScalar, ScalarKind: ScalarNull} }

// NewMessage wraps a Message as a Value.
func NewMessage(m *Message) Value { return Value{Kind: KindMessage, Message: m} }

// NewList builds a list Value.
func NewList(items []Value) Value { return Value{Kind: KindList, List: items} }

// NewMap builds a map Value from parallel key/value slices. Returns an
// InvalidValueError if the slices are not the same length, matching the
// "a Map without both key and value" boundary case.
func NewMap(keys, values []Value) (Value, error) {
	if len(keys) != len(values) {
		return Value{}, &InvalidValueError{Reason: fmt.Sprintf("map has %d keys but %d values", len(keys), len(values))}
	}
	return Value{Kind: KindMap, MapKeys: keys, MapValues: values}, nil
}

// IsNull reports whether v is the null scalar.
func (v Value) IsNull() bool {
	return v.Kind == KindScalar && v.ScalarKind == ScalarNull
}

// Equal reports structural, order-sensitive equality.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case KindScalar:
		if v.ScalarKind != other.ScalarKind {
			return false
		}
		switch v.ScalarKind {
		case ScalarString:
			return v.Str == other.Str
		case ScalarInt:
			return v.Int == other.Int
		case ScalarFloat:
			return v.Float == other.Float
		case ScalarBool:
			return v.Bool == other.Bool
		case ScalarNull:
			return true
		}
		return false
	case KindMessage:
		if v.Message == nil || other.Message == nil {
			return v.Message == other.Message
		}
		return v.Message.Equal(other.Message)
	case KindList:
		if len(v.List) != len(other.List) {
			return false
		}
		for i := range v.List {
			if !v.List[i].Equal(other.List[i]) {
				return false
			}
		}
		return true
	case KindMap:
		if len(v.MapKeys) != len(other.MapKeys) {
			return false
		}
		for i := range v.MapKeys {
			if !v.MapKeys[i].Equal(other.MapKeys[i]) || !v.MapValues[i].Equal(other.MapValues[i]) {
				return false
			}
		}
		return true
	}
	return false
}
