// Package flatbuf implements the FlatBuffers vtable/offset binary codec.
package flatbuf

import (
	"encoding/binary"
	"math"

	"github.com/lutaml/unibuf/internal/model"
	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
)

// scalarSize returns the exact byte width of a FlatBuffers scalar type
// name, or 0 if name is not a scalar.
func scalarSize(name string) int {
	switch name {
	case "bool", "byte", "ubyte":
		return 1
	case "short", "ushort":
		return 2
	case "int", "uint", "float":
		return 4
	case "long", "ulong", "double":
		return 8
	default:
		return 0
	}
}

func isUnsigned(name string) bool {
	switch name {
	case "ubyte", "ushort", "uint", "ulong", "bool":
		return true
	}
	return false
}

func isFloatScalar(name string) bool { return name == "float" || name == "double" }

func putScalar(buf []byte, name string, v model.Value) {
	switch name {
	case "bool":
		if v.Bool {
			buf[0] = 1
		} else {
			buf[0] = 0
		}
	case "byte", "ubyte":
		buf[0] = byte(v.Int)
	case "short", "ushort":
		binary.LittleEndian.PutUint16(buf, uint16(v.Int))
	case "int", "uint":
		binary.LittleEndian.PutUint32(buf, uint32(v.Int))
	case "float":
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v.Float)))
	case "long", "ulong":
		binary.LittleEndian.PutUint64(buf, uint64(v.Int))
	case "double":
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.Float))
	}
}

func getScalar(buf []byte, name string) model.Value {
	switch name {
	case "bool":
		return model.NewBool(buf[0] != 0)
	case "byte":
		return model.NewInt(int64(int8(buf[0])))
	case "ubyte":
		return model.NewInt(int64(buf[0]))
	case "short":
		return model.NewInt(int64(int16(binary.LittleEndian.Uint16(buf))))
	case "ushort":
		return model.NewInt(int64(binary.LittleEndian.Uint16(buf)))
	case "int":
		return model.NewInt(int64(int32(binary.LittleEndian.Uint32(buf))))
	case "uint":
		return model.NewInt(int64(binary.LittleEndian.Uint32(buf)))
	case "float":
		return model.NewFloat(float64(math.Float32frombits(binary.LittleEndian.Uint32(buf))))
	case "long":
		return model.NewInt(int64(binary.LittleEndian.Uint64(buf)))
	case "ulong":
		return model.NewInt(int64(binary.LittleEndian.Uint64(buf)))
	case "double":
		return model.NewFloat(math.Float64frombits(binary.LittleEndian.Uint64(buf)))
	}
	return model.NewNull()
}

// fieldWidth returns the inline byte width a field occupies in a table's
// object body (scalar size, or 4 for any uoffset/pointer-typed field), or
// in a struct's fixed layout (scalar size, or a nested struct's own width).
func fieldWidth(schema *fbsschema.Schema, t fbsschema.FieldType) int {
	switch t.Kind {
	case fbsschema.TypeScalar:
		if t.Name == "string" {
			return 4 // uoffset to the string payload
		}
		return scalarSize(t.Name)
	case fbsschema.TypeVector:
		return 4
	case fbsschema.TypeUser:
		if st, ok := schema.StructByName(t.Name); ok {
			return structWidth(schema, st)
		}
		if e, ok := schema.EnumByName(t.Name); ok {
			return scalarSize(e.Underlying)
		}
		return 4 // table reference: uoffset
	}
	return 0
}

func structWidth(schema *fbsschema.Schema, st *fbsschema.StructDef) int {
	total := 0
	for _, f := range st.Fields {
		total += fieldWidth(schema, f.Type)
	}
	return total
}
