package protowire

import (
	"encoding/binary"
	"math"
	"strconv"

	"github.com/lutaml/unibuf/internal/model"
	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

// Decode parses a Protocol Buffers binary message against messageType,
// looked up by name in schema. Unknown field numbers are skipped per
// their wire type rather than rejected.
func Decode(data []byte, schema *protoschema.Schema, messageType string) (*model.Message, error) {
	if len(data) == 0 {
		return model.NewMessageTree(), nil
	}
	def, ok := schema.MessageByName(messageType)
	if !ok {
		return nil, &model.ParseError{Phase: "codec", Message: "unknown message type: " + messageType}
	}
	return decodeMessage(data, schema, def)
}

func fieldByNumber(def *protoschema.MessageDef, number uint32) (*protoschema.FieldDef, bool) {
	for _, f := range def.Fields {
		if f.Number == number {
			return f, true
		}
	}
	return nil, false
}

func decodeMessage(data []byte, schema *protoschema.Schema, def *protoschema.MessageDef) (*model.Message, error) {
	msg := model.NewMessageTree()
	pos := 0
	for pos < len(data) {
		tag, n, err := ConsumeVarint(data[pos:])
		if err != nil {
			return nil, err
		}
		pos += n
		fieldNumber, wt := DecodeTag(tag)

		fd, known := fieldByNumber(def, fieldNumber)
		if !known {
			skipped, err := skipValue(data[pos:], wt)
			if err != nil {
				return nil, err
			}
			pos += skipped
			continue
		}

		value, consumed, err := decodeFieldValue(data[pos:], wt, schema, fd)
		if err != nil {
			return nil, err
		}
		pos += consumed

		if fd.IsMap() {
			appendMapEntry(msg, fd, value)
		} else {
			msg.Append(fd.Name, value)
		}
	}
	return msg, nil
}

// decodeFieldValue decodes a single value for fd given its wire type,
// returning the value and bytes consumed (not including the tag, already
// consumed by the caller).
func decodeFieldValue(data []byte, wt WireType, schema *protoschema.Schema, fd *protoschema.FieldDef) (model.Value, int, error) {
	declared := fd.Type
	if fd.IsMap() {
		// A map entry arrives as an embedded "MapEntry" message with
		// synthetic fields key=1, value=2.
		length, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		total := n + int(length)
		if total > len(data) {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "map entry overruns buffer"}
		}
		entry := data[n:total]
		key, val, err := decodeMapEntry(entry, schema, fd)
		if err != nil {
			return model.Value{}, 0, err
		}
		mapVal, err := model.NewMap([]model.Value{key}, []model.Value{val})
		if err != nil {
			return model.Value{}, 0, err
		}
		return mapVal, total, nil
	}

	switch {
	case declared == "string" || declared == "bytes":
		length, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		total := n + int(length)
		if total > len(data) {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "length-delimited value overruns buffer"}
		}
		return model.NewString(string(data[n:total])), total, nil
	case protoschema.ScalarTypes[declared]:
		return decodeScalar(data, declared)
	default:
		// Embedded message or enum-by-name.
		if enumDef, ok := schema.EnumByName(declared); ok {
			u, n, err := ConsumeVarint(data)
			if err != nil {
				return model.Value{}, 0, err
			}
			return model.NewString(enumName(enumDef, int32(u))), n, nil
		}
		msgDef, ok := schema.MessageByName(declared)
		if !ok {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "unknown embedded message type: " + declared}
		}
		length, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		total := n + int(length)
		if total > len(data) {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "nested message overruns buffer"}
		}
		nested, err := decodeMessage(data[n:total], schema, msgDef)
		if err != nil {
			return model.Value{}, 0, err
		}
		return model.NewMessage(nested), total, nil
	}
}

func decodeScalar(data []byte, declared string) (model.Value, int, error) {
	switch declared {
	case "bool":
		u, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		return model.NewBool(u != 0), n, nil
	case "int32", "int64":
		u, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		return model.NewInt(int64(u)), n, nil
	case "uint32", "uint64":
		u, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		return model.NewInt(int64(u)), n, nil
	case "sint32":
		u, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		return model.NewInt(int64(DecodeZigZag32(uint32(u)))), n, nil
	case "sint64":
		u, n, err := ConsumeVarint(data)
		if err != nil {
			return model.Value{}, 0, err
		}
		return model.NewInt(DecodeZigZag64(u)), n, nil
	case "fixed64", "sfixed64":
		if len(data) < 8 {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "truncated fixed64"}
		}
		u := binary.LittleEndian.Uint64(data[:8])
		return model.NewInt(int64(u)), 8, nil
	case "double":
		if len(data) < 8 {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "truncated double"}
		}
		u := binary.LittleEndian.Uint64(data[:8])
		return model.NewFloat(math.Float64frombits(u)), 8, nil
	case "fixed32", "sfixed32":
		if len(data) < 4 {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "truncated fixed32"}
		}
		u := binary.LittleEndian.Uint32(data[:4])
		return model.NewInt(int64(u)), 4, nil
	case "float":
		if len(data) < 4 {
			return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "truncated float"}
		}
		u := binary.LittleEndian.Uint32(data[:4])
		return model.NewFloat(float64(math.Float32frombits(u))), 4, nil
	default:
		return model.Value{}, 0, &model.ParseError{Phase: "codec", Message: "unsupported scalar type: " + declared}
	}
}

func enumName(e *protoschema.EnumDef, number int32) string {
	for _, name := range e.ValueNames {
		if e.Values[name] == number {
			return name
		}
	}
	return strconv.Itoa(int(number))
}

func decodeMapEntry(entry []byte, schema *protoschema.Schema, fd *protoschema.FieldDef) (model.Value, model.Value, error) {
	keyFd := &protoschema.FieldDef{Name: "key", Type: fd.KeyType, Number: 1}
	valFd := &protoschema.FieldDef{Name: "value", Type: fd.ValueType, Number: 2}
	var key, val model.Value
	havKey, havVal := false, false

	pos := 0
	for pos < len(entry) {
		tag, n, err := ConsumeVarint(entry[pos:])
		if err != nil {
			return model.Value{}, model.Value{}, err
		}
		pos += n
		number, wt := DecodeTag(tag)
		switch number {
		case 1:
			v, consumed, err := decodeFieldValue(entry[pos:], wt, schema, keyFd)
			if err != nil {
				return model.Value{}, model.Value{}, err
			}
			key, havKey = v, true
			pos += consumed
		case 2:
			v, consumed, err := decodeFieldValue(entry[pos:], wt, schema, valFd)
			if err != nil {
				return model.Value{}, model.Value{}, err
			}
			val, havVal = v, true
			pos += consumed
		default:
			skipped, err := skipValue(entry[pos:], wt)
			if err != nil {
				return model.Value{}, model.Value{}, err
			}
			pos += skipped
		}
	}
	if !havKey {
		key = zeroValueFor(fd.KeyType)
	}
	if !havVal {
		val = zeroValueFor(fd.ValueType)
	}
	return key, val, nil
}

func zeroValueFor(declared string) model.Value {
	switch declared {
	case "string", "bytes":
		return model.NewString("")
	case "bool":
		return model.NewBool(false)
	case "float", "double":
		return model.NewFloat(0)
	default:
		if protoschema.ScalarTypes[declared] {
			return model.NewInt(0)
		}
		return model.NewNull()
	}
}

func appendMapEntry(msg *model.Message, fd *protoschema.FieldDef, entryValue model.Value) {
	if existing, ok := msg.FindField(fd.Name); ok && existing.IsMap {
		existing.Value.MapKeys = append(existing.Value.MapKeys, entryValue.MapKeys...)
		existing.Value.MapValues = append(existing.Value.MapValues, entryValue.MapValues...)
		return
	}
	msg.AppendMap(fd.Name, entryValue)
}

// Encode serializes msg against messageType, looked up by name in schema.
// Fields absent from the schema are skipped without error (mirroring
// decoder leniency) and emission order matches msg's field order.
func Encode(msg *model.Message, schema *protoschema.Schema, messageType string) ([]byte, error) {
	def, ok := schema.MessageByName(messageType)
	if !ok {
		return nil, &model.SerializationError{Message: "unknown message type: " + messageType}
	}
	return encodeMessage(msg, schema, def)
}

func fieldDefByName(def *protoschema.MessageDef, name string) (*protoschema.FieldDef, bool) {
	for _, f := range def.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

func encodeMessage(msg *model.Message, schema *protoschema.Schema, def *protoschema.MessageDef) ([]byte, error) {
	var buf []byte
	for _, f := range msg.Fields {
		fd, ok := fieldDefByName(def, f.Name)
		if !ok {
			continue // unknown field: skip on write, matching decoder leniency
		}
		encoded, err := encodeField(schema, fd, f)
		if err != nil {
			return nil, err
		}
		buf = append(buf, encoded...)
	}
	return buf, nil
}

func encodeField(schema *protoschema.Schema, fd *protoschema.FieldDef, f model.Field) ([]byte, error) {
	if fd.IsMap() {
		var buf []byte
		for i, k := range f.Value.MapKeys {
			v := f.Value.MapValues[i]
			entry, err := encodeMapEntry(schema, fd, k, v)
			if err != nil {
				return nil, err
			}
			buf = AppendVarint(buf, EncodeTag(fd.Number, WireLen))
			buf = AppendVarint(buf, uint64(len(entry)))
			buf = append(buf, entry...)
		}
		return buf, nil
	}

	values := []model.Value{f.Value}
	if fd.IsRepeated() && f.Value.Kind == model.KindList {
		values = f.Value.List
	}

	var buf []byte
	for _, v := range values {
		encoded, wt, err := encodeScalarOrMessage(schema, fd.Type, v)
		if err != nil {
			return nil, err
		}
		buf = AppendVarint(buf, EncodeTag(fd.Number, wt))
		buf = append(buf, encoded...)
	}
	return buf, nil
}

func encodeMapEntry(schema *protoschema.Schema, fd *protoschema.FieldDef, k, v model.Value) ([]byte, error) {
	var entry []byte
	kEnc, kwt, err := encodeScalarOrMessage(schema, fd.KeyType, k)
	if err != nil {
		return nil, err
	}
	entry = AppendVarint(entry, EncodeTag(1, kwt))
	entry = append(entry, kEnc...)

	vEnc, vwt, err := encodeScalarOrMessage(schema, fd.ValueType, v)
	if err != nil {
		return nil, err
	}
	entry = AppendVarint(entry, EncodeTag(2, vwt))
	entry = append(entry, vEnc...)
	return entry, nil
}

// encodeScalarOrMessage encodes a single value (not its tag) and reports
// the wire type used, so the caller can compute the correct tag.
func encodeScalarOrMessage(schema *protoschema.Schema, declared string, v model.Value) ([]byte, WireType, error) {
	if wt, ok := wireTypeForScalar(declared); ok {
		enc, err := encodeScalarValue(declared, v)
		return enc, wt, err
	}

	if _, ok := schema.EnumByName(declared); ok {
		n, err := enumNumber(schema, declared, v)
		if err != nil {
			return nil, 0, err
		}
		return AppendVarint(nil, uint64(uint32(n))), WireVarint, nil
	}

	msgDef, ok := schema.MessageByName(declared)
	if !ok {
		return nil, 0, &model.SerializationError{Message: "unknown embedded message type: " + declared}
	}
	if v.Message == nil {
		return AppendVarint(nil, 0), WireLen, nil
	}
	body, err := encodeMessage(v.Message, schema, msgDef)
	if err != nil {
		return nil, 0, err
	}
	var buf []byte
	buf = AppendVarint(buf, uint64(len(body)))
	buf = append(buf, body...)
	return buf, WireLen, nil
}

func enumNumber(schema *protoschema.Schema, declared string, v model.Value) (int32, error) {
	e, _ := schema.EnumByName(declared)
	if v.Kind == model.KindScalar && v.ScalarKind == model.ScalarString {
		if n, ok := e.Values[v.Str]; ok {
			return n, nil
		}
		return 0, &model.TypeCoercionError{From: "string", To: "enum " + e.Name, Value: v.Str}
	}
	return int32(v.Int), nil
}

func encodeScalarValue(declared string, v model.Value) ([]byte, error) {
	switch declared {
	case "bool":
		if v.Bool {
			return AppendVarint(nil, 1), nil
		}
		return AppendVarint(nil, 0), nil
	case "int32", "int64", "uint32", "uint64":
		return AppendVarint(nil, uint64(v.Int)), nil
	case "sint32":
		return AppendVarint(nil, uint64(EncodeZigZag32(int32(v.Int)))), nil
	case "sint64":
		return AppendVarint(nil, EncodeZigZag64(v.Int)), nil
	case "fixed64", "sfixed64":
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, uint64(v.Int))
		return buf, nil
	case "double":
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v.Float))
		return buf, nil
	case "fixed32", "sfixed32":
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(v.Int))
		return buf, nil
	case "float":
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v.Float)))
		return buf, nil
	case "string", "bytes":
		var buf []byte
		buf = AppendVarint(buf, uint64(len(v.Str)))
		buf = append(buf, v.Str...)
		return buf, nil
	default:
		return nil, &model.SerializationError{Message: "unsupported scalar type: " + declared}
	}
}
