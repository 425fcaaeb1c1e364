package flatbuf

import (
	"encoding/binary"

	"github.com/lutaml/unibuf/internal/model"
	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
)

// Decode parses a FlatBuffers binary buffer's root table as rootType.
func Decode(data []byte, schema *fbsschema.Schema, rootType string) (*model.Message, error) {
	tbl, ok := schema.TableByName(rootType)
	if !ok {
		return nil, &model.ParseError{Phase: "codec", Message: "unknown table type: " + rootType}
	}
	if len(data) < 4 {
		return nil, &model.ParseError{Phase: "codec", Message: "truncated root uoffset"}
	}
	rootOffset := binary.LittleEndian.Uint32(data[0:4])
	tablePos := int(rootOffset)
	if tablePos < 0 || tablePos+4 > len(data) {
		return nil, &model.ParseError{Phase: "codec", Message: "root uoffset out of bounds"}
	}
	return readTable(data, tablePos, tbl, schema)
}

func readTable(data []byte, tablePos int, tbl *fbsschema.TableDef, schema *fbsschema.Schema) (*model.Message, error) {
	if tablePos+4 > len(data) {
		return nil, &model.ParseError{Phase: "codec", Message: "table position out of bounds"}
	}
	soffset := int32(binary.LittleEndian.Uint32(data[tablePos : tablePos+4]))
	vtablePos := tablePos - int(soffset)
	if vtablePos < 0 || vtablePos+4 > len(data) {
		return nil, &model.ParseError{Phase: "codec", Message: "vtable position out of bounds"}
	}
	vtableSize := int(binary.LittleEndian.Uint16(data[vtablePos : vtablePos+2]))
	if vtablePos+vtableSize > len(data) {
		return nil, &model.ParseError{Phase: "codec", Message: "vtable exceeds buffer"}
	}

	msg := model.NewMessageTree()
	for i, f := range tbl.Fields {
		slot := vtablePos + 4 + 2*i
		if slot+2 > vtablePos+vtableSize {
			msg.Append(f.Name, defaultFieldValue(f, schema))
			continue
		}
		entryOffset := binary.LittleEndian.Uint16(data[slot : slot+2])
		if entryOffset == 0 {
			msg.Append(f.Name, defaultFieldValue(f, schema))
			continue
		}
		fieldPos := tablePos + int(entryOffset)
		v, err := readFieldValue(data, fieldPos, f.Type, schema)
		if err != nil {
			return nil, err
		}
		msg.Append(f.Name, v)
	}
	return msg, nil
}

func defaultFieldValue(f *fbsschema.FieldDef, schema *fbsschema.Schema) model.Value {
	if f.Type.Kind == fbsschema.TypeScalar && f.Type.Name == "string" {
		return model.NewString("")
	}
	if f.Type.Kind == fbsschema.TypeVector {
		return model.NewList(nil)
	}
	if f.Type.Kind == fbsschema.TypeUser {
		if _, ok := schema.TableByName(f.Type.Name); ok {
			return model.NewMessage(nil)
		}
	}
	return model.NewInt(0)
}

func readFieldValue(data []byte, fieldPos int, t fbsschema.FieldType, schema *fbsschema.Schema) (model.Value, error) {
	switch t.Kind {
	case fbsschema.TypeScalar:
		if t.Name == "string" {
			return readString(data, fieldPos)
		}
		width := scalarSize(t.Name)
		if fieldPos+width > len(data) {
			return model.Value{}, &model.ParseError{Phase: "codec", Message: "scalar field out of bounds"}
		}
		return getScalar(data[fieldPos:fieldPos+width], t.Name), nil

	case fbsschema.TypeVector:
		return readVector(data, fieldPos, *t.Element, schema)

	case fbsschema.TypeUser:
		if st, ok := schema.StructByName(t.Name); ok {
			width := structWidth(schema, st)
			if fieldPos+width > len(data) {
				return model.Value{}, &model.ParseError{Phase: "codec", Message: "struct field out of bounds"}
			}
			nested, err := readStructInline(data[fieldPos:fieldPos+width], st, schema)
			if err != nil {
				return model.Value{}, err
			}
			return model.NewMessage(nested), nil
		}
		if e, ok := schema.EnumByName(t.Name); ok {
			width := scalarSize(e.Underlying)
			raw := getScalar(data[fieldPos:fieldPos+width], e.Underlying)
			return model.NewString(enumNameFor(e, raw)), nil
		}
		if tbl, ok := schema.TableByName(t.Name); ok {
			uoff := int32(binary.LittleEndian.Uint32(data[fieldPos : fieldPos+4]))
			if fieldPos+int(uoff) < 0 {
				return model.Value{}, &model.ParseError{Phase: "codec", Message: "table uoffset out of bounds"}
			}
			nested, err := readTable(data, fieldPos+int(uoff), tbl, schema)
			if err != nil {
				return model.Value{}, err
			}
			return model.NewMessage(nested), nil
		}
	}
	return model.Value{}, &model.ParseError{Phase: "codec", Message: "unresolvable field type: " + t.Name}
}

func enumNameFor(e *fbsschema.EnumDef, raw model.Value) string {
	for _, name := range e.ValueNames {
		if e.Values[name] == raw.Int {
			return name
		}
	}
	return ""
}

func readString(data []byte, fieldPos int) (model.Value, error) {
	if fieldPos+4 > len(data) {
		return model.Value{}, &model.ParseError{Phase: "codec", Message: "string uoffset out of bounds"}
	}
	// Field uoffsets are read as signed: Encode writes payloads before the
	// table that refers to them, so its offsets point backwards.
	uoff := int32(binary.LittleEndian.Uint32(data[fieldPos : fieldPos+4]))
	strPos := fieldPos + int(uoff)
	if strPos < 0 || strPos+4 > len(data) {
		return model.Value{}, &model.ParseError{Phase: "codec", Message: "string target out of bounds"}
	}
	length := binary.LittleEndian.Uint32(data[strPos : strPos+4])
	start := strPos + 4
	if start+int(length) > len(data) {
		return model.Value{}, &model.ParseError{Phase: "codec", Message: "string payload exceeds buffer"}
	}
	return model.NewString(string(data[start : start+int(length)])), nil
}

func readVector(data []byte, fieldPos int, elem fbsschema.FieldType, schema *fbsschema.Schema) (model.Value, error) {
	if fieldPos+4 > len(data) {
		return model.Value{}, &model.ParseError{Phase: "codec", Message: "vector uoffset out of bounds"}
	}
	uoff := int32(binary.LittleEndian.Uint32(data[fieldPos : fieldPos+4]))
	vecPos := fieldPos + int(uoff)
	if vecPos < 0 || vecPos+4 > len(data) {
		return model.Value{}, &model.ParseError{Phase: "codec", Message: "vector target out of bounds"}
	}
	length := int(binary.LittleEndian.Uint32(data[vecPos : vecPos+4]))
	bodyStart := vecPos + 4
	stride := fieldWidth(schema, elem)

	items := make([]model.Value, length)
	for i := 0; i < length; i++ {
		slotPos := bodyStart + i*stride
		if slotPos+stride > len(data) {
			return model.Value{}, &model.ParseError{Phase: "codec", Message: "vector element out of bounds"}
		}
		v, err := readFieldValue(data, slotPos, elem, schema)
		if err != nil {
			return model.Value{}, err
		}
		items[i] = v
	}
	return model.NewList(items), nil
}

func readStructInline(buf []byte, st *fbsschema.StructDef, schema *fbsschema.Schema) (*model.Message, error) {
	msg := model.NewMessageTree()
	offset := 0
	for _, f := range st.Fields {
		width := fieldWidth(schema, f.Type)
		if nested, ok := schema.StructByName(f.Type.Name); ok {
			nestedMsg, err := readStructInline(buf[offset:offset+width], nested, schema)
			if err != nil {
				return nil, err
			}
			msg.Append(f.Name, model.NewMessage(nestedMsg))
		} else if e, ok := schema.EnumByName(f.Type.Name); ok {
			raw := getScalar(buf[offset:offset+width], e.Underlying)
			msg.Append(f.Name, model.NewString(enumNameFor(e, raw)))
		} else {
			msg.Append(f.Name, getScalar(buf[offset:offset+width], f.Type.Name))
		}
		offset += width
	}
	return msg, nil
}
