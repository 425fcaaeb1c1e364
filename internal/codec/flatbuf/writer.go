package flatbuf

import (
	"encoding/binary"

	"github.com/lutaml/unibuf/internal/model"
	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
)

// builder accumulates the single growing buffer the writer produces.
// Strings, vectors, and nested tables are appended as they're built, so a
// referencing field can always compute its uoffset once its target's
// absolute position is known.
type builder struct {
	buf []byte
}

func (b *builder) pos() int { return len(b.buf) }

func (b *builder) append(p []byte) int {
	start := len(b.buf)
	b.buf = append(b.buf, p...)
	return start
}

func (b *builder) pad4() {
	for len(b.buf)%4 != 0 {
		b.buf = append(b.buf, 0)
	}
}

// Encode serializes msg as rootType, matching the minimal FlatBuffers
// writer layout: root uoffset, then string/vector/table payloads as
// encountered, then each table's body immediately followed by its vtable.
func Encode(msg *model.Message, schema *fbsschema.Schema, rootType string) ([]byte, error) {
	tbl, ok := schema.TableByName(rootType)
	if !ok {
		return nil, &model.SerializationError{Message: "unknown table type: " + rootType}
	}
	b := &builder{buf: make([]byte, 4)} // reserve root uoffset

	tablePos, err := b.writeTable(msg, tbl, schema)
	if err != nil {
		return nil, err
	}
	binary.LittleEndian.PutUint32(b.buf[0:4], uint32(tablePos))
	return b.buf, nil
}

// writeTable serializes msg against tbl's field layout, returning the
// absolute position of the table object (where its soffset lives).
func (b *builder) writeTable(msg *model.Message, tbl *fbsschema.TableDef, schema *fbsschema.Schema) (int, error) {
	type present struct {
		field  *fbsschema.FieldDef
		offset int // byte offset within the object, from soffset slot start
	}

	var entries []present
	offset := 4 // soffset occupies [0,4)
	for _, f := range tbl.Fields {
		val, ok := msg.FindField(f.Name)
		if !ok {
			continue
		}
		entries = append(entries, present{field: f, offset: offset})
		offset += fieldWidth(schema, f.Type)
		_ = val
	}
	objectSize := offset

	// Build off-line payloads (strings, vectors, nested tables) before the
	// body, so their absolute positions are known when the body is
	// written immediately after.
	childPos := make(map[string]int, len(entries))
	for _, e := range entries {
		f, _ := msg.FindField(e.field.Name)
		pos, err := b.writeOffline(f.Value, e.field.Type, schema)
		if err != nil {
			return 0, err
		}
		if pos >= 0 {
			childPos[e.field.Name] = pos
		}
	}

	bodyPos := b.pos()
	body := make([]byte, objectSize)
	for _, e := range entries {
		f, _ := msg.FindField(e.field.Name)
		fieldPos := bodyPos + e.offset
		if err := writeFieldValue(body[e.offset:e.offset+fieldWidth(schema, e.field.Type)], f.Value, e.field.Type, schema, fieldPos, childPos[e.field.Name]); err != nil {
			return 0, err
		}
	}
	b.append(body)

	vtableStart := b.pos()
	vtableSize := 4 + 2*len(tbl.Fields)
	vtable := make([]byte, vtableSize)
	binary.LittleEndian.PutUint16(vtable[0:2], uint16(vtableSize))
	binary.LittleEndian.PutUint16(vtable[2:4], uint16(objectSize))
	offsetByName := make(map[string]int, len(entries))
	for _, e := range entries {
		offsetByName[e.field.Name] = e.offset
	}
	for i, f := range tbl.Fields {
		slot := 4 + 2*i
		if off, ok := offsetByName[f.Name]; ok {
			binary.LittleEndian.PutUint16(vtable[slot:slot+2], uint16(off))
		}
	}
	b.append(vtable)
	b.pad4()

	soffset := int32(bodyPos - vtableStart)
	binary.LittleEndian.PutUint32(b.buf[bodyPos:bodyPos+4], uint32(soffset))

	return bodyPos, nil
}

// writeOffline writes the out-of-line payload for a field (if any) and
// returns its absolute position, or -1 for inline-only fields (scalars,
// enums, structs).
func (b *builder) writeOffline(v model.Value, t fbsschema.FieldType, schema *fbsschema.Schema) (int, error) {
	switch t.Kind {
	case fbsschema.TypeScalar:
		if t.Name == "string" {
			return b.writeString(v.Str), nil
		}
		return -1, nil
	case fbsschema.TypeVector:
		return b.writeVector(v.List, *t.Element, schema)
	case fbsschema.TypeUser:
		if st, ok := schema.StructByName(t.Name); ok {
			_ = st
			return -1, nil // structs are written inline
		}
		if _, ok := schema.EnumByName(t.Name); ok {
			return -1, nil
		}
		if tbl, ok := schema.TableByName(t.Name); ok {
			if v.Message == nil {
				return -1, nil
			}
			return b.writeTable(v.Message, tbl, schema)
		}
		return -1, &model.SerializationError{Message: "unknown type reference: " + t.Name}
	}
	return -1, nil
}

// writeString appends a length-prefixed, null-terminated, 4-byte-padded
// string payload and returns the position of its length prefix.
func (b *builder) writeString(s string) int {
	start := b.pos()
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(s)))
	b.append(hdr[:])
	b.append([]byte(s))
	b.buf = append(b.buf, 0) // null terminator, not counted in length
	b.pad4()
	return start
}

// writeVector appends a length-prefixed vector payload. Scalar elements
// are written inline; string/table elements are written off-line first
// and referenced by relative uoffset, matching table field semantics.
func (b *builder) writeVector(items []model.Value, elem fbsschema.FieldType, schema *fbsschema.Schema) (int, error) {
	stride := fieldWidth(schema, elem)

	var childPositions []int
	if elem.Kind == fbsschema.TypeScalar && elem.Name == "string" {
		childPositions = make([]int, len(items))
		for i, item := range items {
			childPositions[i] = b.writeString(item.Str)
		}
	} else if elem.Kind == fbsschema.TypeUser {
		if tbl, ok := schema.TableByName(elem.Name); ok {
			childPositions = make([]int, len(items))
			for i, item := range items {
				pos, err := b.writeTable(item.Message, tbl, schema)
				if err != nil {
					return 0, err
				}
				childPositions[i] = pos
			}
		}
	}

	start := b.pos()
	var hdr [4]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(items)))
	b.append(hdr[:])

	bodyStart := b.pos()
	body := make([]byte, stride*len(items))
	for i, item := range items {
		slotPos := bodyStart + i*stride
		if childPositions != nil {
			rel := int32(childPositions[i] - slotPos)
			binary.LittleEndian.PutUint32(body[i*stride:i*stride+4], uint32(rel))
			continue
		}
		putScalar(body[i*stride:i*stride+stride], elem.Name, item)
	}
	b.append(body)
	b.pad4()
	return start, nil
}

// writeFieldValue writes a field's inline representation at dst, which is
// the field's slot within the (not-yet-appended) table body.
func writeFieldValue(dst []byte, v model.Value, t fbsschema.FieldType, schema *fbsschema.Schema, fieldPos, childAbsPos int) error {
	switch t.Kind {
	case fbsschema.TypeScalar:
		if t.Name == "string" {
			rel := int32(childAbsPos - fieldPos)
			binary.LittleEndian.PutUint32(dst, uint32(rel))
			return nil
		}
		putScalar(dst, t.Name, v)
		return nil
	case fbsschema.TypeVector:
		rel := int32(childAbsPos - fieldPos)
		binary.LittleEndian.PutUint32(dst, uint32(rel))
		return nil
	case fbsschema.TypeUser:
		if st, ok := schema.StructByName(t.Name); ok {
			return writeStructInline(dst, v.Message, st, schema)
		}
		if e, ok := schema.EnumByName(t.Name); ok {
			putScalar(dst, e.Underlying, enumOrdinalValue(e, v))
			return nil
		}
		rel := int32(childAbsPos - fieldPos)
		binary.LittleEndian.PutUint32(dst, uint32(rel))
		return nil
	}
	return nil
}

func enumOrdinalValue(e *fbsschema.EnumDef, v model.Value) model.Value {
	if v.Kind == model.KindScalar && v.ScalarKind == model.ScalarString {
		if n, ok := e.Values[v.Str]; ok {
			return model.NewInt(n)
		}
	}
	return model.NewInt(v.Int)
}

func writeStructInline(dst []byte, msg *model.Message, st *fbsschema.StructDef, schema *fbsschema.Schema) error {
	offset := 0
	for _, f := range st.Fields {
		width := fieldWidth(schema, f.Type)
		val, ok := msg.FindField(f.Name)
		if ok {
			if nested, isStruct := schema.StructByName(f.Type.Name); isStruct {
				if err := writeStructInline(dst[offset:offset+width], val.Value.Message, nested, schema); err != nil {
					return err
				}
			} else if e, isEnum := schema.EnumByName(f.Type.Name); isEnum {
				putScalar(dst[offset:offset+width], e.Underlying, enumOrdinalValue(e, val.Value))
			} else {
				putScalar(dst[offset:offset+width], f.Type.Name, val.Value)
			}
		}
		offset += width
	}
	return nil
}
