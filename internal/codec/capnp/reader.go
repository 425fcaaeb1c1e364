package capnp

import (
	"math"

	"github.com/lutaml/unibuf/internal/model"
	capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"
)

// Decode parses a Cap'n Proto binary message's root pointer as rootType.
func Decode(data []byte, schema *capnpschema.Schema, rootType string) (*model.Message, error) {
	st, ok := schema.StructByName(rootType)
	if !ok {
		return nil, &model.ParseError{Phase: "codec", Message: "unknown struct type: " + rootType}
	}
	segments, err := decodeSegments(data)
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 || len(segments[0]) == 0 {
		return model.NewMessageTree(), nil
	}

	root := segments[0][0]
	if isNullPointer(root) {
		return model.NewMessageTree(), nil
	}
	return readRootStruct(segments, root, st, schema)
}

// readRootStruct resolves the root pointer word (word 0 of segment 0)
// through resolveStructPointer, which also yields the struct's section
// sizes carried in the pointer word itself.
func readRootStruct(segments [][]uint64, rootWord uint64, st *capnpschema.StructDef, schema *capnpschema.Schema) (*model.Message, error) {
	segID, base, sp, err := resolveStructPointer(segments, 0, 0, rootWord)
	if err != nil {
		return nil, err
	}
	return readStruct(segments, segID, base, sp.dataWords, sp.ptrWords, st, schema)
}

// resolveStructPointer follows (and, if necessary, chases a far pointer
// to) a struct pointer word located at (atSeg, atWord), returning the
// target segment, target base word, and the struct's section sizes.
func resolveStructPointer(segments [][]uint64, atSeg, atWord int, word uint64) (int, int, structPointer, error) {
	if isNullPointer(word) {
		return atSeg, atWord, structPointer{}, nil
	}
	switch pointerKindOf(word) {
	case kindStruct:
		sp := decodeStructPointer(word)
		target := atWord + 1 + int(sp.offset)
		if target < 0 || target > len(segments[atSeg]) {
			return 0, 0, structPointer{}, &model.ParseError{Phase: "codec", Message: "struct pointer offset out of bounds"}
		}
		return atSeg, target, sp, nil
	case kindFar:
		fp := decodeFarPointer(word)
		if int(fp.segmentID) >= len(segments) {
			return 0, 0, structPointer{}, &model.ParseError{Phase: "codec", Message: "far pointer targets unknown segment"}
		}
		if fp.landingPad {
			return 0, 0, structPointer{}, &model.ParseError{Phase: "codec", Message: "double-far landing pads are not supported"}
		}
		landingWord := segments[fp.segmentID][fp.wordOffset]
		return resolveStructPointer(segments, int(fp.segmentID), int(fp.wordOffset), landingWord)
	default:
		return 0, 0, structPointer{}, &model.ParseError{Phase: "codec", Message: "expected a struct-typed pointer"}
	}
}

func readStruct(segments [][]uint64, segID, base int, dataWords, ptrWords uint16, st *capnpschema.StructDef, schema *capnpschema.Schema) (*model.Message, error) {
	msg := model.NewMessageTree()
	data := segments[segID][base : base+int(dataWords)]
	ptrBase := base + int(dataWords)

	for _, fd := range collectFields(st) {
		if isPrimitiveField(fd) {
			v, err := readPrimitive(data, fd, schema)
			if err != nil {
				return nil, err
			}
			msg.Append(fd.Name, v)
			continue
		}
		idx := pointerIndex(st, fd)
		slotWordIdx := ptrBase + idx
		if slotWordIdx >= len(segments[segID]) {
			msg.Append(fd.Name, model.NewNull())
			continue
		}
		word := segments[segID][slotWordIdx]
		v, err := readPointerField(segments, segID, slotWordIdx, word, fd, schema)
		if err != nil {
			return nil, err
		}
		msg.Append(fd.Name, v)
	}
	return msg, nil
}

func readPrimitive(data []uint64, fd *capnpschema.FieldDef, schema *capnpschema.Schema) (model.Value, error) {
	word, bit, bits := primitivePlacement(fd)
	if word >= len(data) {
		return zeroPrimitiveValue(fd, schema), nil
	}
	raw := extractBits(data[word], bit, bits)

	if fd.IsEnum {
		e, _ := schema.EnumByName(fd.Type.Name)
		return model.NewString(enumNameFor(e, uint16(raw))), nil
	}
	switch fd.Type.Name {
	case capnpschema.Bool:
		return model.NewBool(raw != 0), nil
	case capnpschema.Float32:
		return model.NewFloat(float64(math.Float32frombits(uint32(raw)))), nil
	case capnpschema.Float64:
		return model.NewFloat(math.Float64frombits(raw)), nil
	case capnpschema.Int8:
		return model.NewInt(int64(int8(raw))), nil
	case capnpschema.Int16:
		return model.NewInt(int64(int16(raw))), nil
	case capnpschema.Int32:
		return model.NewInt(int64(int32(raw))), nil
	case capnpschema.Int64:
		return model.NewInt(int64(raw)), nil
	default:
		return model.NewInt(int64(raw)), nil
	}
}

func zeroPrimitiveValue(fd *capnpschema.FieldDef, schema *capnpschema.Schema) model.Value {
	if fd.IsEnum {
		e, _ := schema.EnumByName(fd.Type.Name)
		return model.NewString(enumNameFor(e, 0))
	}
	if fd.Type.Name == capnpschema.Bool {
		return model.NewBool(false)
	}
	if isFloatType(fd.Type.Name) {
		return model.NewFloat(0)
	}
	return model.NewInt(0)
}

func enumNameFor(e *capnpschema.EnumDef, ordinal uint16) string {
	if e == nil {
		return ""
	}
	for _, name := range e.ValueNames {
		if e.Values[name] == ordinal {
			return name
		}
	}
	return ""
}

// extractBits reads a `bits`-wide field at `bitOffset` within word, sign
// extending for widths that represent signed types is the caller's job;
// this returns the raw unsigned bit pattern.
func extractBits(word uint64, bitOffset, bits int) uint64 {
	if bits == 64 {
		return word
	}
	mask := uint64(1)<<uint(bits) - 1
	return (word >> uint(bitOffset)) & mask
}

func readPointerField(segments [][]uint64, segID, atWord int, word uint64, fd *capnpschema.FieldDef, schema *capnpschema.Schema) (model.Value, error) {
	if isNullPointer(word) {
		return nullValueFor(fd), nil
	}

	switch fd.Type.Kind {
	case capnpschema.TypePrimitive: // Text or Data
		bytes, _, err := readByteList(segments, segID, atWord, word, fd.Type.Name == capnpschema.Text)
		if err != nil {
			return model.Value{}, err
		}
		return model.NewString(string(bytes)), nil

	case capnpschema.TypeList:
		return readList(segments, segID, atWord, word, fd.Type.Element, schema)

	case capnpschema.TypeUser:
		if st, ok := schema.StructByName(fd.Type.Name); ok {
			tSeg, tBase, sp, err := resolveStructPointer(segments, segID, atWord, word)
			if err != nil {
				return model.Value{}, err
			}
			nested, err := readStruct(segments, tSeg, tBase, sp.dataWords, sp.ptrWords, st, schema)
			if err != nil {
				return model.Value{}, err
			}
			return model.NewMessage(nested), nil
		}
	}
	return model.Value{}, &model.ParseError{Phase: "codec", Message: "unsupported pointer field type: " + fd.Type.Name}
}

func nullValueFor(fd *capnpschema.FieldDef) model.Value {
	if fd.Type.Kind == capnpschema.TypeList {
		return model.NewList(nil)
	}
	if fd.Type.Kind == capnpschema.TypeUser {
		return model.NewMessage(nil)
	}
	return model.NewString("")
}

// readByteList decodes a Text or Data pointer at (segID, atWord) into raw
// bytes, stripping the trailing null terminator Text always carries when
// isText is set. Data bytes are returned unchanged.
func readByteList(segments [][]uint64, segID, atWord int, word uint64, isText bool) ([]byte, bool, error) {
	if pointerKindOf(word) == kindFar {
		fp := decodeFarPointer(word)
		landing := segments[fp.segmentID][fp.wordOffset]
		return readByteList(segments, int(fp.segmentID), int(fp.wordOffset), landing, isText)
	}
	if pointerKindOf(word) != kindList {
		return nil, false, &model.ParseError{Phase: "codec", Message: "expected a list (byte) pointer"}
	}
	lp := decodeListPointer(word)
	target := atWord + 1 + int(lp.offset)
	if target < 0 || target+(int(lp.elementCount)+7)/8 > len(segments[segID]) {
		return nil, false, &model.ParseError{Phase: "codec", Message: "byte list offset out of bounds"}
	}
	out := make([]byte, lp.elementCount)
	for i := range out {
		wordIdx := target + i/8
		shift := (i % 8) * 8
		out[i] = byte(extractBits(segments[segID][wordIdx], shift, 8))
	}
	// Text counts its null terminator in elementCount; strip it.
	if n := len(out); isText && n > 0 && out[n-1] == 0 {
		out = out[:n-1]
	}
	return out, true, nil
}

func readList(segments [][]uint64, segID, atWord int, word uint64, elem *capnpschema.FieldType, schema *capnpschema.Schema) (model.Value, error) {
	if pointerKindOf(word) == kindFar {
		fp := decodeFarPointer(word)
		landing := segments[fp.segmentID][fp.wordOffset]
		return readList(segments, int(fp.segmentID), int(fp.wordOffset), landing, elem, schema)
	}
	if pointerKindOf(word) != kindList {
		return model.Value{}, &model.ParseError{Phase: "codec", Message: "expected a list pointer"}
	}
	lp := decodeListPointer(word)
	target := atWord + 1 + int(lp.offset)

	if elem.Kind == capnpschema.TypePrimitive && (elem.Name == capnpschema.Text || elem.Name == capnpschema.Data) {
		return readPointerListOfByteLists(segments, segID, target, lp, elem.Name == capnpschema.Text)
	}
	if elem.Kind == capnpschema.TypeUser {
		if st, ok := schema.StructByName(elem.Name); ok {
			return readInlineCompositeList(segments, segID, target, lp, st, schema)
		}
		if e, ok := schema.EnumByName(elem.Name); ok {
			return readEnumList(segments, segID, target, lp, e)
		}
	}

	items := make([]model.Value, lp.elementCount)
	bits := elementBitsFor(lp.elementSize)
	for i := range items {
		bitPos := i * bits
		wordIdx := target + bitPos/64
		raw := extractBits(segments[segID][wordIdx], bitPos%64, bits)
		items[i] = scalarFromRaw(elem, raw)
	}
	return model.NewList(items), nil
}

func readPointerListOfByteLists(segments [][]uint64, segID, target int, lp listPointer, isText bool) (model.Value, error) {
	items := make([]model.Value, lp.elementCount)
	for i := range items {
		word := segments[segID][target+i]
		bytes, _, err := readByteList(segments, segID, target+i, word, isText)
		if err != nil {
			return model.Value{}, err
		}
		items[i] = model.NewString(string(bytes))
	}
	return model.NewList(items), nil
}

func readInlineCompositeList(segments [][]uint64, segID, target int, lp listPointer, st *capnpschema.StructDef, schema *capnpschema.Schema) (model.Value, error) {
	tag := segments[segID][target]
	sp := decodeStructPointer(tag)
	count := int(sp.offset)
	elemWords := int(sp.dataWords) + int(sp.ptrWords)
	elementsStart := target + 1

	items := make([]model.Value, count)
	for i := 0; i < count; i++ {
		elemBase := elementsStart + i*elemWords
		nested, err := readStruct(segments, segID, elemBase, sp.dataWords, sp.ptrWords, st, schema)
		if err != nil {
			return model.Value{}, err
		}
		items[i] = model.NewMessage(nested)
	}
	return model.NewList(items), nil
}

func readEnumList(segments [][]uint64, segID, target int, lp listPointer, e *capnpschema.EnumDef) (model.Value, error) {
	items := make([]model.Value, lp.elementCount)
	for i := range items {
		bitPos := i * 16
		wordIdx := target + bitPos/64
		raw := extractBits(segments[segID][wordIdx], bitPos%64, 16)
		items[i] = model.NewString(enumNameFor(e, uint16(raw)))
	}
	return model.NewList(items), nil
}

func elementBitsFor(size uint8) int {
	switch size {
	case 0:
		return 0
	case 1:
		return 1
	case 2:
		return 8
	case 3:
		return 16
	case 4:
		return 32
	case 5:
		return 64
	default:
		return 64
	}
}

func scalarFromRaw(elem *capnpschema.FieldType, raw uint64) model.Value {
	switch elem.Name {
	case capnpschema.Bool:
		return model.NewBool(raw != 0)
	case capnpschema.Float32:
		return model.NewFloat(float64(math.Float32frombits(uint32(raw))))
	case capnpschema.Float64:
		return model.NewFloat(math.Float64frombits(raw))
	case capnpschema.Int8:
		return model.NewInt(int64(int8(raw)))
	case capnpschema.Int16:
		return model.NewInt(int64(int16(raw)))
	case capnpschema.Int32:
		return model.NewInt(int64(int32(raw)))
	default:
		return model.NewInt(int64(raw))
	}
}
