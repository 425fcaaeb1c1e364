package capnp

import (
	"math"

	"github.com/lutaml/unibuf/internal/model"
	capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"
)

// segmentBuilder accumulates the single in-progress segment the writer
// produces. Per the writer's "direct pointers only" policy, every pointer
// target lives in this one segment.
type segmentBuilder struct {
	words []uint64
}

// allocate extends the segment by n zero words and returns the starting
// word offset.
func (b *segmentBuilder) allocate(n int) int {
	start := len(b.words)
	b.words = append(b.words, make([]uint64, n)...)
	return start
}

func (b *segmentBuilder) setWord(i int, v uint64) { b.words[i] = v }
func (b *segmentBuilder) getWord(i int) uint64    { return b.words[i] }

// setBits performs a read-modify-write of a sub-word field using a bit
// mask, preserving adjacent packed fields.
func (b *segmentBuilder) setBits(wordIdx, bitOffset, bits int, value uint64) {
	mask := uint64(1)<<uint(bits) - 1
	if bits == 64 {
		mask = ^uint64(0)
	}
	cur := b.words[wordIdx]
	cur = (cur &^ (mask << uint(bitOffset))) | ((value & mask) << uint(bitOffset))
	b.words[wordIdx] = cur
}

// Encode serializes msg as rootType into a Cap'n Proto binary message.
func Encode(msg *model.Message, schema *capnpschema.Schema, rootType string) ([]byte, error) {
	st, ok := schema.StructByName(rootType)
	if !ok {
		return nil, &model.SerializationError{Message: "unknown struct type: " + rootType}
	}
	b := &segmentBuilder{}
	rootPtrWord := b.allocate(1)

	bodyOffset, dataWords, ptrWords, err := b.writeStruct(msg, st, schema)
	if err != nil {
		return nil, err
	}
	offset := int32(bodyOffset - (rootPtrWord + 1))
	b.setWord(rootPtrWord, encodeStructPointer(structPointer{offset: offset, dataWords: dataWords, ptrWords: ptrWords}))

	return encodeSingleSegment(b.words), nil
}

// writeStruct allocates and fills a struct's data/pointer sections,
// recursing into embedded structs and lists. Returns the struct's word
// offset and section sizes.
func (b *segmentBuilder) writeStruct(msg *model.Message, st *capnpschema.StructDef, schema *capnpschema.Schema) (int, uint16, uint16, error) {
	dataWords, ptrWords := sectionSizes(st)
	start := b.allocate(int(dataWords) + int(ptrWords))
	ptrBase := start + int(dataWords)

	for _, fd := range collectFields(st) {
		f, ok := msg.FindField(fd.Name)
		if !ok {
			continue
		}
		if isPrimitiveField(fd) {
			if err := b.writePrimitive(start, fd, f.Value, schema); err != nil {
				return 0, 0, 0, err
			}
			continue
		}
		slot := ptrBase + pointerIndex(st, fd)
		if err := b.writePointerField(slot, fd, f.Value, schema); err != nil {
			return 0, 0, 0, err
		}
	}
	return start, dataWords, ptrWords, nil
}

func (b *segmentBuilder) writePrimitive(base int, fd *capnpschema.FieldDef, v model.Value, schema *capnpschema.Schema) error {
	word, bit, bits := primitivePlacement(fd)
	idx := base + word

	if fd.IsEnum {
		e, _ := schema.EnumByName(fd.Type.Name)
		n := enumOrdinalFor(e, v)
		b.setBits(idx, bit, bits, uint64(n))
		return nil
	}

	switch fd.Type.Name {
	case capnpschema.Bool:
		var u uint64
		if v.Bool {
			u = 1
		}
		b.setBits(idx, bit, bits, u)
	case capnpschema.Float32:
		b.setBits(idx, bit, bits, uint64(math.Float32bits(float32(v.Float))))
	case capnpschema.Float64:
		b.setBits(idx, bit, bits, math.Float64bits(v.Float))
	default:
		b.setBits(idx, bit, bits, uint64(v.Int))
	}
	return nil
}

func enumOrdinalFor(e *capnpschema.EnumDef, v model.Value) uint16 {
	if v.Kind == model.KindScalar && v.ScalarKind == model.ScalarString {
		if n, ok := e.Values[v.Str]; ok {
			return n
		}
	}
	return uint16(v.Int)
}

func (b *segmentBuilder) writePointerField(slot int, fd *capnpschema.FieldDef, v model.Value, schema *capnpschema.Schema) error {
	switch fd.Type.Kind {
	case capnpschema.TypeList:
		return b.writeListPointer(slot, fd.Type.Element, v, schema)
	case capnpschema.TypePrimitive:
		// Text or Data: byte-lists.
		return b.writeByteList(slot, v, fd.Type.Name == capnpschema.Text)
	case capnpschema.TypeUser:
		if st, ok := schema.StructByName(fd.Type.Name); ok {
			if v.Message == nil {
				b.setWord(slot, 0)
				return nil
			}
			bodyOffset, dataWords, ptrWords, err := b.writeStruct(v.Message, st, schema)
			if err != nil {
				return err
			}
			offset := int32(bodyOffset - (slot + 1))
			b.setWord(slot, encodeStructPointer(structPointer{offset: offset, dataWords: dataWords, ptrWords: ptrWords}))
			return nil
		}
	}
	return &model.SerializationError{Message: "unsupported pointer field type: " + fd.Type.Name}
}

func (b *segmentBuilder) writeByteList(slot int, v model.Value, isText bool) error {
	raw := []byte(v.Str)
	count := len(raw)
	if isText {
		count++ // null terminator is counted, stripped on read
	}
	wordsNeeded := (count + 7) / 8
	start := b.allocate(wordsNeeded)
	for i, by := range raw {
		wordIdx := start + i/8
		shift := (i % 8) * 8
		b.setBits(wordIdx, shift, 8, uint64(by))
	}
	offset := int32(start - (slot + 1))
	b.setWord(slot, encodeListPointer(listPointer{offset: offset, elementSize: 2, elementCount: uint32(count)}))
	return nil
}

func (b *segmentBuilder) writeListPointer(slot int, elem *capnpschema.FieldType, v model.Value, schema *capnpschema.Schema) error {
	items := v.List
	if len(items) == 0 {
		b.setWord(slot, 0) // an empty list re-reads as a null pointer
		return nil
	}

	if elem.Kind == capnpschema.TypePrimitive && (elem.Name == capnpschema.Text || elem.Name == capnpschema.Data) {
		return b.writePointerListOfByteLists(slot, items, elem.Name == capnpschema.Text)
	}
	if elem.Kind == capnpschema.TypeUser {
		if st, ok := schema.StructByName(elem.Name); ok {
			return b.writeInlineCompositeList(slot, items, st, schema)
		}
		if e, ok := schema.EnumByName(elem.Name); ok {
			return b.writeEnumList(slot, items, e)
		}
	}

	size, bits := elementSizeFor(elem)
	wordsNeeded := 0
	if bits > 0 {
		wordsNeeded = (len(items)*bits + 63) / 64
	}
	start := b.allocate(wordsNeeded)
	for i, item := range items {
		bitPos := i * bits
		wordIdx := start + bitPos/64
		bitOffset := bitPos % 64
		var u uint64
		switch {
		case elem.Name == capnpschema.Bool:
			if item.Bool {
				u = 1
			}
		case isFloatType(elem.Name):
			if elem.Name == capnpschema.Float32 {
				u = uint64(math.Float32bits(float32(item.Float)))
			} else {
				u = math.Float64bits(item.Float)
			}
		default:
			u = uint64(item.Int)
		}
		b.setBits(wordIdx, bitOffset, bits, u)
	}
	offset := int32(start - (slot + 1))
	b.setWord(slot, encodeListPointer(listPointer{offset: offset, elementSize: size, elementCount: uint32(len(items))}))
	return nil
}

func (b *segmentBuilder) writePointerListOfByteLists(slot int, items []model.Value, isText bool) error {
	start := b.allocate(len(items))
	for i, item := range items {
		if err := b.writeByteList(start+i, item, isText); err != nil {
			return err
		}
	}
	offset := int32(start - (slot + 1))
	b.setWord(slot, encodeListPointer(listPointer{offset: offset, elementSize: 6, elementCount: uint32(len(items))}))
	return nil
}

func (b *segmentBuilder) writeInlineCompositeList(slot int, items []model.Value, st *capnpschema.StructDef, schema *capnpschema.Schema) error {
	dataWords, ptrWords := sectionSizes(st)
	elemWords := int(dataWords) + int(ptrWords)

	tagWord := b.allocate(1)
	elementsStart := b.allocate(elemWords * len(items))

	for i, item := range items {
		elemStart := elementsStart + i*elemWords
		ptrBase := elemStart + int(dataWords)
		msg := item.Message
		if msg == nil {
			msg = model.NewMessageTree()
		}
		for _, fd := range collectFields(st) {
			f, ok := msg.FindField(fd.Name)
			if !ok {
				continue
			}
			if isPrimitiveField(fd) {
				if err := b.writePrimitiveAt(elemStart, fd, f.Value, schema); err != nil {
					return err
				}
				continue
			}
			slotIdx := ptrBase + pointerIndex(st, fd)
			if err := b.writePointerField(slotIdx, fd, f.Value, schema); err != nil {
				return err
			}
		}
	}

	b.setWord(tagWord, encodeStructPointer(structPointer{
		offset:    int32(len(items)),
		dataWords: dataWords,
		ptrWords:  ptrWords,
	}))

	offset := int32(tagWord - (slot + 1))
	b.setWord(slot, encodeListPointer(listPointer{offset: offset, elementSize: 7, elementCount: uint32(len(items) * elemWords)}))
	return nil
}

func (b *segmentBuilder) writePrimitiveAt(base int, fd *capnpschema.FieldDef, v model.Value, schema *capnpschema.Schema) error {
	return b.writePrimitive(base, fd, v, schema)
}

func (b *segmentBuilder) writeEnumList(slot int, items []model.Value, e *capnpschema.EnumDef) error {
	wordsNeeded := (len(items)*16 + 63) / 64
	start := b.allocate(wordsNeeded)
	for i, item := range items {
		bitPos := i * 16
		wordIdx := start + bitPos/64
		b.setBits(wordIdx, bitPos%64, 16, uint64(enumOrdinalFor(e, item)))
	}
	offset := int32(start - (slot + 1))
	b.setWord(slot, encodeListPointer(listPointer{offset: offset, elementSize: 3, elementCount: uint32(len(items))}))
	return nil
}

// elementSizeFor maps a scalar list element type to its Cap'n Proto
// element-size code and bit width.
func elementSizeFor(elem *capnpschema.FieldType) (uint8, int) {
	switch elem.Name {
	case capnpschema.Void:
		return 0, 0
	case capnpschema.Bool:
		return 1, 1
	case capnpschema.Int8, capnpschema.UInt8:
		return 2, 8
	case capnpschema.Int16, capnpschema.UInt16:
		return 3, 16
	case capnpschema.Int32, capnpschema.UInt32, capnpschema.Float32:
		return 4, 32
	case capnpschema.Int64, capnpschema.UInt64, capnpschema.Float64:
		return 5, 64
	default:
		return 6, 64 // pointer-typed element
	}
}
