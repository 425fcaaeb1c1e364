package capnp

import capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"

// collectFields flattens a struct's direct fields, union members, and group
// members into one declaration-ordered slice. Layout (data/pointer section
// placement) is ordinal-based across the whole struct, not scoped to
// nesting, so union and group members share the same sections as ordinary
// fields.
func collectFields(st *capnpschema.StructDef) []*capnpschema.FieldDef {
	var out []*capnpschema.FieldDef
	out = append(out, st.Fields...)
	for _, u := range st.Unions {
		out = append(out, u.Fields...)
	}
	for _, g := range st.Groups {
		out = append(out, g.Fields...)
	}
	return out
}

// isPrimitiveField reports whether fd occupies the data section (true) or
// a pointer-section slot (false).
func isPrimitiveField(fd *capnpschema.FieldDef) bool {
	if fd.IsEnum {
		return true
	}
	return !fd.Type.IsPointerType()
}

// sectionSizes computes the data/pointer word counts a struct needs,
// scanning every field's ordinal and declared type.
func sectionSizes(st *capnpschema.StructDef) (dataWords, ptrWords uint16) {
	fields := collectFields(st)
	var maxDataWord int
	for _, fd := range fields {
		if !isPrimitiveField(fd) {
			ptrWords++
			continue
		}
		word, _, _ := primitivePlacement(fd)
		if word+1 > maxDataWord {
			maxDataWord = word + 1
		}
	}
	return uint16(maxDataWord), ptrWords
}

// primitivePlacement returns the data-section word index, the bit offset
// within that word, and the bit width of fd's primitive value.
func primitivePlacement(fd *capnpschema.FieldDef) (word, bitOffset, bits int) {
	ord := int(fd.Ordinal)
	if fd.IsEnum {
		return ord / 4, (ord % 4) * 16, 16
	}
	switch fd.Type.Name {
	case capnpschema.Bool:
		return ord / 64, ord % 64, 1
	case capnpschema.Int8, capnpschema.UInt8:
		return ord / 8, (ord % 8) * 8, 8
	case capnpschema.Int16, capnpschema.UInt16:
		return ord / 4, (ord % 4) * 16, 16
	case capnpschema.Int32, capnpschema.UInt32, capnpschema.Float32:
		return ord / 2, (ord % 2) * 32, 32
	case capnpschema.Int64, capnpschema.UInt64, capnpschema.Float64:
		return ord, 0, 64
	default:
		return ord, 0, 64
	}
}

// pointerIndex returns the slot a non-primitive field occupies in the
// pointer section: the count of non-primitive fields declared before it.
func pointerIndex(st *capnpschema.StructDef, target *capnpschema.FieldDef) int {
	idx := 0
	for _, fd := range collectFields(st) {
		if fd == target {
			return idx
		}
		if !isPrimitiveField(fd) {
			idx++
		}
	}
	return idx
}

func isSignedType(name string) bool {
	switch name {
	case capnpschema.Int8, capnpschema.Int16, capnpschema.Int32, capnpschema.Int64:
		return true
	}
	return false
}

func isFloatType(name string) bool {
	return name == capnpschema.Float32 || name == capnpschema.Float64
}
