package protowire

import "github.com/lutaml/unibuf/internal/model"

// WireType is the 3-bit tag-low-bits classifier.
type WireType uint8

const (
	WireVarint WireType = 0
	WireI64    WireType = 1
	WireLen    WireType = 2
	WireI32    WireType = 5
)

// EncodeTag packs a field number and wire type into a single tag value:
// tag = (field_number << 3) | wire_type.
func EncodeTag(fieldNumber uint32, wt WireType) uint64 {
	return uint64(fieldNumber)<<3 | uint64(wt)
}

// DecodeTag splits a decoded tag value back into field number and wire type.
func DecodeTag(tag uint64) (fieldNumber uint32, wt WireType) {
	return uint32(tag >> 3), WireType(tag & 0x7)
}

// wireTypeForScalar returns the wire type used to encode a declared scalar
// type.
func wireTypeForScalar(declaredType string) (WireType, bool) {
	switch declaredType {
	case "bool", "int32", "int64", "uint32", "uint64", "sint32", "sint64":
		return WireVarint, true
	case "fixed64", "sfixed64", "double":
		return WireI64, true
	case "fixed32", "sfixed32", "float":
		return WireI32, true
	case "string", "bytes":
		return WireLen, true
	default:
		return 0, false // embedded message, or an enum (treated as varint by caller)
	}
}

// skipValue advances past a value of the given wire type without decoding
// it, for unknown-field tolerance.
func skipValue(buf []byte, wt WireType) (int, error) {
	switch wt {
	case WireVarint:
		_, n, err := ConsumeVarint(buf)
		return n, err
	case WireI64:
		if len(buf) < 8 {
			return 0, &model.ParseError{Phase: "codec", Message: "truncated 64-bit value"}
		}
		return 8, nil
	case WireI32:
		if len(buf) < 4 {
			return 0, &model.ParseError{Phase: "codec", Message: "truncated 32-bit value"}
		}
		return 4, nil
	case WireLen:
		length, n, err := ConsumeVarint(buf)
		if err != nil {
			return 0, err
		}
		total := n + int(length)
		if total > len(buf) {
			return 0, &model.ParseError{Phase: "codec", Message: "length-delimited value overruns buffer"}
		}
		return total, nil
	default:
		return 0, &model.ParseError{Phase: "codec", Message: "unsupported wire type (groups are not supported)"}
	}
}
