// Package capnp implements the Cap'n Proto segment/pointer binary codec.
package capnp

// pointerKind is the 2-bit type tag in a pointer word's low bits.
type pointerKind uint8

const (
	kindStruct pointerKind = 0
	kindList   pointerKind = 1
	kindFar    pointerKind = 2
	kindOther  pointerKind = 3
)

// structPointer is a decoded struct-typed pointer word.
type structPointer struct {
	offset    int32 // relative to the word after the pointer
	dataWords uint16
	ptrWords  uint16
}

// listPointer is a decoded list-typed pointer word.
type listPointer struct {
	offset       int32
	elementSize  uint8
	elementCount uint32
}

// farPointer is a decoded far pointer, redirecting to another segment.
type farPointer struct {
	landingPad bool
	wordOffset uint32
	segmentID  uint32
}

func isNullPointer(word uint64) bool { return word == 0 }

func encodeStructPointer(p structPointer) uint64 {
	return uint64(uint32(p.offset)&0x3fffffff)<<2 |
		uint64(p.dataWords)<<32 |
		uint64(p.ptrWords)<<48
}

func decodeStructPointer(word uint64) structPointer {
	raw := uint32(word>>2) & 0x3fffffff
	return structPointer{
		offset:    signExtend30(raw),
		dataWords: uint16(word >> 32),
		ptrWords:  uint16(word >> 48),
	}
}

func encodeListPointer(p listPointer) uint64 {
	return 1 | uint64(uint32(p.offset)&0x3fffffff)<<2 |
		uint64(p.elementSize&0x7)<<32 |
		uint64(p.elementCount&0x1fffffff)<<35
}

func decodeListPointer(word uint64) listPointer {
	raw := uint32(word>>2) & 0x3fffffff
	return listPointer{
		offset:       signExtend30(raw),
		elementSize:  uint8((word >> 32) & 0x7),
		elementCount: uint32((word >> 35) & 0x1fffffff),
	}
}

func decodeFarPointer(word uint64) farPointer {
	return farPointer{
		landingPad: (word>>2)&1 != 0,
		wordOffset: uint32((word >> 3) & 0x1fffffff),
		segmentID:  uint32(word >> 32),
	}
}

func pointerKindOf(word uint64) pointerKind {
	return pointerKind(word & 0x3)
}

// signExtend30 sign-extends a 30-bit two's-complement value held in the low
// 30 bits of raw.
func signExtend30(raw uint32) int32 {
	if raw&(1<<29) != 0 {
		return int32(raw | 0xc0000000)
	}
	return int32(raw)
}
