package capnp

import (
	"encoding/binary"

	"github.com/lutaml/unibuf/internal/model"
)

// decodeSegments parses the segment framing header and returns each
// segment's words, decoded little-endian into a flat []uint64 view.
func decodeSegments(data []byte) ([][]uint64, error) {
	if len(data) < 4 {
		return nil, &model.ParseError{Phase: "codec", Message: "truncated segment header"}
	}
	count := binary.LittleEndian.Uint32(data[0:4]) + 1

	headerWords := 1 + int(count)
	if headerWords%2 != 0 {
		headerWords++ // padding word when segment count is even
	}
	headerBytes := headerWords * 4
	if len(data) < headerBytes {
		return nil, &model.ParseError{Phase: "codec", Message: "truncated segment size table"}
	}

	sizes := make([]uint32, count)
	for i := 0; i < int(count); i++ {
		sizes[i] = binary.LittleEndian.Uint32(data[4+4*i : 8+4*i])
	}

	segments := make([][]uint64, count)
	pos := headerBytes
	for i, size := range sizes {
		byteLen := int(size) * 8
		if pos+byteLen > len(data) {
			return nil, &model.ParseError{Phase: "codec", Message: "segment exceeds declared word length"}
		}
		words := make([]uint64, size)
		for w := 0; w < int(size); w++ {
			words[w] = binary.LittleEndian.Uint64(data[pos+w*8 : pos+w*8+8])
		}
		segments[i] = words
		pos += byteLen
	}
	return segments, nil
}

// encodeSingleSegment frames a single segment's words per the Cap'n Proto
// message header layout. The writer never produces more than one segment.
func encodeSingleSegment(words []uint64) []byte {
	headerWords := 2 // count-1 (1 segment) + 1 size word; 2 is already even
	out := make([]byte, headerWords*4+len(words)*8)
	binary.LittleEndian.PutUint32(out[0:4], 0) // N-1 == 0
	binary.LittleEndian.PutUint32(out[4:8], uint32(len(words)))
	base := headerWords * 4
	for i, w := range words {
		binary.LittleEndian.PutUint64(out[base+i*8:base+i*8+8], w)
	}
	return out
}
