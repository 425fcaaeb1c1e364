// Package protowire implements the Protocol Buffers binary wire format:
// varint/zigzag primitives, tag encoding, and the Message-level
// encoder/decoder.
package protowire

import "github.com/lutaml/unibuf/internal/model"

// maxVarintBytes bounds a varint at 10 payload bytes (64-bit overflow).
const maxVarintBytes = 10

// AppendVarint appends the little-endian base-128 varint encoding of v to
// buf and returns the extended slice.
func AppendVarint(buf []byte, v uint64) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// ConsumeVarint decodes a varint starting at buf[0], returning the decoded
// value and the number of bytes consumed. Returns (0, 0, err) on a
// truncated buffer or a varint exceeding 10 payload bytes.
func ConsumeVarint(buf []byte) (uint64, int, error) {
	var v uint64
	for i := 0; i < maxVarintBytes; i++ {
		if i >= len(buf) {
			return 0, 0, &model.ParseError{Phase: "codec", Message: "truncated varint"}
		}
		b := buf[i]
		v |= uint64(b&0x7f) << (7 * uint(i))
		if b < 0x80 {
			return v, i + 1, nil
		}
	}
	return 0, 0, &model.ParseError{Phase: "codec", Message: "varint exceeds 10 bytes"}
}

// EncodeZigZag32 maps a signed 32-bit integer to its zigzag-encoded unsigned
// form: small magnitudes encode short.
func EncodeZigZag32(n int32) uint32 {
	return (uint32(n) << 1) ^ uint32(n>>31)
}

// DecodeZigZag32 is the inverse of EncodeZigZag32.
func DecodeZigZag32(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// EncodeZigZag64 maps a signed 64-bit integer to its zigzag-encoded unsigned
// form.
func EncodeZigZag64(n int64) uint64 {
	return (uint64(n) << 1) ^ uint64(n>>63)
}

// DecodeZigZag64 is the inverse of EncodeZigZag64.
func DecodeZigZag64(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}
