// Package unibuf parses and serializes Protocol Buffers, Cap'n Proto, and
// FlatBuffers schemas and data from a single Go API. Every parse and
// serialize call is synchronous and blocking; the package holds no
// cross-call state beyond the Schema values callers choose to keep and
// reuse.
package unibuf

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/lutaml/unibuf/internal/model"
)

// Message is the generic value tree produced by textproto and Protocol
// Buffers binary parsing, re-exported so callers never need to import the
// internal package directly.
type Message = model.Message

// Value is a single tagged field value inside a Message.
type Value = model.Value

// NewMessageTree creates an empty Message, ready for Append calls.
func NewMessageTree() *Message { return model.NewMessageTree() }

// NewString builds a string scalar Value.
func NewString(s string) Value { return model.NewString(s) }

// NewInt builds an integer scalar Value.
func NewInt(n int64) Value { return model.NewInt(n) }

// NewFloat builds a floating-point scalar Value.
func NewFloat(f float64) Value { return model.NewFloat(f) }

// NewBool builds a boolean scalar Value.
func NewBool(b bool) Value { return model.NewBool(b) }

// NewList builds a list Value.
func NewList(items []Value) Value { return model.NewList(items) }

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &model.FileNotFoundError{Path: path}
		}
		return nil, err
	}
	return data, nil
}

// Parse dispatches on the file extension of path, reading its content and
// routing to the matching parser:
//
//   - .txtpb, .textproto -> ParseTextproto
//   - .binpb             -> ParseBinary (schema is required)
//   - .proto, .fbs       -> error, these are schemas rather than data
//   - .pb                -> content sniff: valid UTF-8 text is parsed as
//     textproto, otherwise as Protocol Buffers binary
func Parse(path string, schema *ProtoSchema, messageType string) (*Message, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txtpb", ".textproto":
		return ParseTextproto(content)
	case ".binpb":
		if schema == nil {
			return nil, &model.InvalidArgumentError{Message: "binary data requires a schema"}
		}
		return ParseBinary(content, schema, messageType)
	case ".proto", ".fbs":
		return nil, &model.InvalidArgumentError{Message: ext + " is a schema file, not data"}
	case ".pb":
		if isValidUTF8Text(content) {
			return ParseTextproto(content)
		}
		if schema == nil {
			return nil, &model.InvalidArgumentError{Message: "binary data requires a schema"}
		}
		return ParseBinary(content, schema, messageType)
	default:
		return nil, &model.InvalidArgumentError{Message: "unrecognized file extension " + ext}
	}
}

func isValidUTF8Text(content []byte) bool {
	return utf8.Valid(content)
}
