package unibuf

import (
	"github.com/lutaml/unibuf/internal/codec/protowire"
	"github.com/lutaml/unibuf/internal/grammar/proto3"
	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

// ProtoSchema is a parsed and validated proto3 schema.
type ProtoSchema = protoschema.Schema

// ParseSchema parses a proto3 .proto file at path into a ProtoSchema.
func ParseSchema(path string) (*ProtoSchema, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return proto3.Parse(string(content), path)
}

// ParseBinary decodes Protocol Buffers wire-format content into a Message,
// using schema to resolve field numbers, types, and enum names for
// messageType.
func ParseBinary(content []byte, schema *ProtoSchema, messageType string) (*Message, error) {
	return protowire.Decode(content, schema, messageType)
}

// ParseBinaryFile reads path and decodes it as Protocol Buffers wire format.
func ParseBinaryFile(path string, schema *ProtoSchema, messageType string) (*Message, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return protowire.Decode(content, schema, messageType)
}

// ToBinary encodes msg as Protocol Buffers wire format for messageType.
func ToBinary(msg *Message, schema *ProtoSchema, messageType string) ([]byte, error) {
	return protowire.Encode(msg, schema, messageType)
}
