package unibuf

import (
	"github.com/lutaml/unibuf/internal/codec/capnp"
	capnpgrammar "github.com/lutaml/unibuf/internal/grammar/capnp"
	capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"
)

// CapnpSchema is a parsed and validated Cap'n Proto schema.
type CapnpSchema = capnpschema.Schema

// ParseCapnProtoSchema parses a Cap'n Proto .capnp file at path.
func ParseCapnProtoSchema(path string) (*CapnpSchema, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return capnpgrammar.Parse(string(content), path)
}

// CapnpBinaryParserHandle decodes Cap'n Proto binary messages against a
// fixed schema, returned by CapnpBinaryParser.
type CapnpBinaryParserHandle struct {
	schema *CapnpSchema
}

// CapnpBinaryParser binds schema for repeated Parse calls.
func CapnpBinaryParser(schema *CapnpSchema) CapnpBinaryParserHandle {
	return CapnpBinaryParserHandle{schema: schema}
}

// Parse decodes data as a Cap'n Proto message rooted at rootType.
func (p CapnpBinaryParserHandle) Parse(data []byte, rootType string) (*Message, error) {
	return capnp.Decode(data, p.schema, rootType)
}

// CapnpBinarySerializerHandle encodes Cap'n Proto binary messages against a
// fixed schema, returned by CapnpBinarySerializer.
type CapnpBinarySerializerHandle struct {
	schema *CapnpSchema
}

// CapnpBinarySerializer binds schema for repeated Serialize calls.
func CapnpBinarySerializer(schema *CapnpSchema) CapnpBinarySerializerHandle {
	return CapnpBinarySerializerHandle{schema: schema}
}

// Serialize encodes data as a Cap'n Proto message rooted at rootType.
func (s CapnpBinarySerializerHandle) Serialize(data *Message, rootType string) ([]byte, error) {
	return capnp.Encode(data, s.schema, rootType)
}
