package unibuf

import (
	"github.com/lutaml/unibuf/internal/codec/flatbuf"
	"github.com/lutaml/unibuf/internal/grammar/fbs"
	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
)

// FbsSchema is a parsed and validated FlatBuffers schema.
type FbsSchema = fbsschema.Schema

// ParseFlatBuffersSchema parses a FlatBuffers .fbs file at path.
func ParseFlatBuffersSchema(path string) (*FbsSchema, error) {
	content, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return fbs.Parse(string(content), path)
}

// ParseFlatBuffersBinary decodes FlatBuffers binary content into a Message,
// using schema to resolve the table named rootType. A struct name is not
// accepted as the root type.
func ParseFlatBuffersBinary(content []byte, schema *FbsSchema, rootType string) (*Message, error) {
	return flatbuf.Decode(content, schema, rootType)
}

// ToFlatBuffersBinary encodes msg as a FlatBuffers buffer rooted at rootType.
func ToFlatBuffersBinary(msg *Message, schema *FbsSchema, rootType string) ([]byte, error) {
	return flatbuf.Encode(msg, schema, rootType)
}
