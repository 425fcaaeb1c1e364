package unibuf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

func personSchema(t *testing.T) *ProtoSchema {
	t.Helper()
	s := &ProtoSchema{
		Messages: []*protoschema.MessageDef{
			{
				Name: "Person",
				Fields: []*protoschema.FieldDef{
					{Name: "name", Type: "string", Number: 1},
					{Name: "age", Type: "int32", Number: 2},
					{Name: "active", Type: "bool", Number: 3},
				},
			},
		},
	}
	require.NoError(t, s.Build())
	return s
}

func TestParseTextprotoRoundTrip(t *testing.T) {
	msg, err := ParseTextproto([]byte(`name: "Ada" age: 30`))
	require.NoError(t, err)
	out := ToTextproto(msg)
	reparsed, err := ParseTextproto([]byte(out))
	require.NoError(t, err)
	assert.True(t, msg.Equal(reparsed))
}

func TestParseBinaryRoundTripThroughSchema(t *testing.T) {
	schema := personSchema(t)
	msg := NewMessageTree()
	msg.Append("name", NewString("Alice"))
	msg.Append("age", NewInt(30))
	msg.Append("active", NewBool(true))

	data, err := ToBinary(msg, schema, "Person")
	require.NoError(t, err)

	decoded, err := ParseBinary(data, schema, "Person")
	require.NoError(t, err)
	assert.True(t, msg.Equal(decoded))
}

func TestParseDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "person.txtpb")
	require.NoError(t, os.WriteFile(path, []byte(`name: "Bob"`), 0o644))

	msg, err := Parse(path, nil, "")
	require.NoError(t, err)
	f, ok := msg.FindField("name")
	require.True(t, ok)
	assert.Equal(t, "Bob", f.Value.Str)
}

func TestParseRejectsSchemaFileAsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "person.proto")
	require.NoError(t, os.WriteFile(path, []byte(`syntax = "proto3";`), 0o644))

	_, err := Parse(path, nil, "")
	require.Error(t, err)
}

func TestParseBinaryFileRequiresSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "person.binpb")
	require.NoError(t, os.WriteFile(path, []byte{0x08, 0x01}, 0o644))

	_, err := Parse(path, nil, "")
	require.Error(t, err)
}
