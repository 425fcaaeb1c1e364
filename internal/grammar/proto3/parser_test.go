package proto3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
)

func TestParseSimpleMessage(t *testing.T) {
	source := `
syntax = "proto3";
package example.v1;

message Person {
  string name = 1;
  int32 id = 2;
  repeated string tags = 3;
}
`
	schema, err := Parse(source, "person.proto")
	require.NoError(t, err)
	assert.Equal(t, "proto3", schema.Syntax)
	assert.Equal(t, "example.v1", schema.Package)

	m, ok := schema.MessageByName("Person")
	require.True(t, ok)
	require.Len(t, m.Fields, 3)
	assert.Equal(t, "string", m.Fields[0].Type)
	assert.EqualValues(t, 1, m.Fields[0].Number)
	assert.Equal(t, "repeated", m.Fields[2].Label)
}

func TestParseNestedMessageAndEnum(t *testing.T) {
	source := `
message Outer {
  enum Status {
    UNKNOWN = 0;
    ACTIVE = 1;
  }
  message Inner {
    string value = 1;
  }
  Status status = 1;
  Inner inner = 2;
}
`
	schema, err := Parse(source, "nested.proto")
	require.NoError(t, err)

	outer, ok := schema.MessageByName("Outer")
	require.True(t, ok)
	require.Len(t, outer.NestedEnums, 1)
	require.Len(t, outer.NestedMessages, 1)

	status, ok := schema.EnumByName("Status")
	require.True(t, ok)
	assert.EqualValues(t, 1, status.Values["ACTIVE"])
}

func TestParseMapField(t *testing.T) {
	source := `
message Config {
  map<string, int32> counters = 1;
}
`
	schema, err := Parse(source, "config.proto")
	require.NoError(t, err)

	m, ok := schema.MessageByName("Config")
	require.True(t, ok)
	require.Len(t, m.Fields, 1)
	f := m.Fields[0]
	assert.True(t, f.IsMap())
	assert.Equal(t, "string", f.KeyType)
	assert.Equal(t, "int32", f.ValueType)
}

func TestParseRejectsUnsupportedSyntax(t *testing.T) {
	_, err := Parse(`syntax = "proto2";`, "bad.proto")
	require.Error(t, err)
	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "parser", parseErr.Phase)
}

func TestParseRejectsDuplicateFieldNumber(t *testing.T) {
	source := `
message Dup {
  string a = 1;
  string b = 1;
}
`
	_, err := Parse(source, "dup.proto")
	require.Error(t, err)
}

func TestParseRejectsUnresolvableFieldType(t *testing.T) {
	source := `
message Broken {
  Nonexistent thing = 1;
}
`
	_, err := Parse(source, "broken.proto")
	require.Error(t, err)
}
