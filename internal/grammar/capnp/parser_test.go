package capnp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"
)

func TestParseStructWithFields(t *testing.T) {
	source := `
@0xdeadbeefcafef00d;

struct Person {
  name @0 :Text;
  age @1 :UInt32;
  tags @2 :List(Text);
}
`
	schema, err := Parse(source, "person.capnp")
	require.NoError(t, err)
	assert.Equal(t, "0xdeadbeefcafef00d", schema.FileID)

	st, ok := schema.StructByName("Person")
	require.True(t, ok)
	require.Len(t, st.Fields, 3)
	assert.Equal(t, capnpschema.TypePrimitive, st.Fields[0].Type.Kind)
	assert.Equal(t, capnpschema.TypeList, st.Fields[2].Type.Kind)
	assert.Equal(t, capnpschema.Text, st.Fields[2].Type.Element.Name)
}

func TestParseEnumAndEnumFieldResolution(t *testing.T) {
	source := `
@0x1;

enum Color {
  red @0;
  green @1;
  blue @2;
}

struct Shape {
  color @0 :Color;
}
`
	schema, err := Parse(source, "shape.capnp")
	require.NoError(t, err)

	st, ok := schema.StructByName("Shape")
	require.True(t, ok)
	require.Len(t, st.Fields, 1)
	assert.True(t, st.Fields[0].IsEnum)
}

func TestParseUnionAndGroup(t *testing.T) {
	source := `
@0x2;

struct Shape {
  union {
    circle @0 :Float32;
    square @1 :Float32;
  }
  meta @2 :group {
    label @0 :Text;
  }
}
`
	schema, err := Parse(source, "shape.capnp")
	require.NoError(t, err)

	st, ok := schema.StructByName("Shape")
	require.True(t, ok)
	require.Len(t, st.Unions, 1)
	require.Len(t, st.Unions[0].Fields, 2)
	require.Len(t, st.Groups, 1)
	assert.Equal(t, "meta", st.Groups[0].Name)
}

func TestParseUsingAndConst(t *testing.T) {
	source := `
@0x3;

using Foo = import "foo.capnp";
const maxSize :UInt32 = 100;
`
	schema, err := Parse(source, "c.capnp")
	require.NoError(t, err)
	require.Len(t, schema.Usings, 1)
	assert.Equal(t, "Foo", schema.Usings[0].Alias)
	require.Len(t, schema.Constants, 1)
	assert.Equal(t, "100", schema.Constants[0].Value)
}

func TestParseMissingFileIDFails(t *testing.T) {
	_, err := Parse(`struct Foo { a @0 :Text; }`, "bad.capnp")
	require.Error(t, err)
}
