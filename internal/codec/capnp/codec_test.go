package capnp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
	capnpschema "github.com/lutaml/unibuf/internal/schema/capnp"
)

func testStructSchema(t *testing.T) *capnpschema.Schema {
	t.Helper()
	s := &capnpschema.Schema{
		FileID: "0xdeadbeefcafef00d",
		Structs: []*capnpschema.StructDef{
			{
				Name: "TestStruct",
				Fields: []*capnpschema.FieldDef{
					{Name: "value", Ordinal: 0, Type: capnpschema.FieldType{Kind: capnpschema.TypePrimitive, Name: capnpschema.UInt32}},
				},
			},
		},
	}
	require.NoError(t, s.Build())
	return s
}

func TestEncodeDecodeStructPrimitive(t *testing.T) {
	s := testStructSchema(t)
	msg := model.NewMessageTree()
	msg.Append("value", model.NewInt(42))

	buf, err := Encode(msg, s, "TestStruct")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(buf), 16)

	decoded, err := Decode(buf, s, "TestStruct")
	require.NoError(t, err)
	f, ok := decoded.FindField("value")
	require.True(t, ok)
	assert.EqualValues(t, 42, f.Value.Int)
}

func containerSchema(t *testing.T) *capnpschema.Schema {
	t.Helper()
	s := &capnpschema.Schema{
		FileID: "0xdeadbeefcafef00d",
		Structs: []*capnpschema.StructDef{
			{
				Name: "Container",
				Fields: []*capnpschema.FieldDef{
					{
						Name:    "numbers",
						Ordinal: 0,
						Type: capnpschema.FieldType{
							Kind:    capnpschema.TypeList,
							Element: &capnpschema.FieldType{Kind: capnpschema.TypePrimitive, Name: capnpschema.UInt32},
						},
					},
				},
			},
		},
	}
	require.NoError(t, s.Build())
	return s
}

func TestEncodeDecodeList(t *testing.T) {
	s := containerSchema(t)
	msg := model.NewMessageTree()
	msg.Append("numbers", model.NewList([]model.Value{
		model.NewInt(1), model.NewInt(2), model.NewInt(3), model.NewInt(4), model.NewInt(5),
	}))

	buf, err := Encode(msg, s, "Container")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Container")
	require.NoError(t, err)
	f, ok := decoded.FindField("numbers")
	require.True(t, ok)
	require.Len(t, f.Value.List, 5)
	for i, v := range f.Value.List {
		assert.EqualValues(t, i+1, v.Int)
	}
}

func TestEncodeDecodeEmptyListProducesNullOnReread(t *testing.T) {
	s := containerSchema(t)
	msg := model.NewMessageTree()
	msg.Append("numbers", model.NewList(nil))

	buf, err := Encode(msg, s, "Container")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Container")
	require.NoError(t, err)
	f, ok := decoded.FindField("numbers")
	require.True(t, ok)
	assert.Len(t, f.Value.List, 0)
}

func TestStructPointerRoundTrip(t *testing.T) {
	p := structPointer{offset: 1, dataWords: 2, ptrWords: 1}
	word := encodeStructPointer(p)
	got := decodeStructPointer(word)
	assert.Equal(t, p, got)
}

func TestListPointerRoundTrip(t *testing.T) {
	p := listPointer{offset: 2, elementSize: 5, elementCount: 10}
	word := encodeListPointer(p)
	got := decodeListPointer(word)
	assert.Equal(t, p, got)
}

func TestNullWordDecodesNull(t *testing.T) {
	assert.True(t, isNullPointer(0))
}

func TestDecodeRejectsOutOfBoundsOffset(t *testing.T) {
	s := testStructSchema(t)
	buf := encodeSingleSegment([]uint64{
		encodeStructPointer(structPointer{offset: 1000, dataWords: 1, ptrWords: 0}),
	})
	_, err := Decode(buf, s, "TestStruct")
	require.Error(t, err)
}

func textFieldSchema(t *testing.T) *capnpschema.Schema {
	t.Helper()
	s := &capnpschema.Schema{
		FileID: "0xdeadbeefcafef00d",
		Structs: []*capnpschema.StructDef{
			{
				Name: "Greeting",
				Fields: []*capnpschema.FieldDef{
					{Name: "message", Ordinal: 0, Type: capnpschema.FieldType{Kind: capnpschema.TypePrimitive, Name: capnpschema.Text}},
				},
			},
		},
	}
	require.NoError(t, s.Build())
	return s
}

func TestEncodeDecodeTextField(t *testing.T) {
	s := textFieldSchema(t)
	msg := model.NewMessageTree()
	msg.Append("message", model.NewString("hello capnp"))

	buf, err := Encode(msg, s, "Greeting")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Greeting")
	require.NoError(t, err)
	f, ok := decoded.FindField("message")
	require.True(t, ok)
	assert.Equal(t, "hello capnp", f.Value.Str)
}
