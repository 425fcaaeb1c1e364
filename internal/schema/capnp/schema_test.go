package capnp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaBuildRequiresFileID(t *testing.T) {
	s := &Schema{}
	require.Error(t, s.Build())
}

func TestSchemaBuildRejectsDuplicateOrdinals(t *testing.T) {
	s := &Schema{
		FileID: "0xabc123",
		Structs: []*StructDef{
			{
				Name: "Point",
				Fields: []*FieldDef{
					{Name: "x", Ordinal: 0, Type: FieldType{Kind: TypePrimitive, Name: Int32}},
					{Name: "y", Ordinal: 0, Type: FieldType{Kind: TypePrimitive, Name: Int32}},
				},
			},
		},
	}
	require.Error(t, s.Build())
}

func TestSchemaBuildRejectsUnionWithOneField(t *testing.T) {
	s := &Schema{
		FileID: "0xabc123",
		Structs: []*StructDef{
			{
				Name: "Shape",
				Unions: []*Union{
					{Name: "shape", Fields: []*FieldDef{{Name: "circle", Ordinal: 0}}},
				},
			},
		},
	}
	require.Error(t, s.Build())
}

func TestSchemaBuildOK(t *testing.T) {
	s := &Schema{
		FileID: "0xabc123",
		Structs: []*StructDef{
			{
				Name: "TestStruct",
				Fields: []*FieldDef{
					{Name: "value", Ordinal: 0, Type: FieldType{Kind: TypePrimitive, Name: UInt32}},
				},
			},
		},
	}
	require.NoError(t, s.Build())
	st, ok := s.StructByName("TestStruct")
	require.True(t, ok)
	require.Len(t, st.Fields, 1)
}
