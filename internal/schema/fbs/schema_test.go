package fbs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSchemaBuildRequiresRootTableToExist(t *testing.T) {
	s := &Schema{RootType: "Monster"}
	require.Error(t, s.Build())
}

func TestSchemaBuildRejectsVectorStructField(t *testing.T) {
	s := &Schema{
		Structs: []*StructDef{
			{
				Name: "Vec3",
				Fields: []*FieldDef{
					{Name: "items", Type: FieldType{Kind: TypeVector, Element: &FieldType{Kind: TypeScalar, Name: "int"}}},
				},
			},
		},
	}
	require.Error(t, s.Build())
}

func TestSchemaBuildOK(t *testing.T) {
	s := &Schema{
		Tables: []*TableDef{
			{
				Name: "Monster",
				Fields: []*FieldDef{
					{Name: "hp", Type: FieldType{Kind: TypeScalar, Name: "int"}},
					{Name: "name", Type: FieldType{Kind: TypeScalar, Name: "string"}},
				},
			},
		},
		RootType: "Monster",
	}
	require.NoError(t, s.Build())
	tbl, ok := s.RootTable()
	require.True(t, ok)
	require.Equal(t, "Monster", tbl.Name)
}
