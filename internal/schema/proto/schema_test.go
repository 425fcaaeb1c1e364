package proto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaBuildRejectsDuplicateFieldNumbers(t *testing.T) {
	s := &Schema{
		Syntax: "proto3",
		Messages: []*MessageDef{
			{
				Name: "Person",
				Fields: []*FieldDef{
					{Name: "name", Type: "string", Number: 1},
					{Name: "alias", Type: "string", Number: 1},
				},
			},
		},
	}
	err := s.Build()
	require.Error(t, err)
}

func TestSchemaBuildResolvesNestedMessageByName(t *testing.T) {
	s := &Schema{
		Syntax: "proto3",
		Messages: []*MessageDef{
			{
				Name: "Person",
				Fields: []*FieldDef{
					{Name: "name", Type: "string", Number: 1},
					{Name: "address", Type: "Address", Number: 2},
				},
			},
			{
				Name: "Address",
				Fields: []*FieldDef{
					{Name: "city", Type: "string", Number: 1},
				},
			},
		},
	}
	require.NoError(t, s.Build())

	m, ok := s.MessageByName("Person")
	require.True(t, ok)
	assert.Equal(t, "Person", m.Name)

	_, ok = s.MessageByName("Address")
	assert.True(t, ok)
}

func TestSchemaBuildRejectsUnresolvableType(t *testing.T) {
	s := &Schema{
		Messages: []*MessageDef{
			{Name: "Person", Fields: []*FieldDef{{Name: "x", Type: "Ghost", Number: 1}}},
		},
	}
	require.Error(t, s.Build())
}
