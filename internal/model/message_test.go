package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageDuplicateFields(t *testing.T) {
	m := NewMessageTree()
	m.Append("subsets", NewString("latin"))
	m.Append("subsets", NewString("cyrillic"))

	assert.Equal(t, 2, m.FieldCount())
	matches := m.FindFields("subsets")
	require.Len(t, matches, 2)
	assert.Equal(t, "latin", matches[0].Value.Str)
	assert.Equal(t, "cyrillic", matches[1].Value.Str)

	assert.Equal(t, []string{"subsets"}, m.FieldNames())
}

func TestMessageEqualityIsOrderSensitive(t *testing.T) {
	a := NewMessageTree()
	a.Append("name", NewString("Alice"))
	a.Append("age", NewInt(30))

	b := NewMessageTree()
	b.Append("age", NewInt(30))
	b.Append("name", NewString("Alice"))

	assert.False(t, a.Equal(b), "differently ordered fields must not compare equal")

	c := NewMessageTree()
	c.Append("name", NewString("Alice"))
	c.Append("age", NewInt(30))
	assert.True(t, a.Equal(c))
}

func TestNewMapRequiresMatchingLengths(t *testing.T) {
	_, err := NewMap([]Value{NewString("a")}, nil)
	require.Error(t, err)
	var invalid *InvalidValueError
	assert.ErrorAs(t, err, &invalid)
}

func TestToH(t *testing.T) {
	m := NewMessageTree()
	m.Append("name", NewString("Bob"))
	addr := NewMessageTree()
	addr.Append("city", NewString("SF"))
	m.Append("address", NewMessage(addr))
	m.Append("tags", NewString("a"))
	m.Append("tags", NewString("b"))

	h := m.ToH()
	assert.Equal(t, "Bob", h["name"])
	assert.Equal(t, map[string]any{"city": "SF"}, h["address"])
	assert.Equal(t, []any{"a", "b"}, h["tags"])
}
