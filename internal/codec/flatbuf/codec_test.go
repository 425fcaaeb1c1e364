package flatbuf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
)

func monsterSchema(t *testing.T) *fbsschema.Schema {
	t.Helper()
	s := &fbsschema.Schema{
		Tables: []*fbsschema.TableDef{
			{
				Name: "Monster",
				Fields: []*fbsschema.FieldDef{
					{Name: "hp", Type: fbsschema.FieldType{Kind: fbsschema.TypeScalar, Name: "short"}},
					{Name: "name", Type: fbsschema.FieldType{Kind: fbsschema.TypeScalar, Name: "string"}},
				},
			},
		},
		RootType: "Monster",
	}
	require.NoError(t, s.Build())
	return s
}

func TestEncodeDecodeMonster(t *testing.T) {
	s := monsterSchema(t)
	msg := model.NewMessageTree()
	msg.Append("hp", model.NewInt(150))
	msg.Append("name", model.NewString("Orc"))

	buf, err := Encode(msg, s, "Monster")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Monster")
	require.NoError(t, err)

	hp, ok := decoded.FindField("hp")
	require.True(t, ok)
	assert.EqualValues(t, 150, hp.Value.Int)

	name, ok := decoded.FindField("name")
	require.True(t, ok)
	assert.Equal(t, "Orc", name.Value.Str)
}

func TestDecodeAbsentOptionalScalarUsesDefault(t *testing.T) {
	s := monsterSchema(t)
	msg := model.NewMessageTree()
	msg.Append("name", model.NewString("Goblin"))

	buf, err := Encode(msg, s, "Monster")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Monster")
	require.NoError(t, err)
	hp, ok := decoded.FindField("hp")
	require.True(t, ok)
	assert.EqualValues(t, 0, hp.Value.Int)
}

func TestEncodeDecodeVectorOfInts(t *testing.T) {
	s := &fbsschema.Schema{
		Tables: []*fbsschema.TableDef{
			{
				Name: "Inventory",
				Fields: []*fbsschema.FieldDef{
					{
						Name: "items",
						Type: fbsschema.FieldType{
							Kind:    fbsschema.TypeVector,
							Element: &fbsschema.FieldType{Kind: fbsschema.TypeScalar, Name: "ubyte"},
						},
					},
				},
			},
		},
	}
	require.NoError(t, s.Build())

	msg := model.NewMessageTree()
	msg.Append("items", model.NewList([]model.Value{model.NewInt(1), model.NewInt(2), model.NewInt(3)}))

	buf, err := Encode(msg, s, "Inventory")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Inventory")
	require.NoError(t, err)
	items, ok := decoded.FindField("items")
	require.True(t, ok)
	require.Len(t, items.Value.List, 3)
	assert.EqualValues(t, 2, items.Value.List[1].Int)
}

func TestEncodeUnknownRootType(t *testing.T) {
	s := &fbsschema.Schema{}
	require.NoError(t, s.Build())
	_, err := Encode(model.NewMessageTree(), s, "Nope")
	require.Error(t, err)
}
