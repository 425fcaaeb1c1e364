package fbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fbsschema "github.com/lutaml/unibuf/internal/schema/fbs"
)

func TestParseTableWithVectorAndDefault(t *testing.T) {
	source := `
namespace game.sample;

table Monster {
  hp: short = 100;
  name: string;
  inventory: [ubyte];
}

root_type Monster;
file_identifier "MONS";
`
	schema, err := Parse(source, "monster.fbs")
	require.NoError(t, err)
	assert.Equal(t, "game.sample", schema.Namespace)
	assert.Equal(t, "Monster", schema.RootType)
	assert.Equal(t, "MONS", schema.FileIdentifier)

	tbl, ok := schema.TableByName("Monster")
	require.True(t, ok)
	require.Len(t, tbl.Fields, 3)
	assert.Equal(t, "100", tbl.Fields[0].DefaultValue)
	assert.Equal(t, fbsschema.TypeVector, tbl.Fields[2].Type.Kind)
	assert.Equal(t, "ubyte", tbl.Fields[2].Type.Element.Name)
}

func TestParseEnumImplicitValues(t *testing.T) {
	source := `
enum Color:byte { Red = 0, Green, Blue }
`
	schema, err := Parse(source, "color.fbs")
	require.NoError(t, err)
	e, ok := schema.EnumByName("Color")
	require.True(t, ok)
	assert.EqualValues(t, 1, e.Values["Green"])
	assert.EqualValues(t, 2, e.Values["Blue"])
}

func TestParseUnionAndStruct(t *testing.T) {
	source := `
struct Vec3 {
  x: float;
  y: float;
  z: float;
}

table Monster {
  pos: Vec3;
}

table Weapon {
  name: string;
}

union Equipped { Monster, Weapon }
`
	schema, err := Parse(source, "u.fbs")
	require.NoError(t, err)
	u, ok := schema.UnionByName("Equipped")
	require.True(t, ok)
	assert.Equal(t, []string{"Monster", "Weapon"}, u.Members)

	st, ok := schema.StructByName("Vec3")
	require.True(t, ok)
	require.Len(t, st.Fields, 3)
}

func TestParseFieldMetadataAndDeprecated(t *testing.T) {
	source := `
table Item {
  legacy_id: int (deprecated);
  weight: float (key);
}
`
	schema, err := Parse(source, "item.fbs")
	require.NoError(t, err)
	tbl, ok := schema.TableByName("Item")
	require.True(t, ok)
	assert.True(t, tbl.Fields[0].Deprecated)
	_, hasKey := tbl.Fields[1].Metadata["key"]
	assert.True(t, hasKey)
}

func TestParseRejectsUnknownRootType(t *testing.T) {
	_, err := Parse(`root_type Nonexistent;`, "bad.fbs")
	require.Error(t, err)
}
