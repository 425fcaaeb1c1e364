package textproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
)

func TestParseScalarFields(t *testing.T) {
	msg, err := Parse(`name: "Alice" age: 30 active: true score: 1.5`, "t.txtpb")
	require.NoError(t, err)
	require.Len(t, msg.Fields, 4)

	name, ok := msg.FindField("name")
	require.True(t, ok)
	assert.Equal(t, "Alice", name.Value.Str)

	age, ok := msg.FindField("age")
	require.True(t, ok)
	assert.EqualValues(t, 30, age.Value.Int)

	active, ok := msg.FindField("active")
	require.True(t, ok)
	assert.True(t, active.Value.Bool)
}

func TestParseNegativeNumber(t *testing.T) {
	msg, err := Parse(`delta: -17`, "t.txtpb")
	require.NoError(t, err)
	f, ok := msg.FindField("delta")
	require.True(t, ok)
	assert.EqualValues(t, -17, f.Value.Int)
}

func TestParseNestedMessage(t *testing.T) {
	msg, err := Parse(`address { city: "Springfield" zip: "00000" }`, "t.txtpb")
	require.NoError(t, err)
	f, ok := msg.FindField("address")
	require.True(t, ok)
	require.Equal(t, model.KindMessage, f.Value.Kind)
	city, ok := f.Value.Message.FindField("city")
	require.True(t, ok)
	assert.Equal(t, "Springfield", city.Value.Str)
}

func TestParseInlineScalarList(t *testing.T) {
	msg, err := Parse(`tags: ["a", "b", "c"]`, "t.txtpb")
	require.NoError(t, err)
	f, ok := msg.FindField("tags")
	require.True(t, ok)
	require.Len(t, f.Value.List, 3)
	assert.Equal(t, "b", f.Value.List[1].Str)
}

func TestParseAdjacentStringConcatenation(t *testing.T) {
	msg, err := Parse(`greeting: "hello " "world"`, "t.txtpb")
	require.NoError(t, err)
	f, ok := msg.FindField("greeting")
	require.True(t, ok)
	assert.Equal(t, "hello world", f.Value.Str)
}

func TestParseEnumIdentifierAsString(t *testing.T) {
	msg, err := Parse(`status: ACTIVE`, "t.txtpb")
	require.NoError(t, err)
	f, ok := msg.FindField("status")
	require.True(t, ok)
	assert.Equal(t, "ACTIVE", f.Value.Str)
}

func TestParseRequiresColonForScalar(t *testing.T) {
	_, err := Parse(`name "Alice"`, "t.txtpb")
	require.Error(t, err)
}

func TestParseMessageValueColonIsOptional(t *testing.T) {
	msg, err := Parse(`address: { city: "X" }`, "t.txtpb")
	require.NoError(t, err)
	_, ok := msg.FindField("address")
	require.True(t, ok)
}

func TestEmitRoundTripScalars(t *testing.T) {
	msg := model.NewMessageTree()
	msg.Append("name", model.NewString("Alice"))
	msg.Append("age", model.NewInt(30))

	out := Emit(msg)
	reparsed, err := Parse(out, "roundtrip.txtpb")
	require.NoError(t, err)
	assert.True(t, msg.Equal(reparsed))
}

func TestEmitEmptyListRendersBrackets(t *testing.T) {
	msg := model.NewMessageTree()
	msg.Append("tags", model.NewList(nil))
	assert.Contains(t, Emit(msg), "tags: []")
}

func TestEmitMapField(t *testing.T) {
	v, err := model.NewMap([]model.Value{model.NewString("k")}, []model.Value{model.NewInt(1)})
	require.NoError(t, err)
	msg := model.NewMessageTree()
	msg.AppendMap("counters", v)
	out := Emit(msg)
	assert.Contains(t, out, "key: \"k\"")
	assert.Contains(t, out, "value: 1")
}
