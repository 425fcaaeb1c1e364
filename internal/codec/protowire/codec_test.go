package protowire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

func TestVarintRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 16384, 1<<63 - 1}
	for _, v := range cases {
		buf := AppendVarint(nil, v)
		got, n, err := ConsumeVarint(buf)
		require.NoError(t, err)
		assert.Equal(t, len(buf), n)
		assert.Equal(t, v, got)
	}
}

func TestConsumeVarintTruncated(t *testing.T) {
	_, _, err := ConsumeVarint([]byte{0x80, 0x80})
	require.Error(t, err)
	var pe *model.ParseError
	require.ErrorAs(t, err, &pe)
}

func TestZigZagRoundTrip(t *testing.T) {
	for _, n := range []int32{0, -1, 1, -2, 2, 2147483647, -2147483648} {
		assert.Equal(t, n, DecodeZigZag32(EncodeZigZag32(n)))
	}
	for _, n := range []int64{0, -1, 1, -2, 2} {
		assert.Equal(t, n, DecodeZigZag64(EncodeZigZag64(n)))
	}
}

func TestEncodeTagFieldNumber150(t *testing.T) {
	tag := EncodeTag(150, WireLen)
	buf := AppendVarint(nil, tag)
	fn, wt, err := func() (uint32, WireType, error) {
		v, n, err := ConsumeVarint(buf)
		if err != nil {
			return 0, 0, err
		}
		_ = n
		fieldNumber, wireType := DecodeTag(v)
		return fieldNumber, wireType, nil
	}()
	require.NoError(t, err)
	assert.EqualValues(t, 150, fn)
	assert.Equal(t, WireLen, wt)
}

func personAddressSchema(t *testing.T) *protoschema.Schema {
	t.Helper()
	s := &protoschema.Schema{
		Syntax: "proto3",
		Messages: []*protoschema.MessageDef{
			{
				Name: "Address",
				Fields: []*protoschema.FieldDef{
					{Name: "street", Type: "string", Number: 1},
					{Name: "zip", Type: "string", Number: 2},
				},
			},
			{
				Name: "Person",
				Fields: []*protoschema.FieldDef{
					{Name: "name", Type: "string", Number: 1},
					{Name: "id", Type: "int32", Number: 2},
					{Name: "address", Type: "Address", Number: 3},
					{Name: "tags", Type: "string", Number: 4, Label: "repeated"},
				},
			},
		},
	}
	require.NoError(t, s.Build())
	return s
}

func TestEncodeDecodeStringFieldHello(t *testing.T) {
	s := &protoschema.Schema{
		Messages: []*protoschema.MessageDef{
			{
				Name: "Greeting",
				Fields: []*protoschema.FieldDef{
					{Name: "text", Type: "string", Number: 1},
				},
			},
		},
	}
	require.NoError(t, s.Build())

	msg := model.NewMessageTree()
	msg.Append("text", model.NewString("hello"))

	buf, err := Encode(msg, s, "Greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x0a, 0x05, 'h', 'e', 'l', 'l', 'o'}, buf)

	decoded, err := Decode(buf, s, "Greeting")
	require.NoError(t, err)
	f, ok := decoded.FindField("text")
	require.True(t, ok)
	assert.Equal(t, "hello", f.Value.Str)
}

func TestEncodeDecodePersonAddressRoundTrip(t *testing.T) {
	s := personAddressSchema(t)

	addr := model.NewMessageTree()
	addr.Append("street", model.NewString("1 Infinite Loop"))
	addr.Append("zip", model.NewString("95014"))

	person := model.NewMessageTree()
	person.Append("name", model.NewString("Ada"))
	person.Append("id", model.NewInt(42))
	person.Append("address", model.NewMessage(addr))
	person.Append("tags", model.NewString("engineer"))
	person.Append("tags", model.NewString("lovelace"))

	buf, err := Encode(person, s, "Person")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Person")
	require.NoError(t, err)

	nameF, ok := decoded.FindField("name")
	require.True(t, ok)
	assert.Equal(t, "Ada", nameF.Value.Str)

	idF, ok := decoded.FindField("id")
	require.True(t, ok)
	assert.EqualValues(t, 42, idF.Value.Int)

	addrF, ok := decoded.FindField("address")
	require.True(t, ok)
	streetF, ok := addrF.Value.Message.FindField("street")
	require.True(t, ok)
	assert.Equal(t, "1 Infinite Loop", streetF.Value.Str)

	tagFields := decoded.FindFields("tags")
	require.Len(t, tagFields, 2)
	assert.Equal(t, "engineer", tagFields[0].Value.Str)
	assert.Equal(t, "lovelace", tagFields[1].Value.Str)
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	s := &protoschema.Schema{
		Messages: []*protoschema.MessageDef{
			{Name: "V1", Fields: []*protoschema.FieldDef{{Name: "a", Type: "int32", Number: 1}}},
		},
	}
	require.NoError(t, s.Build())

	var buf []byte
	buf = AppendVarint(buf, EncodeTag(1, WireVarint))
	buf = AppendVarint(buf, 7)
	buf = AppendVarint(buf, EncodeTag(99, WireVarint))
	buf = AppendVarint(buf, 123456)

	decoded, err := Decode(buf, s, "V1")
	require.NoError(t, err)
	assert.Equal(t, 1, decoded.FieldCount())
	f, ok := decoded.FindField("a")
	require.True(t, ok)
	assert.EqualValues(t, 7, f.Value.Int)
}

func TestEncodeDecodeMapField(t *testing.T) {
	s := &protoschema.Schema{
		Messages: []*protoschema.MessageDef{
			{
				Name: "Config",
				Fields: []*protoschema.FieldDef{
					{Name: "labels", Type: "map", Number: 1, KeyType: "string", ValueType: "string"},
				},
			},
		},
	}
	require.NoError(t, s.Build())

	mapVal, err := model.NewMap(
		[]model.Value{model.NewString("env")},
		[]model.Value{model.NewString("prod")},
	)
	require.NoError(t, err)

	msg := model.NewMessageTree()
	msg.AppendMap("labels", mapVal)

	buf, err := Encode(msg, s, "Config")
	require.NoError(t, err)

	decoded, err := Decode(buf, s, "Config")
	require.NoError(t, err)
	f, ok := decoded.FindField("labels")
	require.True(t, ok)
	require.True(t, f.IsMap)
	require.Len(t, f.Value.MapKeys, 1)
	assert.Equal(t, "env", f.Value.MapKeys[0].Str)
	assert.Equal(t, "prod", f.Value.MapValues[0].Str)
}

func TestEncodeUnknownMessageType(t *testing.T) {
	s := &protoschema.Schema{}
	require.NoError(t, s.Build())
	_, err := Encode(model.NewMessageTree(), s, "Nope")
	require.Error(t, err)
	var se *model.SerializationError
	require.ErrorAs(t, err, &se)
}

func TestEncodeUnknownEnumValueCoercionError(t *testing.T) {
	status := protoschema.NewEnumDef("Status")
	status.AddValue("ACTIVE", 0)
	status.AddValue("INACTIVE", 1)

	s := &protoschema.Schema{
		Enums: []*protoschema.EnumDef{status},
		Messages: []*protoschema.MessageDef{{
			Name: "Account",
			Fields: []*protoschema.FieldDef{
				{Name: "status", Type: "Status", Number: 1},
			},
		}},
	}
	require.NoError(t, s.Build())

	msg := model.NewMessageTree()
	msg.Append("status", model.NewString("BOGUS"))

	_, err := Encode(msg, s, "Account")
	require.Error(t, err)
	var tce *model.TypeCoercionError
	require.ErrorAs(t, err, &tce)
	assert.Equal(t, "BOGUS", tce.Value)
	assert.Equal(t, "enum Status", tce.To)
}
