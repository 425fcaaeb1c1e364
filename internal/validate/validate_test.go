package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
	protoschema "github.com/lutaml/unibuf/internal/schema/proto"
)

func personSchema(t *testing.T) *protoschema.Schema {
	t.Helper()
	s := &protoschema.Schema{
		Messages: []*protoschema.MessageDef{
			{
				Name: "Person",
				Fields: []*protoschema.FieldDef{
					{Name: "name", Type: "string", Number: 1},
					{Name: "age", Type: "int32", Number: 2},
					{Name: "tags", Type: "string", Number: 3, Label: "repeated"},
				},
			},
		},
	}
	require.NoError(t, s.Build())
	return s
}

func TestValidateAcceptsWellTypedMessage(t *testing.T) {
	s := personSchema(t)
	msg := model.NewMessageTree()
	msg.Append("name", model.NewString("Ada"))
	msg.Append("age", model.NewInt(30))

	issues, err := Validate(msg, s, "Person")
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestValidateFlagsUnknownField(t *testing.T) {
	s := personSchema(t)
	msg := model.NewMessageTree()
	msg.Append("nickname", model.NewString("Ace"))

	issues, err := Validate(msg, s, "Person")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, "unknown field", issues[0].Message)
}

func TestValidateFlagsOutOfRangeInt32(t *testing.T) {
	s := personSchema(t)
	msg := model.NewMessageTree()
	msg.Append("age", model.NewInt(1<<40))

	issues, err := Validate(msg, s, "Person")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "out of range")
}

func TestValidateFlagsWrongScalarKind(t *testing.T) {
	s := personSchema(t)
	msg := model.NewMessageTree()
	msg.Append("name", model.NewInt(5))

	issues, err := Validate(msg, s, "Person")
	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "expected a string")
}

func TestValidateUnknownMessageTypeIsSchemaError(t *testing.T) {
	s := personSchema(t)
	_, err := Validate(model.NewMessageTree(), s, "Nonexistent")
	require.Error(t, err)
	var schemaErr *model.SchemaValidationError
	require.ErrorAs(t, err, &schemaErr)
}
