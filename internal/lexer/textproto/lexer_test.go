package textproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
)

func scanAll(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := New(source, "t.txtpb").ScanTokens()
	require.NoError(t, err)
	return tokens
}

func TestLexIdentifiersAndColon(t *testing.T) {
	tokens := scanAll(t, `name: "Alice"`)
	require.Len(t, tokens, 4) // ident, colon, string, eof
	assert.Equal(t, TokenIdent, tokens[0].Type)
	assert.Equal(t, TokenColon, tokens[1].Type)
	assert.Equal(t, TokenString, tokens[2].Type)
	assert.Equal(t, "Alice", tokens[2].Lexeme)
}

func TestLexHexAndOctalIntegers(t *testing.T) {
	tokens := scanAll(t, `0x1A 017`)
	require.GreaterOrEqual(t, len(tokens), 2)
	assert.EqualValues(t, 26, tokens[0].IntVal)
	assert.EqualValues(t, 15, tokens[1].IntVal)
}

func TestLexFloatWithExponentAndSuffix(t *testing.T) {
	tokens := scanAll(t, `1.5e10f`)
	require.Equal(t, TokenFloat, tokens[0].Type)
	assert.InDelta(t, 1.5e10, tokens[0].FloatVal, 1)
}

func TestLexEscapedString(t *testing.T) {
	tokens := scanAll(t, `"a\nb\x41\101"`)
	require.Equal(t, TokenString, tokens[0].Type)
	assert.Equal(t, "a\nbAA", tokens[0].Lexeme)
}

func TestLexHashAndSlashComments(t *testing.T) {
	tokens := scanAll(t, "# comment\nname: 1 // trailing\n")
	assert.Equal(t, TokenIdent, tokens[0].Type)
}

func TestLexUnterminatedStringIsParseError(t *testing.T) {
	_, err := New(`"unterminated`, "t.txtpb").ScanTokens()
	require.Error(t, err)
	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "lexer", parseErr.Phase)
}
