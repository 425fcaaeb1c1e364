package proto3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lutaml/unibuf/internal/model"
)

func scanAll(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := New(source, "t.proto").ScanTokens()
	require.NoError(t, err)
	return tokens
}

func TestLexMessageDeclaration(t *testing.T) {
	tokens := scanAll(t, `message Person { string name = 1; }`)
	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, TokenLBrace)
	assert.Contains(t, types, TokenEquals)
	assert.Equal(t, TokenEOF, tokens[len(tokens)-1].Type)
}

func TestLexLineAndBlockComments(t *testing.T) {
	tokens := scanAll(t, "// line\nmessage /* block */ Foo {}")
	require.NotEmpty(t, tokens)
	assert.Equal(t, TokenIdent, tokens[0].Type)
	assert.Equal(t, "message", tokens[0].Lexeme)
}

func TestLexNegativeEnumNumber(t *testing.T) {
	tokens := scanAll(t, `A = -1;`)
	var found bool
	for _, tok := range tokens {
		if tok.Type == TokenInt && tok.IntVal == -1 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLexUnterminatedBlockCommentFails(t *testing.T) {
	_, err := New("/* never closes", "t.proto").ScanTokens()
	require.Error(t, err)
	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "lexer", parseErr.Phase)
}
