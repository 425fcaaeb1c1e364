package capnp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := New(source, "t.capnp").ScanTokens()
	require.NoError(t, err)
	return tokens
}

func TestLexFileID(t *testing.T) {
	tokens := scanAll(t, `@0xdeadbeefcafef00d;`)
	require.GreaterOrEqual(t, len(tokens), 2)
	assert.Equal(t, TokenAt, tokens[0].Type)
	assert.Equal(t, TokenInt, tokens[1].Type)
	assert.Equal(t, "0xdeadbeefcafef00d", tokens[1].Lexeme)
}

func TestLexFieldDeclaration(t *testing.T) {
	tokens := scanAll(t, `name @0 :Text;`)
	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, TokenAt)
	assert.Contains(t, types, TokenColon)
}

func TestLexAnnotationToken(t *testing.T) {
	tokens := scanAll(t, `$foo("bar")`)
	assert.Equal(t, TokenDollar, tokens[0].Type)
}

func TestLexHashComment(t *testing.T) {
	tokens := scanAll(t, "# a comment\nfoo")
	assert.Equal(t, TokenIdent, tokens[0].Type)
	assert.Equal(t, "foo", tokens[0].Lexeme)
}
