package fbs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanAll(t *testing.T, source string) []Token {
	t.Helper()
	tokens, err := New(source, "t.fbs").ScanTokens()
	require.NoError(t, err)
	return tokens
}

func TestLexVectorFieldBrackets(t *testing.T) {
	tokens := scanAll(t, `items: [ubyte];`)
	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, TokenLBracket)
	assert.Contains(t, types, TokenRBracket)
}

func TestLexEnumWithValues(t *testing.T) {
	tokens := scanAll(t, `enum Color:byte { Red = 0, Green }`)
	var found bool
	for _, tok := range tokens {
		if tok.Type == TokenInt && tok.IntVal == 0 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLexFieldMetadataParens(t *testing.T) {
	tokens := scanAll(t, `x: int (deprecated);`)
	var types []TokenType
	for _, tok := range tokens {
		types = append(types, tok.Type)
	}
	assert.Contains(t, types, TokenLParen)
	assert.Contains(t, types, TokenRParen)
}
