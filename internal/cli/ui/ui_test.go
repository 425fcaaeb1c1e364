package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSimilarSuggestsClosestType(t *testing.T) {
	candidates := []string{"Person", "Address", "Product"}
	got := FindSimilar("Persn", candidates, nil)
	assert.Equal(t, []string{"Person"}, got)
}

func TestLevenshteinDistanceKnownPairs(t *testing.T) {
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 0, LevenshteinDistance("Person", "Person"))
}

func TestTypeNotFoundErrorIncludesSuggestions(t *testing.T) {
	msg := TypeNotFoundError("Persn", "person.proto", []string{"Person"}, true)
	assert.Contains(t, msg, "TYPE NOT FOUND")
	assert.Contains(t, msg, "Did you mean: Person?")
}

func TestFormatSuccessIncludesMessage(t *testing.T) {
	msg := FormatSuccess("wrote 42 bytes", true)
	assert.Contains(t, msg, "wrote 42 bytes")
}
