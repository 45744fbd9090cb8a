package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Accidents at blind-curve!", "accidents at blind curve"},
		{"  Poor   lighting,  dark stretch ", "poor lighting dark stretch"},
		{"IRC 67", "irc 67"},
		{"???", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), tt.in)
	}
}

func TestTokenize_DropsStopWordsAndShortTokens(t *testing.T) {
	tokens := Tokenize("Accidents at the blind curve due to missing chevron signs")

	// "at", "the", "due", "to" are stop-words; everything else survives.
	assert.Equal(t, []string{"accidents", "blind", "curve", "missing", "chevron", "signs"}, tokens)
}

func TestTokenize_KeepsDomainTerms(t *testing.T) {
	// Road-safety vocabulary must never be treated as noise.
	tokens := Tokenize("curve signs lighting crossing")
	assert.Equal(t, []string{"curve", "signs", "lighting", "crossing"}, tokens)
}

func TestTokenize_PreservesDuplicates(t *testing.T) {
	tokens := Tokenize("potholes and more potholes")
	assert.Equal(t, []string{"potholes", "more", "potholes"}, tokens)
}

func TestTokenize_Empty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   "))
	assert.Empty(t, Tokenize("the at to and"))
	assert.Empty(t, Tokenize("a I"))
}
