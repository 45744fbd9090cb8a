package retrieval

import (
	"strings"
	"unicode"
)

// minTokenLength is the shortest token kept after normalization.
const minTokenLength = 2

// Normalize lower-cases text, replaces punctuation with spaces, and collapses
// whitespace. Both query text and knowledge-base keywords go through the same
// convention so comparisons never fail on casing or stray punctuation.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Tokenize normalizes the query and splits it into scoring tokens: short
// tokens and stop-words are dropped, duplicates are preserved so term
// frequency still matters to overlap weighting.
func Tokenize(query string) []string {
	fields := strings.Fields(Normalize(query))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) < minTokenLength {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
