// Package tokenizer normalises raw text into terms for the vector-space
// engine. It lower-cases input, treats punctuation and symbol runes as
// separators, and splits on whitespace. No stemming or stop-word removal is
// applied: ranking relies on raw term statistics, and common terms are
// discounted by IDF weighting instead.
package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenize breaks text into an ordered slice of lowercased terms. Duplicates
// are retained and ordering follows the source text. Pure function: output
// depends on the input alone.
func Tokenize(text string) []string {
	text = strings.ToLower(text)
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

// FrequencyMap tokenizes text and counts the occurrences of each term.
// The sum of all counts equals the token count of the text.
func FrequencyMap(text string) map[string]int {
	tokens := Tokenize(text)
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}
