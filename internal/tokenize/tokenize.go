// Package tokenize splits sentences into lower-cased word and punctuation
// tokens.
package tokenize

import (
	"strings"
	"unicode"
)

// Tokenizer turns a sentence into a token sequence.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Words is a rule-based tokenizer: runs of letters and digits form words,
// every other non-space rune is its own token. A hyphen or apostrophe between
// two letters stays inside the word ("Europa-Parlamentet", "don't"), and a
// '.' or ',' between two digits stays inside the number ("1.000").
type Words struct {
	// KeepCase disables lower-casing.
	KeepCase bool
}

// Tokenize implements Tokenizer.
func (w Words) Tokenize(text string) []string {
	if !w.KeepCase {
		text = strings.ToLower(text)
	}
	runes := []rune(text)

	var (
		tokens []string
		cur    strings.Builder
	)
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}

	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r):
			cur.WriteRune(r)
		case unicode.IsSpace(r):
			flush()
		case joinsWord(runes, i):
			cur.WriteRune(r)
		default:
			flush()
			tokens = append(tokens, string(r))
		}
	}
	flush()
	return tokens
}

// joinsWord reports whether the separator at runes[i] sits inside a word.
func joinsWord(runes []rune, i int) bool {
	if i == 0 || i == len(runes)-1 {
		return false
	}
	prev, next := runes[i-1], runes[i+1]
	switch runes[i] {
	case '-', '\'', '’':
		return unicode.IsLetter(prev) && unicode.IsLetter(next)
	case '.', ',':
		return unicode.IsDigit(prev) && unicode.IsDigit(next)
	}
	return false
}

// Default is the tokenizer used for both languages.
var Default Tokenizer = Words{}

// All tokenizes every sentence with t.
func All(t Tokenizer, sentences []string) [][]string {
	out := make([][]string, len(sentences))
	for i, s := range sentences {
		out[i] = t.Tokenize(s)
	}
	return out
}
