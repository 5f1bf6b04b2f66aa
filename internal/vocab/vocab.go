// Package vocab maps tokens to integer ids and back.
package vocab

import "fmt"

// Reserved tokens, always present at ids 0-3.
const (
	PadToken = "<pad>"
	SOSToken = "<sos>"
	EOSToken = "<eos>"
	UNKToken = "<unk>"
)

// Reserved ids.
const (
	PadID = 0
	SOSID = 1
	EOSID = 2
	UNKID = 3
)

// Specials lists the reserved tokens in id order.
var Specials = []string{PadToken, SOSToken, EOSToken, UNKToken}

// Vocabulary is an immutable token/id table.
type Vocabulary struct {
	itos []string
	stoi map[string]int
}

// Build counts tokens across sentences and admits every token seen at least
// minFreq times, in first-seen order, after the reserved entries.
func Build(sentences [][]string, minFreq int) *Vocabulary {
	counts := make(map[string]int)
	var order []string
	for _, sent := range sentences {
		for _, tok := range sent {
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}

	tokens := make([]string, 0, len(order))
	for _, tok := range order {
		if counts[tok] >= minFreq {
			tokens = append(tokens, tok)
		}
	}
	v, _ := newVocabulary(tokens)
	return v
}

// FromTokens builds a vocabulary from an explicit token list. The list must
// start with the reserved tokens in id order and hold no duplicates.
func FromTokens(tokens []string) (*Vocabulary, error) {
	if len(tokens) < len(Specials) {
		return nil, fmt.Errorf("vocabulary needs at least %d tokens, got %d", len(Specials), len(tokens))
	}
	for i, s := range Specials {
		if tokens[i] != s {
			return nil, fmt.Errorf("token %d must be %q, got %q", i, s, tokens[i])
		}
	}
	return newVocabulary(tokens[len(Specials):])
}

// newVocabulary prepends the reserved tokens to tokens. A token equal to a
// reserved one keeps its reserved id.
func newVocabulary(tokens []string) (*Vocabulary, error) {
	v := &Vocabulary{
		itos: make([]string, 0, len(Specials)+len(tokens)),
		stoi: make(map[string]int, len(Specials)+len(tokens)),
	}
	for _, tok := range Specials {
		v.stoi[tok] = len(v.itos)
		v.itos = append(v.itos, tok)
	}
	for _, tok := range tokens {
		if id, ok := v.stoi[tok]; ok {
			if id < len(Specials) {
				continue
			}
			return nil, fmt.Errorf("duplicate token %q", tok)
		}
		v.stoi[tok] = len(v.itos)
		v.itos = append(v.itos, tok)
	}
	return v, nil
}

// Len returns the number of entries including the reserved ones.
func (v *Vocabulary) Len() int {
	return len(v.itos)
}

// ID returns the id of tok, or UNKID when it is not in the vocabulary.
func (v *Vocabulary) ID(tok string) int {
	if id, ok := v.stoi[tok]; ok {
		return id
	}
	return UNKID
}

// Contains reports whether tok has its own entry.
func (v *Vocabulary) Contains(tok string) bool {
	_, ok := v.stoi[tok]
	return ok
}

// Token returns the token for id, or UNKToken when id is out of range.
func (v *Vocabulary) Token(id int) string {
	if id < 0 || id >= len(v.itos) {
		return UNKToken
	}
	return v.itos[id]
}

// Encode maps tokens to ids without adding markers.
func (v *Vocabulary) Encode(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = v.ID(tok)
	}
	return ids
}

// EncodeWithMarkers maps tokens to ids wrapped in <sos> ... <eos>.
func (v *Vocabulary) EncodeWithMarkers(tokens []string) []int {
	ids := make([]int, 0, len(tokens)+2)
	ids = append(ids, SOSID)
	for _, tok := range tokens {
		ids = append(ids, v.ID(tok))
	}
	return append(ids, EOSID)
}

// Decode maps ids back to tokens.
func (v *Vocabulary) Decode(ids []int) []string {
	tokens := make([]string, len(ids))
	for i, id := range ids {
		tokens[i] = v.Token(id)
	}
	return tokens
}

// Tokens returns a copy of the id-ordered token list.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.itos...)
}
