package seq2seq

import (
	"strings"

	"github.com/FlavioCFOliveira/GoTranslate/internal/tokenize"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
	"gonum.org/v1/gonum/floats"
)

// DefaultMaxLen caps the number of greedy decode steps.
const DefaultMaxLen = 50

// Translator runs greedy decoding with a trained model.
type Translator struct {
	model     *Model
	tokenizer tokenize.Tokenizer
	src       *vocab.Vocabulary
	trg       *vocab.Vocabulary
	maxLen    int
}

// NewTranslator creates a translator. A non-positive maxLen uses
// DefaultMaxLen.
func NewTranslator(model *Model, tok tokenize.Tokenizer, src, trg *vocab.Vocabulary, maxLen int) *Translator {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Translator{model: model, tokenizer: tok, src: src, trg: trg, maxLen: maxLen}
}

// Translation is the result of decoding one sentence.
type Translation struct {
	// Source is the tokenized input without markers.
	Source []string
	// SourceIDs is the encoded input including <sos> and <eos>.
	SourceIDs []int
	// Tokens are the emitted tokens; a final <eos> is kept when produced.
	Tokens []string
	IDs    []int
	// Attention holds one distribution over SourceIDs per emitted token.
	Attention [][]float64
}

// Text joins the emitted tokens, leaving out <eos>.
func (t Translation) Text() string {
	words := make([]string, 0, len(t.Tokens))
	for _, tok := range t.Tokens {
		if tok == vocab.EOSToken {
			continue
		}
		words = append(words, tok)
	}
	return strings.Join(words, " ")
}

// Translate tokenizes and encodes sentence, then decodes greedily.
func (tr *Translator) Translate(sentence string) Translation {
	tokens := tr.tokenizer.Tokenize(sentence)
	srcIDs := tr.src.EncodeWithMarkers(tokens)
	ids, attention := tr.Greedy(srcIDs)
	return Translation{
		Source:    tokens,
		SourceIDs: srcIDs,
		Tokens:    tr.trg.Decode(ids),
		IDs:       ids,
		Attention: attention,
	}
}

// Greedy decodes from <sos>, feeding back the argmax of every step, until
// <eos> is produced or maxLen steps have run.
func (tr *Translator) Greedy(srcIDs []int) ([]int, [][]float64) {
	m := tr.model
	encOut, state, _ := m.encoder.Forward(srcIDs, false)
	mask := m.Mask(srcIDs)

	var (
		ids       []int
		attention [][]float64
	)
	input := vocab.SOSID
	for i := 0; i < tr.maxLen; i++ {
		step, _ := m.decoder.Step(input, state, encOut, mask, false)
		pred := floats.MaxIdx(step.Logits)
		ids = append(ids, pred)
		attention = append(attention, step.Attention)
		if pred == vocab.EOSID {
			break
		}
		input = pred
		state = step.State
	}
	return ids, attention
}

// MaxLen returns the decode step cap.
func (tr *Translator) MaxLen() int {
	return tr.maxLen
}
