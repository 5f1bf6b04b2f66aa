package layer

import (
	"math"

	"github.com/FlavioCFOliveira/GoTranslate/internal/activations"
)

// Attention implements additive (Bahdanau-style) attention.
//
// For a query h and encoder outputs e_1..e_S it computes
//
//	energy_j = tanh(W [h; e_j] + b)
//	score_j  = v . energy_j
//	a        = softmax(score) with masked positions forced to -1e10
//
// The weights are recomputed on every call; nothing is cached between
// decode steps.
type Attention struct {
	hidden int

	attn *Linear // [2*hidden -> hidden], with bias
	v    *Linear // [hidden -> 1], no bias
}

// AttentionCache holds the values of one Forward call needed by Backward.
type AttentionCache struct {
	inputs  [][]float64 // [h; e_j] per valid position, nil when masked
	energy  [][]float64 // tanh activations per valid position
	weights []float64
}

// NewAttention creates an attention scorer over hidden-sized states.
func NewAttention(name string, hidden int, rng *RNG) *Attention {
	return &Attention{
		hidden: hidden,
		attn:   NewLinear(name+".attn", 2*hidden, hidden, true, rng),
		v:      NewLinear(name+".v", hidden, 1, false, rng),
	}
}

// Forward scores every encoder output against hidden and returns the
// attention distribution over source positions. mask marks valid positions;
// a nil mask keeps them all.
func (a *Attention) Forward(hidden []float64, encoder [][]float64, mask []bool) ([]float64, *AttentionCache) {
	srcLen := len(encoder)
	if mask != nil && len(mask) != srcLen {
		panic("Attention: mask and encoder outputs must have same length")
	}

	cache := &AttentionCache{
		inputs: make([][]float64, srcLen),
		energy: make([][]float64, srcLen),
	}

	scores := make([]float64, srcLen)
	for j, enc := range encoder {
		if mask != nil && !mask[j] {
			// Score is irrelevant: MaskedSoftmax overwrites it.
			continue
		}
		in := make([]float64, 0, 2*a.hidden)
		in = append(in, hidden...)
		in = append(in, enc...)

		energy := a.attn.Forward(in)
		for k := range energy {
			energy[k] = math.Tanh(energy[k])
		}
		scores[j] = a.v.Forward(energy)[0]

		cache.inputs[j] = in
		cache.energy[j] = energy
	}

	cache.weights = activations.MaskedSoftmax(scores, mask)
	return cache.weights, cache
}

// Backward takes dL/dweights and returns dL/dhidden and dL/dencoder (one row
// per source position; masked rows are zero).
func (a *Attention) Backward(cache *AttentionCache, dWeights []float64) ([]float64, [][]float64) {
	srcLen := len(cache.weights)
	dScores := activations.SoftmaxBackward(cache.weights, dWeights)

	dHidden := make([]float64, a.hidden)
	dEncoder := make([][]float64, srcLen)
	for j := 0; j < srcLen; j++ {
		if cache.inputs[j] == nil {
			dEncoder[j] = make([]float64, a.hidden)
			continue
		}

		dEnergy := a.v.Backward(cache.energy[j], []float64{dScores[j]})
		for k, e := range cache.energy[j] {
			dEnergy[k] *= 1 - e*e
		}
		dIn := a.attn.Backward(cache.inputs[j], dEnergy)

		for k := 0; k < a.hidden; k++ {
			dHidden[k] += dIn[k]
		}
		dEncoder[j] = dIn[a.hidden:]
	}
	return dHidden, dEncoder
}

// Weights returns the attention distribution computed by Forward.
func (c *AttentionCache) Weights() []float64 {
	return c.weights
}

// Params returns W, b and v.
func (a *Attention) Params() []*Param {
	return append(a.attn.Params(), a.v.Params()...)
}

// Hidden returns the state size the scorer expects.
func (a *Attention) Hidden() int {
	return a.hidden
}
