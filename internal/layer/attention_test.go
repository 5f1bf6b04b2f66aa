package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoderOutputs(rng *RNG, srcLen, hidden int) [][]float64 {
	enc := make([][]float64, srcLen)
	for j := range enc {
		enc[j] = randomVec(rng, hidden)
	}
	return enc
}

// TestAttentionDistribution tests that weights sum to one over valid
// positions and leave masked positions empty.
func TestAttentionDistribution(t *testing.T) {
	rng := NewRNG(11)
	a := NewAttention("attn", 4, rng)
	enc := encoderOutputs(rng, 5, 4)
	mask := []bool{true, true, true, false, false}

	weights, cache := a.Forward(randomVec(rng, 4), enc, mask)

	require.Len(t, weights, 5)
	assert.Equal(t, weights, cache.Weights())
	sum := 0.0
	for j, w := range weights {
		if mask[j] {
			assert.Greater(t, w, 0.0)
			sum += w
		} else {
			assert.Less(t, w, 1e-12)
		}
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

// TestAttentionNilMask tests that every position is scored without a mask.
func TestAttentionNilMask(t *testing.T) {
	rng := NewRNG(12)
	a := NewAttention("attn", 3, rng)
	weights, _ := a.Forward(randomVec(rng, 3), encoderOutputs(rng, 4, 3), nil)

	sum := 0.0
	for _, w := range weights {
		assert.Greater(t, w, 0.0)
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

// TestAttentionMaskLengthMismatch tests shape validation.
func TestAttentionMaskLengthMismatch(t *testing.T) {
	rng := NewRNG(13)
	a := NewAttention("attn", 2, rng)
	assert.Panics(t, func() {
		a.Forward(randomVec(rng, 2), encoderOutputs(rng, 3, 2), []bool{true})
	})
}

// TestAttentionGradients checks Backward against finite differences for the
// parameters, the query and every encoder output.
func TestAttentionGradients(t *testing.T) {
	rng := NewRNG(14)
	a := NewAttention("attn", 3, rng)
	hidden := randomVec(rng, 3)
	enc := encoderOutputs(rng, 4, 3)
	mask := []bool{true, true, true, false}
	r := randomVec(rng, 4)

	loss := func() float64 {
		w, _ := a.Forward(hidden, enc, mask)
		return weightedSum(r, w)
	}

	_, cache := a.Forward(hidden, enc, mask)
	dHidden, dEnc := a.Backward(cache, r)

	checkParamGrads(t, a.Params(), loss)
	checkInputGrad(t, "hidden", hidden, dHidden, loss)
	for j := range enc {
		checkInputGrad(t, "enc", enc[j], dEnc[j], loss)
	}
	assert.Equal(t, []float64{0, 0, 0}, dEnc[3])
}
