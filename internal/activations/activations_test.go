// Package activations provides unit tests for activation functions.
package activations

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSigmoid tests Sigmoid activation.
func TestSigmoid(t *testing.T) {
	sigmoid := Sigmoid{}

	tests := []struct {
		input    float64
		expected float64
	}{
		{math.Inf(-1), 0.0}, // -inf -> 0
		{-2.0, 1 / (1 + math.Exp(2))},
		{0.0, 0.5},
		{2.0, 1 / (1 + math.Exp(-2))},
		{math.Inf(1), 1.0}, // +inf -> 1
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.expected, sigmoid.Activate(tt.input), 1e-12, "Sigmoid(%v)", tt.input)
	}
}

// TestDerivativesMatchFiniteDifference checks Derivative against a central difference.
func TestDerivativesMatchFiniteDifference(t *testing.T) {
	acts := map[string]Activation{
		"sigmoid": Sigmoid{},
		"tanh":    Tanh{},
	}
	const h = 1e-6

	for name, act := range acts {
		t.Run(name, func(t *testing.T) {
			for _, x := range []float64{-3, -0.5, 0, 0.7, 2.5} {
				numeric := (act.Activate(x+h) - act.Activate(x-h)) / (2 * h)
				assert.InDelta(t, numeric, act.Derivative(x), 1e-6, "x=%v", x)
			}
		})
	}
}

// TestSoftmax tests normalization and stability with large inputs.
func TestSoftmax(t *testing.T) {
	out := Softmax([]float64{1000, 1001, 1002})
	require.Len(t, out, 3)

	sum := 0.0
	for _, v := range out {
		assert.False(t, math.IsNaN(v))
		sum += v
	}
	assert.InDelta(t, 1.0, sum, 1e-12)
	assert.Greater(t, out[2], out[1])
	assert.Greater(t, out[1], out[0])

	assert.Empty(t, Softmax(nil))
}

// TestMaskedSoftmax tests that masked positions receive no probability mass.
func TestMaskedSoftmax(t *testing.T) {
	scores := []float64{0.3, 2.0, -1.0, 5.0}
	mask := []bool{true, true, true, false}

	out := MaskedSoftmax(scores, mask)

	assert.InDelta(t, 0.0, out[3], 1e-12)
	assert.InDelta(t, 1.0, out[0]+out[1]+out[2], 1e-12)

	want := Softmax(scores[:3])
	for i := range want {
		assert.InDelta(t, want[i], out[i], 1e-12)
	}

	assert.Equal(t, Softmax(scores), MaskedSoftmax(scores, nil))
	assert.Panics(t, func() { MaskedSoftmax(scores, []bool{true}) })
}

// TestSoftmaxBackward compares the analytic Jacobian-vector product with a numeric one.
func TestSoftmaxBackward(t *testing.T) {
	x := []float64{0.1, -0.4, 1.2}
	dy := []float64{0.5, -1.0, 0.25}
	const h = 1e-6

	analytic := SoftmaxBackward(Softmax(x), dy)

	for j := range x {
		plus := append([]float64(nil), x...)
		minus := append([]float64(nil), x...)
		plus[j] += h
		minus[j] -= h
		yp, ym := Softmax(plus), Softmax(minus)
		numeric := 0.0
		for k := range dy {
			numeric += dy[k] * (yp[k] - ym[k]) / (2 * h)
		}
		assert.InDelta(t, numeric, analytic[j], 1e-6)
	}
}

// TestLogSoftmaxAt tests LogSoftmaxAt against log(Softmax).
func TestLogSoftmaxAt(t *testing.T) {
	x := []float64{2, 1, 0.1}
	sm := Softmax(x)
	for i := range x {
		assert.InDelta(t, math.Log(sm[i]), LogSoftmaxAt(x, i), 1e-12)
	}
}

// TestApply tests element-wise application.
func TestApply(t *testing.T) {
	out := Apply(Tanh{}, []float64{0, 1})
	assert.InDelta(t, 0.0, out[0], 1e-12)
	assert.InDelta(t, math.Tanh(1), out[1], 1e-12)
}
