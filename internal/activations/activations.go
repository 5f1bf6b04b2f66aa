// Package activations provides activation functions used by the recurrent
// and attention layers.
package activations

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MaskValue is the score forced onto masked positions before a softmax.
const MaskValue = -1e10

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64
}

// Sigmoid activation function.
type Sigmoid struct{}

// sigmoid computes the sigmoid function
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// Activate computes sigmoid(x)
func (s Sigmoid) Activate(x float64) float64 {
	return sigmoid(x)
}

// Derivative computes sigmoid(x) * (1 - sigmoid(x))
func (s Sigmoid) Derivative(x float64) float64 {
	sigma := sigmoid(x)
	return sigma * (1 - sigma)
}

// Tanh activation function.
type Tanh struct{}

// Activate computes tanh(x)
func (t Tanh) Activate(x float64) float64 {
	return math.Tanh(x)
}

// Derivative computes 1 - tanh(x)^2
func (t Tanh) Derivative(x float64) float64 {
	th := math.Tanh(x)
	return 1 - th*th
}

// Apply maps act over x into a new slice.
func Apply(act Activation, x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = act.Activate(v)
	}
	return out
}

// Softmax returns the normalized exponential of x.
// The maximum is subtracted first for numerical stability.
func Softmax(x []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	maxVal := floats.Max(x)
	for i, v := range x {
		out[i] = math.Exp(v - maxVal)
	}
	floats.Scale(1/floats.Sum(out), out)
	return out
}

// MaskedSoftmax is Softmax after forcing every position whose mask entry is
// false to MaskValue. A nil mask keeps every position.
func MaskedSoftmax(scores []float64, mask []bool) []float64 {
	if mask == nil {
		return Softmax(scores)
	}
	if len(mask) != len(scores) {
		panic("MaskedSoftmax: scores and mask must have same length")
	}
	masked := make([]float64, len(scores))
	for i, s := range scores {
		if mask[i] {
			masked[i] = s
		} else {
			masked[i] = MaskValue
		}
	}
	return Softmax(masked)
}

// SoftmaxBackward returns dL/dx given the softmax output y and dL/dy.
// dx_j = y_j * (dy_j - sum_k y_k*dy_k)
func SoftmaxBackward(y, dy []float64) []float64 {
	if len(y) != len(dy) {
		panic("SoftmaxBackward: output and gradient must have same length")
	}
	dot := floats.Dot(y, dy)
	dx := make([]float64, len(y))
	for j := range y {
		dx[j] = y[j] * (dy[j] - dot)
	}
	return dx
}

// LogSoftmaxAt returns log(softmax(x))[i] without materializing the softmax.
func LogSoftmaxAt(x []float64, i int) float64 {
	return x[i] - floats.LogSumExp(x)
}
