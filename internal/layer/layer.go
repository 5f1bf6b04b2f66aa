// Package layer provides the neural network building blocks of the
// translation model: linear projections, embeddings, dropout, LSTM cells and
// additive attention.
//
// Layers are stateless with respect to a sequence: Forward-style methods
// return a cache that the caller hands back to the matching Backward call.
// Backward accumulates parameter gradients into Param.Grad and returns the
// gradient with respect to the layer input.
package layer

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Linear is a fully connected layer computing y = Wx + b.
type Linear struct {
	inSize  int
	outSize int

	// Weights stored row-major with shape [out, in]; w and gw are gonum views
	// over weight.Value and weight.Grad.
	weight *Param
	bias   *Param
	w      *mat.Dense
	gw     *mat.Dense
}

// NewLinear creates a linear layer with Xavier/Glorot initialization.
// When bias is false the layer has no bias parameter.
func NewLinear(name string, in, out int, bias bool, rng *RNG) *Linear {
	weight := newParam(name+".weight", out*in)
	rng.Uniform(weight.Value, xavierScale(in, out))

	l := &Linear{
		inSize:  in,
		outSize: out,
		weight:  weight,
		w:       mat.NewDense(out, in, weight.Value),
		gw:      mat.NewDense(out, in, weight.Grad),
	}
	if bias {
		l.bias = newParam(name+".bias", out)
	}
	return l
}

// Forward computes Wx + b into a new slice.
func (l *Linear) Forward(x []float64) []float64 {
	y := make([]float64, l.outSize)
	yv := mat.NewVecDense(l.outSize, y)
	yv.MulVec(l.w, mat.NewVecDense(l.inSize, x))
	if l.bias != nil {
		floats.Add(y, l.bias.Value)
	}
	return y
}

// Backward accumulates dL/dW = dy x^T and dL/db = dy, and returns dL/dx = W^T dy.
// x must be the input given to the matching Forward call.
func (l *Linear) Backward(x, dy []float64) []float64 {
	dyv := mat.NewVecDense(l.outSize, dy)
	l.gw.RankOne(l.gw, 1, dyv, mat.NewVecDense(l.inSize, x))
	if l.bias != nil {
		floats.Add(l.bias.Grad, dy)
	}

	dx := make([]float64, l.inSize)
	dxv := mat.NewVecDense(l.inSize, dx)
	dxv.MulVec(l.w.T(), dyv)
	return dx
}

// Params returns the weight and, when present, the bias.
func (l *Linear) Params() []*Param {
	if l.bias == nil {
		return []*Param{l.weight}
	}
	return []*Param{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Param {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear) Bias() *Param {
	return l.bias
}

// InSize returns the input size of the layer.
func (l *Linear) InSize() int {
	return l.inSize
}

// OutSize returns the output size of the layer.
func (l *Linear) OutSize() int {
	return l.outSize
}
