// Package opt provides optimization algorithms and gradient clipping.
package opt

import (
	"math"

	"github.com/FlavioCFOliveira/GoTranslate/internal/layer"
	"gonum.org/v1/gonum/floats"
)

// Optimizer updates network parameters based on their accumulated gradients.
type Optimizer interface {
	// Update applies one optimization step to every param in place.
	Update(params []*layer.Param)
}

// SGD (Stochastic Gradient Descent) optimizer.
type SGD struct {
	LearningRate float64
}

// Step computes updated parameters: params - lr * gradients
// Returns a new slice with updated values
func (s SGD) Step(params, gradients []float64) []float64 {
	result := make([]float64, len(params))
	copy(result, params)
	s.StepInPlace(result, gradients)
	return result
}

// StepInPlace updates params in-place: params = params - lr * gradients
func (s SGD) StepInPlace(params, gradients []float64) {
	floats.AddScaled(params, -s.LearningRate, gradients)
}

// Update applies StepInPlace to every param.
func (s SGD) Update(params []*layer.Param) {
	for _, p := range params {
		s.StepInPlace(p.Value, p.Grad)
	}
}

// Adam optimizer with bias-corrected first and second moment estimates.
type Adam struct {
	LearningRate float64
	Beta1        float64 // Exponential decay rate for first moment
	Beta2        float64 // Exponential decay rate for second moment
	Epsilon      float64 // Small constant for numerical stability

	step  int
	state map[*layer.Param]*moments
}

type moments struct {
	m []float64
	v []float64
}

// NewAdam creates a new Adam optimizer with default values.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		state:        make(map[*layer.Param]*moments),
	}
}

// Update performs one Adam step over params. Moment buffers are created the
// first time a param is seen.
func (a *Adam) Update(params []*layer.Param) {
	if a.state == nil {
		a.state = make(map[*layer.Param]*moments)
	}
	a.step++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.step))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.step))
	stepSize := a.LearningRate / bc1

	for _, p := range params {
		st, ok := a.state[p]
		if !ok {
			st = &moments{m: make([]float64, p.Size()), v: make([]float64, p.Size())}
			a.state[p] = st
		}
		for i, g := range p.Grad {
			st.m[i] = a.Beta1*st.m[i] + (1-a.Beta1)*g
			st.v[i] = a.Beta2*st.v[i] + (1-a.Beta2)*g*g
			denom := math.Sqrt(st.v[i]/bc2) + a.Epsilon
			p.Value[i] -= stepSize * st.m[i] / denom
		}
	}
}

// Steps returns how many updates have been applied.
func (a *Adam) Steps() int {
	return a.step
}

// GradNorm returns the global L2 norm of all gradients.
func GradNorm(params []*layer.Param) float64 {
	sumSq := 0.0
	for _, p := range params {
		n := floats.Norm(p.Grad, 2)
		sumSq += n * n
	}
	return math.Sqrt(sumSq)
}

// ClipGradNorm rescales all gradients so their global L2 norm does not
// exceed maxNorm and returns the norm measured before clipping.
func ClipGradNorm(params []*layer.Param, maxNorm float64) float64 {
	total := GradNorm(params)
	coef := maxNorm / (total + 1e-6)
	if coef < 1 {
		for _, p := range params {
			floats.Scale(coef, p.Grad)
		}
	}
	return total
}
