package layer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	gradStep = 1e-6
	gradTol  = 1e-5
)

// weightedSum is the scalar loss sum_k r_k*y_k used by the gradient checks.
func weightedSum(r, y []float64) float64 {
	s := 0.0
	for k := range y {
		s += r[k] * y[k]
	}
	return s
}

func randomVec(rng *RNG, n int) []float64 {
	v := make([]float64, n)
	rng.Uniform(v, 1)
	return v
}

// checkParamGrads perturbs every scalar of every param and compares the
// central difference of loss with the analytic gradient already in Grad.
func checkParamGrads(t *testing.T, params []*Param, loss func() float64) {
	t.Helper()
	for _, p := range params {
		for i := range p.Value {
			orig := p.Value[i]
			p.Value[i] = orig + gradStep
			lp := loss()
			p.Value[i] = orig - gradStep
			lm := loss()
			p.Value[i] = orig

			numeric := (lp - lm) / (2 * gradStep)
			assert.InDelta(t, numeric, p.Grad[i], gradTol, "%s[%d]", p.Name, i)
		}
	}
}

// checkInputGrad does the same for an input vector.
func checkInputGrad(t *testing.T, name string, x, analytic []float64, loss func() float64) {
	t.Helper()
	for i := range x {
		orig := x[i]
		x[i] = orig + gradStep
		lp := loss()
		x[i] = orig - gradStep
		lm := loss()
		x[i] = orig

		numeric := (lp - lm) / (2 * gradStep)
		assert.InDelta(t, numeric, analytic[i], gradTol, "%s[%d]", name, i)
	}
}
