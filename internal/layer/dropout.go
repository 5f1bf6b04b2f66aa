package layer

// Dropout implements inverted dropout regularization.
// During training, randomly sets inputs to 0 with probability p and scales the
// survivors by 1/(1-p). During inference, passes inputs through unchanged.
type Dropout struct {
	// Probability of dropping a unit
	p float64

	// RNG for dropout masks
	rng *RNG
}

// NewDropout creates a new dropout layer.
// p is the probability of dropping a unit; p <= 0 disables dropout.
func NewDropout(p float64, rng *RNG) *Dropout {
	if p >= 1 {
		panic("Dropout: p must be < 1")
	}
	return &Dropout{p: p, rng: rng}
}

// Forward applies dropout to x. The returned mask holds the per-unit scale
// and must be handed to Backward; it is nil when the layer acts as identity.
func (d *Dropout) Forward(x []float64, training bool) ([]float64, []float64) {
	out := make([]float64, len(x))
	if !training || d.p <= 0 {
		copy(out, x)
		return out, nil
	}

	scale := 1 / (1 - d.p)
	mask := make([]float64, len(x))
	for i := range x {
		if d.rng.RandFloat() >= d.p {
			mask[i] = scale
			out[i] = x[i] * scale
		}
	}
	return out, mask
}

// Backward routes grad through the mask produced by Forward.
func (d *Dropout) Backward(grad, mask []float64) []float64 {
	out := make([]float64, len(grad))
	if mask == nil {
		copy(out, grad)
		return out
	}
	for i := range grad {
		out[i] = grad[i] * mask[i]
	}
	return out
}
