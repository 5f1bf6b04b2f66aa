package seq2seq

import "math/rand"

// Forcing decides, for decode step t, whether the next decoder input is the
// reference token (true) or the model's own prediction (false). It is
// called once per step for a whole batch.
type Forcing func(step int) bool

// RatioForcing forces each step with probability ratio.
func RatioForcing(ratio float64, rng *rand.Rand) Forcing {
	return func(int) bool {
		return rng.Float64() < ratio
	}
}

// AlwaysForce always feeds the reference token.
func AlwaysForce(int) bool { return true }

// NeverForce always feeds the model's prediction.
func NeverForce(int) bool { return false }
