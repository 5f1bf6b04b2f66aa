package layer

import "math"

// RNG is a small xorshift64* generator used for weight initialization and
// dropout masks. Each layer owns its generator so runs are reproducible for a
// fixed seed without touching the global math/rand source.
type RNG struct {
	state uint64
}

// NewRNG creates a generator from seed. A zero seed is replaced by a fixed
// non-zero constant since xorshift never leaves the zero state.
func NewRNG(seed uint64) *RNG {
	if seed == 0 {
		seed = 0x9E3779B97F4A7C15
	}
	return &RNG{state: seed}
}

// Uint64 returns the next raw value.
func (r *RNG) Uint64() uint64 {
	r.state ^= r.state >> 12
	r.state ^= r.state << 25
	r.state ^= r.state >> 27
	return r.state * 2685821657736338717
}

// RandFloat returns a float in [0, 1).
func (r *RNG) RandFloat() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Uniform fills x with values drawn from U(-scale, scale).
func (r *RNG) Uniform(x []float64, scale float64) {
	for i := range x {
		x[i] = r.RandFloat()*2*scale - scale
	}
}

// Derive returns a child generator with an independent stream.
func (r *RNG) Derive() *RNG {
	return NewRNG(r.Uint64())
}

// xavierScale is the Glorot uniform bound for a fanIn x fanOut matrix.
func xavierScale(fanIn, fanOut int) float64 {
	return math.Sqrt(6.0 / float64(fanIn+fanOut))
}
