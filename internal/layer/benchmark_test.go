// Package layer provides benchmarks for the translation model layers.
package layer

import (
	"testing"
)

// fillRandom fills a slice with values in [-1, 1).
func fillRandom(rng *RNG, slice []float64) {
	rng.Uniform(slice, 1)
}

// BenchmarkLinearForward benchmarks the output projection at the default size.
func BenchmarkLinearForward(b *testing.B) {
	rng := NewRNG(1)
	l := NewLinear("out", 256, 5000, true, rng)
	input := make([]float64, 256)
	fillRandom(rng, input)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Forward(input)
	}
}

// BenchmarkLinearBackward benchmarks gradient accumulation of the same layer.
func BenchmarkLinearBackward(b *testing.B) {
	rng := NewRNG(1)
	l := NewLinear("out", 256, 5000, true, rng)
	input := make([]float64, 256)
	grad := make([]float64, 5000)
	fillRandom(rng, input)
	fillRandom(rng, grad)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		l.Backward(input, grad)
	}
}

// BenchmarkLSTMStep benchmarks one step of a 128-unit cell.
func BenchmarkLSTMStep(b *testing.B) {
	rng := NewRNG(1)
	cell := NewLSTMCell("lstm", 256, 128, rng)
	x := make([]float64, 256)
	h := make([]float64, 128)
	c := make([]float64, 128)
	fillRandom(rng, x)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cell.Step(x, h, c)
	}
}

// BenchmarkLSTMStepBackward benchmarks a forward and backward step.
func BenchmarkLSTMStepBackward(b *testing.B) {
	rng := NewRNG(1)
	cell := NewLSTMCell("lstm", 256, 128, rng)
	x := make([]float64, 256)
	h := make([]float64, 128)
	c := make([]float64, 128)
	dh := make([]float64, 128)
	fillRandom(rng, x)
	fillRandom(rng, dh)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _, cache := cell.Step(x, h, c)
		cell.Backward(cache, dh, nil)
	}
}

// BenchmarkStackedLSTMSequence benchmarks a 20-step sequence through two layers.
func BenchmarkStackedLSTMSequence(b *testing.B) {
	rng := NewRNG(1)
	s := NewStackedLSTM("enc", 128, 128, 2, 0.3, rng)
	seq := make([][]float64, 20)
	for t := range seq {
		seq[t] = make([]float64, 128)
		fillRandom(rng, seq[t])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		state := NewState(2, 128)
		for _, x := range seq {
			_, state, _ = s.Step(x, state, true)
		}
	}
}

// BenchmarkAttention benchmarks scoring 30 source positions.
func BenchmarkAttention(b *testing.B) {
	rng := NewRNG(1)
	a := NewAttention("attn", 128, rng)
	hidden := make([]float64, 128)
	fillRandom(rng, hidden)
	enc := make([][]float64, 30)
	for j := range enc {
		enc[j] = make([]float64, 128)
		fillRandom(rng, enc[j])
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		a.Forward(hidden, enc, nil)
	}
}
