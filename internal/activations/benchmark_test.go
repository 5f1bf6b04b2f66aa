package activations

import "testing"

func BenchmarkMaskedSoftmax(b *testing.B) {
	scores := make([]float64, 64)
	mask := make([]bool, 64)
	for i := range scores {
		scores[i] = float64(i%7) * 0.3
		mask[i] = i < 48
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = MaskedSoftmax(scores, mask)
	}
}

func BenchmarkSigmoid(b *testing.B) {
	s := Sigmoid{}
	x := 0.0
	for i := 0; i < b.N; i++ {
		x += s.Activate(float64(i%10) * 0.1)
	}
	_ = x
}
