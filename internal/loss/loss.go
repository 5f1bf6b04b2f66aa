// Package loss provides the sequence cross-entropy loss used for training.
package loss

import (
	"math"

	"github.com/FlavioCFOliveira/GoTranslate/internal/activations"
)

// CrossEntropy is softmax cross-entropy over raw logits with integer targets.
// Targets equal to IgnoreIndex contribute neither loss nor gradient, and the
// reduction is the mean over the counted targets.
type CrossEntropy struct {
	IgnoreIndex int
}

// NewCrossEntropy creates a loss that ignores targets equal to ignoreIndex.
func NewCrossEntropy(ignoreIndex int) CrossEntropy {
	return CrossEntropy{IgnoreIndex: ignoreIndex}
}

// Forward returns the summed negative log-likelihood of targets under
// softmax(logits) and the number of counted targets.
func (c CrossEntropy) Forward(logits [][]float64, targets []int) (float64, int) {
	if len(logits) != len(targets) {
		panic("CrossEntropy: logits and targets must have same length")
	}

	var sum float64
	count := 0
	for i, target := range targets {
		if target == c.IgnoreIndex {
			continue
		}
		sum -= activations.LogSoftmaxAt(logits[i], target)
		count++
	}
	return sum, count
}

// BackwardInPlace writes scale * d(NLL)/d(logits) into grad. For softmax
// cross-entropy the gradient simplifies to (softmax(logits) - onehot(target)).
// Rows with an ignored target are zeroed.
func (c CrossEntropy) BackwardInPlace(logits [][]float64, targets []int, scale float64, grad [][]float64) {
	if len(logits) != len(targets) || len(logits) != len(grad) {
		panic("CrossEntropy: logits, targets and grad must have same length")
	}

	for i, target := range targets {
		row := grad[i]
		if target == c.IgnoreIndex {
			for k := range row {
				row[k] = 0
			}
			continue
		}
		probs := activations.Softmax(logits[i])
		for k, p := range probs {
			row[k] = scale * p
		}
		row[target] -= scale
	}
}

// Batch computes the mean loss over a batch of sequences, skipping the first
// skip positions of every row, and optionally the gradient of that mean with
// respect to every logit. logits is [batch][time][vocab], targets
// [batch][time]. Skipped positions receive a zero gradient row.
// When no target is counted the loss is 0 and the gradient all zeros.
func (c CrossEntropy) Batch(logits [][][]float64, targets [][]int, skip int, withGrad bool) (float64, [][][]float64) {
	if len(logits) != len(targets) {
		panic("CrossEntropy: batch sizes differ")
	}

	var sum float64
	count := 0
	for b := range logits {
		if skip >= len(targets[b]) {
			continue
		}
		s, n := c.Forward(logits[b][skip:], targets[b][skip:])
		sum += s
		count += n
	}

	var grad [][][]float64
	if withGrad {
		grad = make([][][]float64, len(logits))
		for b := range logits {
			grad[b] = make([][]float64, len(logits[b]))
			for t := range logits[b] {
				grad[b][t] = make([]float64, len(logits[b][t]))
			}
		}
	}

	if count == 0 {
		return 0, grad
	}

	mean := sum / float64(count)
	if withGrad {
		scale := 1 / float64(count)
		for b := range logits {
			if skip >= len(targets[b]) {
				continue
			}
			c.BackwardInPlace(logits[b][skip:], targets[b][skip:], scale, grad[b][skip:])
		}
	}
	return mean, grad
}

// IsFinite reports whether a loss value is usable.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
