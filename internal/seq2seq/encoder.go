// Package seq2seq implements the attention encoder-decoder translation model:
// a recurrent encoder, a decoder that attends over the encoder outputs at
// every step, the teacher-forced training/evaluation forward pass and greedy
// decoding.
package seq2seq

import (
	"github.com/FlavioCFOliveira/GoTranslate/internal/layer"
)

// EncoderConfig sizes an Encoder.
type EncoderConfig struct {
	VocabSize int
	EmbDim    int
	HidDim    int
	Layers    int
	Dropout   float64
}

// Encoder embeds a source sequence and runs a stacked LSTM over it.
type Encoder struct {
	embedding *layer.Embedding
	dropout   *layer.Dropout
	rnn       *layer.StackedLSTM
}

// EncoderCache keeps what Backward needs from one Forward call.
type EncoderCache struct {
	ids   []int
	masks [][]float64
	steps []*layer.StackedCache
}

// NewEncoder creates an encoder.
func NewEncoder(cfg EncoderConfig, rng *layer.RNG) *Encoder {
	return &Encoder{
		embedding: layer.NewEmbedding("encoder.embedding", cfg.VocabSize, cfg.EmbDim, rng),
		dropout:   layer.NewDropout(cfg.Dropout, rng.Derive()),
		rnn:       layer.NewStackedLSTM("encoder.rnn", cfg.EmbDim, cfg.HidDim, cfg.Layers, cfg.Dropout, rng),
	}
}

// Forward encodes one padded source row. It returns the top-layer output of
// every position and the final state of every layer. Pad positions are
// encoded like any other token.
func (e *Encoder) Forward(src []int, training bool) ([][]float64, layer.State, *EncoderCache) {
	cache := &EncoderCache{
		ids:   src,
		masks: make([][]float64, len(src)),
		steps: make([]*layer.StackedCache, len(src)),
	}
	outputs := make([][]float64, len(src))
	state := layer.NewState(e.rnn.Layers(), e.rnn.Hidden())

	for t, id := range src {
		var x []float64
		x, cache.masks[t] = e.dropout.Forward(e.embedding.Forward(id), training)
		outputs[t], state, cache.steps[t] = e.rnn.Step(x, state, training)
	}
	return outputs, state, cache
}

// Backward runs backpropagation through time given the gradient on every
// output position and on the final state.
func (e *Encoder) Backward(cache *EncoderCache, dOutputs [][]float64, dState layer.State) {
	dNext := dState
	for t := len(cache.steps) - 1; t >= 0; t-- {
		var dOut []float64
		if dOutputs != nil {
			dOut = dOutputs[t]
		}
		var dx []float64
		dx, dNext = e.rnn.Backward(cache.steps[t], dOut, dNext)
		e.embedding.Backward(cache.ids[t], e.dropout.Backward(dx, cache.masks[t]))
	}
}

// Params returns the embedding and LSTM parameters.
func (e *Encoder) Params() []*layer.Param {
	return layer.Collect(e.embedding, e.rnn)
}

// Hidden returns the encoder state size.
func (e *Encoder) Hidden() int {
	return e.rnn.Hidden()
}
