package seq2seq

import (
	"errors"
	"fmt"

	"github.com/FlavioCFOliveira/GoTranslate/internal/layer"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
	"gonum.org/v1/gonum/floats"
)

// Config describes the full model.
type Config struct {
	SrcVocab   int
	TrgVocab   int
	EmbDim     int
	HidDim     int
	Layers     int
	EncDropout float64
	DecDropout float64
	SrcPadID   int
	Seed       uint64
}

// Validate checks that the configuration describes a buildable model.
func (c Config) Validate() error {
	switch {
	case c.SrcVocab <= len(vocab.Specials) || c.TrgVocab <= len(vocab.Specials):
		return fmt.Errorf("vocabularies must hold more than the reserved tokens (src=%d, trg=%d)", c.SrcVocab, c.TrgVocab)
	case c.EmbDim <= 0 || c.HidDim <= 0:
		return fmt.Errorf("embedding and hidden sizes must be positive (emb=%d, hid=%d)", c.EmbDim, c.HidDim)
	case c.Layers < 1:
		return fmt.Errorf("need at least one layer, got %d", c.Layers)
	case c.EncDropout < 0 || c.EncDropout >= 1 || c.DecDropout < 0 || c.DecDropout >= 1:
		return errors.New("dropout must be in [0, 1)")
	}
	return nil
}

// Mode selects between training and evaluation behavior.
type Mode int

const (
	// Eval disables dropout and does not keep backprop caches.
	Eval Mode = iota
	// Train enables dropout and keeps caches for Backward.
	Train
)

// Model is the attention encoder-decoder.
type Model struct {
	cfg     Config
	encoder *Encoder
	decoder *Decoder
}

// NewModel builds a model with freshly initialized parameters.
func NewModel(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model config: %w", err)
	}
	rng := layer.NewRNG(cfg.Seed)
	return &Model{
		cfg: cfg,
		encoder: NewEncoder(EncoderConfig{
			VocabSize: cfg.SrcVocab,
			EmbDim:    cfg.EmbDim,
			HidDim:    cfg.HidDim,
			Layers:    cfg.Layers,
			Dropout:   cfg.EncDropout,
		}, rng.Derive()),
		decoder: NewDecoder(DecoderConfig{
			VocabSize: cfg.TrgVocab,
			EmbDim:    cfg.EmbDim,
			HidDim:    cfg.HidDim,
			Layers:    cfg.Layers,
			Dropout:   cfg.DecDropout,
		}, rng.Derive()),
	}, nil
}

// Config returns the configuration the model was built with.
func (m *Model) Config() Config {
	return m.cfg
}

// Params returns all learnable parameters, encoder first.
func (m *Model) Params() []*layer.Param {
	return append(m.encoder.Params(), m.decoder.Params()...)
}

// Mask marks the non-pad positions of a source row.
func (m *Model) Mask(src []int) []bool {
	mask := make([]bool, len(src))
	for i, id := range src {
		mask[i] = id != m.cfg.SrcPadID
	}
	return mask
}

// Output holds the result of a batch forward pass.
//
// Logits is batch x trgLen x vocab and Attention is batch x trgLen x srcLen.
// Position 0 of both is always a zero row: the decoder is never run for the
// <sos> position, so Logits[b][t] is the prediction for Trg[b][t] only for
// t >= 1.
type Output struct {
	Logits    [][][]float64
	Attention [][][]float64

	traces []*trace
}

type trace struct {
	encoder *EncoderCache
	srcLen  int
	steps   []*DecoderCache
}

// Forward runs the encoder once per row and the decoder for every target
// position after the first. force is asked once per step and its answer is
// shared by every row: when true the next input is the reference token at
// that step, otherwise the argmax of the step's logits.
func (m *Model) Forward(src, trg [][]int, force Forcing, mode Mode) *Output {
	if len(src) != len(trg) {
		panic("Model: src and trg batch sizes differ")
	}
	batch := len(src)
	trgLen := 0
	if batch > 0 {
		trgLen = len(trg[0])
	}

	forced := make([]bool, trgLen)
	for t := 1; t < trgLen; t++ {
		forced[t] = force(t)
	}

	training := mode == Train
	out := &Output{
		Logits:    make([][][]float64, batch),
		Attention: make([][][]float64, batch),
	}
	if training {
		out.traces = make([]*trace, batch)
	}

	vocabSize := m.decoder.VocabSize()
	for b := 0; b < batch; b++ {
		if len(trg[b]) != trgLen {
			panic("Model: trg rows must have the same length")
		}
		encOut, state, encCache := m.encoder.Forward(src[b], training)
		mask := m.Mask(src[b])

		logits := make([][]float64, trgLen)
		attn := make([][]float64, trgLen)
		if trgLen > 0 {
			logits[0] = make([]float64, vocabSize)
			attn[0] = make([]float64, len(src[b]))
		}

		var tr *trace
		if training {
			tr = &trace{encoder: encCache, srcLen: len(src[b]), steps: make([]*DecoderCache, trgLen)}
			out.traces[b] = tr
		}

		input := trg[b][0]
		for t := 1; t < trgLen; t++ {
			step, cache := m.decoder.Step(input, state, encOut, mask, training)
			logits[t] = step.Logits
			attn[t] = step.Attention
			state = step.State
			if tr != nil {
				tr.steps[t] = cache
			}

			if forced[t] {
				input = trg[b][t]
			} else {
				input = floats.MaxIdx(step.Logits)
			}
		}

		out.Logits[b] = logits
		out.Attention[b] = attn
	}
	return out
}

// Backward accumulates parameter gradients for dLogits, the loss gradient
// with the same shape as out.Logits. out must come from a Train forward pass
// made with the current parameter values.
func (m *Model) Backward(out *Output, dLogits [][][]float64) {
	if out.traces == nil {
		panic("Model: Backward needs a Train mode forward pass")
	}
	hidden := m.encoder.Hidden()
	for b, tr := range out.traces {
		dEnc := make([][]float64, tr.srcLen)
		for j := range dEnc {
			dEnc[j] = make([]float64, hidden)
		}

		var dState layer.State
		for t := len(tr.steps) - 1; t >= 1; t-- {
			dState = m.decoder.Backward(tr.steps[t], dLogits[b][t], dState, dEnc)
		}
		m.encoder.Backward(tr.encoder, dEnc, dState)
	}
}
