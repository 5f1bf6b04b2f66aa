package seq2seq

import (
	"github.com/FlavioCFOliveira/GoTranslate/internal/layer"
	"gonum.org/v1/gonum/floats"
)

// DecoderConfig sizes a Decoder. HidDim must match the encoder.
type DecoderConfig struct {
	VocabSize int
	EmbDim    int
	HidDim    int
	Layers    int
	Dropout   float64
}

// Decoder emits one target token distribution per call.
//
// Each step embeds the previous token, attends over the encoder outputs with
// the top-layer hidden state, feeds [embedding; context] to the LSTM and
// projects [output; context] to vocabulary logits.
type Decoder struct {
	embDim int
	hidDim int

	embedding *layer.Embedding
	dropout   *layer.Dropout
	attention *layer.Attention
	rnn       *layer.StackedLSTM
	out       *layer.Linear
}

// StepOutput is the result of one decoder step.
type StepOutput struct {
	Logits    []float64
	State     layer.State
	Attention []float64
}

// DecoderCache keeps what Backward needs from one Step call.
type DecoderCache struct {
	id      int
	mask    []float64
	encoder [][]float64
	attn    *layer.AttentionCache
	rnn     *layer.StackedCache
	outIn   []float64
}

// NewDecoder creates a decoder.
func NewDecoder(cfg DecoderConfig, rng *layer.RNG) *Decoder {
	return &Decoder{
		embDim:    cfg.EmbDim,
		hidDim:    cfg.HidDim,
		embedding: layer.NewEmbedding("decoder.embedding", cfg.VocabSize, cfg.EmbDim, rng),
		dropout:   layer.NewDropout(cfg.Dropout, rng.Derive()),
		attention: layer.NewAttention("decoder.attention", cfg.HidDim, rng),
		rnn:       layer.NewStackedLSTM("decoder.rnn", cfg.EmbDim+cfg.HidDim, cfg.HidDim, cfg.Layers, cfg.Dropout, rng),
		out:       layer.NewLinear("decoder.fc_out", 2*cfg.HidDim, cfg.VocabSize, true, rng),
	}
}

// Step advances the decoder by one token. prev is left untouched; the new
// state is returned in the output.
func (d *Decoder) Step(id int, prev layer.State, encoder [][]float64, mask []bool, training bool) (StepOutput, *DecoderCache) {
	cache := &DecoderCache{id: id, encoder: encoder}

	var emb []float64
	emb, cache.mask = d.dropout.Forward(d.embedding.Forward(id), training)

	var weights []float64
	weights, cache.attn = d.attention.Forward(prev.Top(), encoder, mask)

	context := make([]float64, d.hidDim)
	for j, e := range encoder {
		floats.AddScaled(context, weights[j], e)
	}

	rnnIn := make([]float64, 0, d.embDim+d.hidDim)
	rnnIn = append(rnnIn, emb...)
	rnnIn = append(rnnIn, context...)

	var (
		output []float64
		next   layer.State
	)
	output, next, cache.rnn = d.rnn.Step(rnnIn, prev, training)

	cache.outIn = make([]float64, 0, 2*d.hidDim)
	cache.outIn = append(cache.outIn, output...)
	cache.outIn = append(cache.outIn, context...)

	return StepOutput{
		Logits:    d.out.Forward(cache.outIn),
		State:     next,
		Attention: weights,
	}, cache
}

// Backward back-propagates one step. dLogits is the loss gradient on this
// step's logits and dNext the gradient on the state it produced. Encoder
// output gradients are accumulated into dEncoder. Returns the gradient on
// the incoming state.
func (d *Decoder) Backward(cache *DecoderCache, dLogits []float64, dNext layer.State, dEncoder [][]float64) layer.State {
	dOutIn := d.out.Backward(cache.outIn, dLogits)
	dOutput := dOutIn[:d.hidDim]
	dContext := append([]float64(nil), dOutIn[d.hidDim:]...)

	dRnnIn, dPrev := d.rnn.Backward(cache.rnn, dOutput, dNext)
	floats.Add(dContext, dRnnIn[d.embDim:])

	// context = sum_j a_j e_j
	weights := cache.attn.Weights()
	dWeights := make([]float64, len(weights))
	for j, e := range cache.encoder {
		dWeights[j] = floats.Dot(dContext, e)
		floats.AddScaled(dEncoder[j], weights[j], dContext)
	}

	dHidden, dEncAttn := d.attention.Backward(cache.attn, dWeights)
	for j := range dEncoder {
		floats.Add(dEncoder[j], dEncAttn[j])
	}
	floats.Add(dPrev.H[len(dPrev.H)-1], dHidden)

	d.embedding.Backward(cache.id, d.dropout.Backward(dRnnIn[:d.embDim], cache.mask))
	return dPrev
}

// Params returns every decoder parameter.
func (d *Decoder) Params() []*layer.Param {
	return layer.Collect(d.embedding, d.attention, d.rnn, d.out)
}

// VocabSize returns the number of logits per step.
func (d *Decoder) VocabSize() int {
	return d.out.OutSize()
}
