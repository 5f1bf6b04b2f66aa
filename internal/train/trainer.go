// Package train runs the training and evaluation loop of the translation
// model.
package train

import (
	"context"
	"fmt"
	"math/rand"
	"runtime/debug"

	"github.com/FlavioCFOliveira/GoTranslate/internal/data"
	"github.com/FlavioCFOliveira/GoTranslate/internal/layer"
	"github.com/FlavioCFOliveira/GoTranslate/internal/loss"
	"github.com/FlavioCFOliveira/GoTranslate/internal/opt"
	"github.com/FlavioCFOliveira/GoTranslate/internal/seq2seq"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
	"go.uber.org/zap"
)

// Config holds the loop settings.
type Config struct {
	Epochs int
	// Clip is the maximum global gradient norm; 0 disables clipping.
	Clip float64
	// TrainForcing and EvalForcing are the teacher forcing ratios.
	TrainForcing float64
	EvalForcing  float64
	// Seed drives the forcing coin flips.
	Seed int64
}

// DefaultConfig returns the settings of the reference run.
func DefaultConfig() Config {
	return Config{
		Epochs:       3,
		Clip:         1,
		TrainForcing: 0.5,
		EvalForcing:  0.4,
		Seed:         42,
	}
}

// History holds the per-epoch mean losses.
type History struct {
	Train []float64
	Val   []float64
}

// Trainer fits a seq2seq model.
type Trainer struct {
	model     *seq2seq.Model
	params    []*layer.Param
	optimizer opt.Optimizer
	criterion loss.CrossEntropy
	cfg       Config
	logger    *zap.Logger
	callbacks []Callback
	rng       *rand.Rand
	stop      bool
}

// New creates a trainer. A nil logger disables logging.
func New(model *seq2seq.Model, optimizer opt.Optimizer, cfg Config, logger *zap.Logger, callbacks ...Callback) *Trainer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trainer{
		model:     model,
		params:    model.Params(),
		optimizer: optimizer,
		criterion: loss.NewCrossEntropy(vocab.PadID),
		cfg:       cfg,
		logger:    logger,
		callbacks: callbacks,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}
}

// Logger returns the trainer's logger.
func (t *Trainer) Logger() *zap.Logger {
	return t.logger
}

// Config returns the loop settings.
func (t *Trainer) Config() Config {
	return t.cfg
}

// Model returns the model being trained.
func (t *Trainer) Model() *seq2seq.Model {
	return t.model
}

// NumParams returns the number of trainable scalars.
func (t *Trainer) NumParams() int {
	return layer.CountParams(t.params)
}

// Stop asks Fit to return after the current epoch.
func (t *Trainer) Stop() {
	t.stop = true
}

// TrainBatch runs one optimization step on b and returns its mean loss.
func (t *Trainer) TrainBatch(b *data.Batch) (float64, error) {
	layer.ClearGradients(t.params)

	out := t.model.Forward(b.Src, b.Trg, seq2seq.RatioForcing(t.cfg.TrainForcing, t.rng), seq2seq.Train)
	l, grad := t.criterion.Batch(out.Logits, b.Trg, 1, true)
	if !loss.IsFinite(l) {
		return l, fmt.Errorf("non-finite training loss: %v", l)
	}

	t.model.Backward(out, grad)
	if t.cfg.Clip > 0 {
		opt.ClipGradNorm(t.params, t.cfg.Clip)
	}
	t.optimizer.Update(t.params)
	return l, nil
}

// EvalBatch returns the mean loss of b without touching the parameters.
func (t *Trainer) EvalBatch(b *data.Batch) float64 {
	out := t.model.Forward(b.Src, b.Trg, seq2seq.RatioForcing(t.cfg.EvalForcing, t.rng), seq2seq.Eval)
	l, _ := t.criterion.Batch(out.Logits, b.Trg, 1, false)
	return l
}

// TrainEpoch makes one pass over loader and returns the mean batch loss.
func (t *Trainer) TrainEpoch(ctx context.Context, loader *data.Loader) (float64, error) {
	batches := loader.Batches()
	if len(batches) == 0 {
		return 0, nil
	}

	var total float64
	for i, b := range batches {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		for _, cb := range t.callbacks {
			cb.OnBatchBegin(i, t)
		}

		l, err := t.TrainBatch(b)
		if err != nil {
			return 0, fmt.Errorf("batch %d: %w", i, err)
		}
		total += l

		for _, cb := range t.callbacks {
			cb.OnBatchEnd(i, l, t)
		}
	}
	return total / float64(len(batches)), nil
}

// Evaluate returns the mean batch loss over loader.
func (t *Trainer) Evaluate(ctx context.Context, loader *data.Loader) (float64, error) {
	batches := loader.Batches()
	if len(batches) == 0 {
		return 0, nil
	}

	var total float64
	for _, b := range batches {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		total += t.EvalBatch(b)
	}
	return total / float64(len(batches)), nil
}

// Fit trains for the configured number of epochs, evaluating on val after
// each one. It returns the history collected so far together with any error.
func (t *Trainer) Fit(ctx context.Context, train, val *data.Loader) (*History, error) {
	hist := &History{}
	t.stop = false

	for _, cb := range t.callbacks {
		cb.OnTrainBegin(t)
	}
	defer func() {
		for _, cb := range t.callbacks {
			cb.OnTrainEnd(t)
		}
	}()

	for epoch := 1; epoch <= t.cfg.Epochs && !t.stop; epoch++ {
		for _, cb := range t.callbacks {
			cb.OnEpochBegin(epoch, t)
		}

		trainLoss, err := t.TrainEpoch(ctx, train)
		if err != nil {
			return hist, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		// Release the per-step caches of the epoch.
		debug.FreeOSMemory()

		valLoss, err := t.Evaluate(ctx, val)
		if err != nil {
			return hist, fmt.Errorf("epoch %d: %w", epoch, err)
		}

		hist.Train = append(hist.Train, trainLoss)
		hist.Val = append(hist.Val, valLoss)

		for _, cb := range t.callbacks {
			cb.OnEpochEnd(epoch, trainLoss, valLoss, t)
		}
	}
	return hist, nil
}
