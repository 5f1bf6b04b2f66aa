package train

import (
	"bytes"
	"context"
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/FlavioCFOliveira/GoTranslate/internal/data"
	"github.com/FlavioCFOliveira/GoTranslate/internal/opt"
	"github.com/FlavioCFOliveira/GoTranslate/internal/seq2seq"
	"github.com/FlavioCFOliveira/GoTranslate/internal/tokenize"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

var corpus = []data.Pair{
	{Src: "hej", Tgt: "hello"},
	{Src: "tak", Tgt: "thanks"},
	{Src: "god morgen", Tgt: "good morning"},
	{Src: "ja tak", Tgt: "yes please"},
	{Src: "nej tak", Tgt: "no thanks"},
	{Src: "god nat", Tgt: "good night"},
}

func fixture(t *testing.T) (*seq2seq.Model, *data.Loader, *data.Loader) {
	t.Helper()
	ds := data.NewDataset(corpus, tokenize.Default, tokenize.Default)
	ds.BuildVocab(1)

	model, err := seq2seq.NewModel(seq2seq.Config{
		SrcVocab: ds.SrcVocab.Len(),
		TrgVocab: ds.TgtVocab.Len(),
		EmbDim:   8,
		HidDim:   8,
		Layers:   1,
		SrcPadID: vocab.PadID,
		Seed:     3,
	})
	require.NoError(t, err)

	return model, data.NewLoader(ds, 2, true, 1), data.NewLoader(ds, 2, false, 0)
}

func TestFitHistory(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	cfg := DefaultConfig()
	cfg.Epochs = 2

	tr := New(model, opt.NewAdam(0.001), cfg, zaptest.NewLogger(t), LogCallback{Interval: 1})
	assert.Same(t, model, tr.Model())
	hist, err := tr.Fit(context.Background(), trainLoader, valLoader)
	require.NoError(t, err)

	require.Len(t, hist.Train, 2)
	require.Len(t, hist.Val, 2)
	for i := range hist.Train {
		assert.False(t, math.IsNaN(hist.Train[i]))
		assert.Greater(t, hist.Train[i], 0.0)
		assert.Greater(t, hist.Val[i], 0.0)
	}
}

func TestFitReducesLoss(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	cfg := Config{Epochs: 40, Clip: 1, TrainForcing: 1, EvalForcing: 1, Seed: 1}

	tr := New(model, opt.NewAdam(0.01), cfg, nil)
	hist, err := tr.Fit(context.Background(), trainLoader, valLoader)
	require.NoError(t, err)

	assert.Less(t, hist.Val[len(hist.Val)-1], hist.Val[0]/2)
}

func TestEvaluateLeavesParamsUntouched(t *testing.T) {
	model, _, valLoader := fixture(t)
	tr := New(model, opt.NewAdam(0.01), DefaultConfig(), nil)

	before := make([][]float64, 0)
	for _, p := range model.Params() {
		before = append(before, append([]float64(nil), p.Value...))
	}
	_, err := tr.Evaluate(context.Background(), valLoader)
	require.NoError(t, err)

	for i, p := range model.Params() {
		assert.Equal(t, before[i], p.Value)
	}
}

func TestFitCanceled(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := New(model, opt.NewAdam(0.001), DefaultConfig(), nil)
	hist, err := tr.Fit(ctx, trainLoader, valLoader)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, hist.Train)
}

func TestNonFiniteLossAborts(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	for _, p := range model.Params() {
		if p.Name == "decoder.fc_out.bias" {
			p.Value[0] = math.NaN()
		}
	}

	tr := New(model, opt.NewAdam(0.001), DefaultConfig(), nil)
	_, err := tr.Fit(context.Background(), trainLoader, valLoader)
	assert.ErrorContains(t, err, "non-finite")
}

func TestPrinter(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	cfg := DefaultConfig()
	cfg.Epochs = 1

	var buf bytes.Buffer
	tr := New(model, opt.NewAdam(0.001), cfg, nil, Printer{W: &buf, Epochs: 1})
	_, err := tr.Fit(context.Background(), trainLoader, valLoader)
	require.NoError(t, err)

	assert.Regexp(t, `^Epoch 1/1 — Train loss: \d+\.\d{3} — Val loss: \d+\.\d{3}\n$`, buf.String())
}

func TestCSVLogger(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	cfg := DefaultConfig()
	cfg.Epochs = 2

	path := filepath.Join(t.TempDir(), "history.csv")
	tr := New(model, opt.NewAdam(0.001), cfg, nil, NewCSVLogger(path, false))
	_, err := tr.Fit(context.Background(), trainLoader, valLoader)
	require.NoError(t, err)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, []string{"epoch", "train_loss", "val_loss", "time_seconds"}, records[0])
	assert.Equal(t, "1", records[1][0])
	assert.Equal(t, "2", records[2][0])
}

func TestCSVLoggerReportsWriteErrors(t *testing.T) {
	const full = "/dev/full"
	if _, err := os.Stat(full); err != nil {
		t.Skip("no /dev/full on this system")
	}
	model, trainLoader, valLoader := fixture(t)
	cfg := DefaultConfig()
	cfg.Epochs = 1

	core, logs := observer.New(zap.WarnLevel)
	tr := New(model, opt.NewAdam(0.001), cfg, zap.New(core), NewCSVLogger(full, false))
	_, err := tr.Fit(context.Background(), trainLoader, valLoader)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("csv logger: failed to write header").Len())
	assert.Equal(t, 1, logs.FilterMessage("csv logger: failed to write record").Len())
}

type countingCallback struct {
	BaseCallback
	trainBegin, trainEnd, epochs, batches int
}

func (c *countingCallback) OnTrainBegin(t *Trainer)                        { c.trainBegin++ }
func (c *countingCallback) OnTrainEnd(t *Trainer)                          { c.trainEnd++ }
func (c *countingCallback) OnEpochBegin(epoch int, t *Trainer)             { c.epochs++ }
func (c *countingCallback) OnBatchEnd(batch int, loss float64, t *Trainer) { c.batches++ }

func TestCallbackOrder(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	cfg := DefaultConfig()
	cfg.Epochs = 3

	cb := &countingCallback{}
	tr := New(model, opt.NewAdam(0.001), cfg, nil, cb)
	_, err := tr.Fit(context.Background(), trainLoader, valLoader)
	require.NoError(t, err)

	assert.Equal(t, 1, cb.trainBegin)
	assert.Equal(t, 1, cb.trainEnd)
	assert.Equal(t, 3, cb.epochs)
	assert.Equal(t, 3*trainLoader.NumBatches(), cb.batches)
}

func TestEarlyStopping(t *testing.T) {
	model, trainLoader, valLoader := fixture(t)
	cfg := DefaultConfig()
	cfg.Epochs = 10

	es := NewEarlyStopping(1, math.Inf(1))
	tr := New(model, opt.NewAdam(0.001), cfg, nil, es)
	hist, err := tr.Fit(context.Background(), trainLoader, valLoader)
	require.NoError(t, err)

	// With an infinite threshold no epoch counts as an improvement.
	assert.True(t, es.Stopped)
	assert.Len(t, hist.Val, 1)
}
