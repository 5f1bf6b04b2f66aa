// Package app wires corpus loading, training, plotting and sample
// translation into a single run.
package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/FlavioCFOliveira/GoTranslate/internal/config"
	"github.com/FlavioCFOliveira/GoTranslate/internal/data"
	"github.com/FlavioCFOliveira/GoTranslate/internal/opt"
	"github.com/FlavioCFOliveira/GoTranslate/internal/plot"
	"github.com/FlavioCFOliveira/GoTranslate/internal/seq2seq"
	"github.com/FlavioCFOliveira/GoTranslate/internal/tokenize"
	"github.com/FlavioCFOliveira/GoTranslate/internal/train"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
	"github.com/klauspost/cpuid/v2"
	"go.uber.org/zap"
)

// Corpus is the tokenized train and validation data of a run.
type Corpus struct {
	Train *data.Dataset
	Val   *data.Dataset
}

// Prepare loads the corpus files, splits and caps them, tokenizes both sides
// and builds the vocabularies from the training split.
func Prepare(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Corpus, error) {
	start := time.Now()
	pairs, err := data.LoadFiles(ctx, cfg.Data.Files, data.LoadOptions{
		Column:  cfg.Data.Column,
		SrcLang: cfg.SrcLang,
		TgtLang: cfg.TgtLang,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus: %w", err)
	}

	trainPairs, valPairs := data.Split(pairs, cfg.Split.Fraction, cfg.Split.Seed)
	trainPairs = data.Cap(trainPairs, cfg.Data.MaxTrain)
	valPairs = data.Cap(valPairs, cfg.Data.MaxVal)

	tok := tokenize.Default
	trainSet := data.NewDataset(trainPairs, tok, tok)
	trainSet.BuildVocab(cfg.Data.MinFreq)
	valSet := data.NewDataset(valPairs, tok, tok).WithVocab(trainSet.SrcVocab, trainSet.TgtVocab)

	logger.Info("corpus ready",
		zap.Int("pairs", len(pairs)),
		zap.Int("train", trainSet.Len()),
		zap.Int("val", valSet.Len()),
		zap.Int("src_vocab", trainSet.SrcVocab.Len()),
		zap.Int("tgt_vocab", trainSet.TgtVocab.Len()),
		zap.Duration("took", time.Since(start)))

	return &Corpus{Train: trainSet, Val: valSet}, nil
}

// Result is what a run produced.
type Result struct {
	History      *train.History
	Translations []seq2seq.Translation
	Files        []string
}

type options struct {
	summary bool
}

// Option tweaks Run.
type Option func(*options)

// WithSummary prints the model parameter table before training.
func WithSummary(on bool) Option {
	return func(o *options) { o.summary = on }
}

// Run trains a model as described by cfg, prints progress and sample
// translations to out, and writes the loss curve and attention heatmaps
// under cfg.Plot.Dir.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger, out io.Writer, opts ...Option) (*Result, error) {
	var o options
	for _, apply := range opts {
		apply(&o)
	}

	logger.Info("host",
		zap.String("cpu", cpuid.CPU.BrandName),
		zap.Int("cores", cpuid.CPU.PhysicalCores),
		zap.Bool("avx2", cpuid.CPU.Supports(cpuid.AVX2)))

	corpus, err := Prepare(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if corpus.Train.Len() == 0 {
		return nil, fmt.Errorf("training split is empty")
	}

	model, err := seq2seq.NewModel(seq2seq.Config{
		SrcVocab:   corpus.Train.SrcVocab.Len(),
		TrgVocab:   corpus.Train.TgtVocab.Len(),
		EmbDim:     cfg.Model.EmbDim,
		HidDim:     cfg.Model.HidDim,
		Layers:     cfg.Model.Layers,
		EncDropout: cfg.Model.EncDropout,
		DecDropout: cfg.Model.DecDropout,
		SrcPadID:   vocab.PadID,
		Seed:       cfg.Model.Seed,
	})
	if err != nil {
		return nil, err
	}

	if o.summary {
		model.Summary(out)
	}

	callbacks := []train.Callback{
		train.Printer{W: out, Epochs: cfg.Train.Epochs},
		train.LogCallback{Interval: 100},
	}
	if cfg.Train.HistoryCSV != "" {
		callbacks = append(callbacks, train.NewCSVLogger(cfg.Train.HistoryCSV, false))
	}
	if cfg.Train.Patience > 0 {
		callbacks = append(callbacks, train.NewEarlyStopping(cfg.Train.Patience, 0))
	}

	trainer := train.New(model, opt.NewAdam(cfg.Train.LR), train.Config{
		Epochs:       cfg.Train.Epochs,
		Clip:         cfg.Train.Clip,
		TrainForcing: cfg.Train.TeacherForcing,
		EvalForcing:  cfg.Eval.TeacherForcing,
		Seed:         cfg.Split.Seed,
	}, logger, callbacks...)

	trainLoader := data.NewLoader(corpus.Train, cfg.Train.BatchSize, true, cfg.Split.Seed)
	valLoader := data.NewLoader(corpus.Val, cfg.Train.BatchSize, false, 0)

	hist, err := trainer.Fit(ctx, trainLoader, valLoader)
	if err != nil {
		return nil, fmt.Errorf("training failed: %w", err)
	}

	res := &Result{History: hist}
	if cfg.Plot.Dir != "" {
		if err := os.MkdirAll(cfg.Plot.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create plot dir: %w", err)
		}
		path := filepath.Join(cfg.Plot.Dir, "loss.png")
		if err := plot.LossCurve(path, hist.Train, hist.Val); err != nil {
			return nil, err
		}
		res.Files = append(res.Files, path)
	}

	translator := seq2seq.NewTranslator(model, tokenize.Default, corpus.Train.SrcVocab, corpus.Train.TgtVocab, cfg.Decode.MaxLen)
	for i, sentence := range cfg.Decode.Sentences {
		tr := translator.Translate(sentence)
		res.Translations = append(res.Translations, tr)

		fmt.Fprintf(out, "\nSource: %s\n", sentence)
		fmt.Fprintf(out, "Translation: %s\n", tr.Text())

		if cfg.Plot.Dir == "" {
			continue
		}
		path := filepath.Join(cfg.Plot.Dir, "attention_"+strconv.Itoa(i+1)+".png")
		if err := plot.AttentionHeatmap(path, sourceLabels(tr), tr.Tokens, tr.Attention, cfg.Plot.HeatmapCells); err != nil {
			logger.Warn("skipping attention plot", zap.String("file", path), zap.Error(err))
			continue
		}
		res.Files = append(res.Files, path)
	}
	return res, nil
}

// sourceLabels names every attended source position, markers included.
func sourceLabels(tr seq2seq.Translation) []string {
	labels := make([]string, 0, len(tr.Source)+2)
	labels = append(labels, vocab.SOSToken)
	labels = append(labels, tr.Source...)
	return append(labels, vocab.EOSToken)
}
