// Package gotranslate exposes the building blocks of the translation trainer
// for use outside this module.
package gotranslate

import (
	"context"

	"github.com/FlavioCFOliveira/GoTranslate/internal/data"
	"github.com/FlavioCFOliveira/GoTranslate/internal/opt"
	"github.com/FlavioCFOliveira/GoTranslate/internal/seq2seq"
	"github.com/FlavioCFOliveira/GoTranslate/internal/tokenize"
	"github.com/FlavioCFOliveira/GoTranslate/internal/train"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
	"go.uber.org/zap"
)

// Re-export common types and functions for easier access
type (
	Model       = seq2seq.Model
	ModelConfig = seq2seq.Config
	Translator  = seq2seq.Translator
	Translation = seq2seq.Translation
	Forcing     = seq2seq.Forcing
	Vocabulary  = vocab.Vocabulary
	Tokenizer   = tokenize.Tokenizer
	Pair        = data.Pair
	Dataset     = data.Dataset
	Loader      = data.Loader
	Trainer     = train.Trainer
	TrainConfig = train.Config
	History     = train.History
	Optimizer   = opt.Optimizer
)

// Reserved vocabulary ids.
const (
	PadID = vocab.PadID
	SOSID = vocab.SOSID
	EOSID = vocab.EOSID
	UNKID = vocab.UNKID
)

// Corpus
func LoadFiles(ctx context.Context, paths []string, srcLang, tgtLang string) ([]Pair, error) {
	opts := data.DefaultLoadOptions()
	opts.SrcLang, opts.TgtLang = srcLang, tgtLang
	return data.LoadFiles(ctx, paths, opts)
}

func Split(pairs []Pair, fraction float64, seed int64) (train, val []Pair) {
	return data.Split(pairs, fraction, seed)
}

func NewDataset(pairs []Pair, tok Tokenizer) *Dataset {
	return data.NewDataset(pairs, tok, tok)
}

func NewLoader(d *Dataset, batchSize int, shuffle bool, seed int64) *Loader {
	return data.NewLoader(d, batchSize, shuffle, seed)
}

// Tokens and vocabularies
var DefaultTokenizer Tokenizer = tokenize.Default

func BuildVocab(sentences [][]string, minFreq int) *Vocabulary {
	return vocab.Build(sentences, minFreq)
}

// Model
func NewModel(cfg ModelConfig) (*Model, error) {
	return seq2seq.NewModel(cfg)
}

func NewTranslator(m *Model, src, trg *Vocabulary, maxLen int) *Translator {
	return seq2seq.NewTranslator(m, tokenize.Default, src, trg, maxLen)
}

// Teacher forcing
var (
	AlwaysForce Forcing = seq2seq.AlwaysForce
	NeverForce  Forcing = seq2seq.NeverForce
)

// Optimizers
func Adam(lr float64) Optimizer {
	return opt.NewAdam(lr)
}

func SGD(lr float64) Optimizer {
	return opt.SGD{LearningRate: lr}
}

// Training
type Callback = train.Callback

func DefaultTrainConfig() TrainConfig {
	return train.DefaultConfig()
}

func NewTrainer(m *Model, optimizer Optimizer, cfg TrainConfig, logger *zap.Logger, callbacks ...Callback) *Trainer {
	return train.New(m, optimizer, cfg, logger, callbacks...)
}

func EarlyStopping(patience int, minDelta float64) *train.EarlyStopping {
	return train.NewEarlyStopping(patience, minDelta)
}

func CSVLogger(filename string) Callback {
	return train.NewCSVLogger(filename, false)
}

func Logger(interval int) Callback {
	return train.LogCallback{Interval: interval}
}
