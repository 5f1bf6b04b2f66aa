// Package config defines the run configuration and its defaults.
//
// Values come from, in increasing priority: built-in defaults, an optional
// config file (YAML, TOML or JSON), GOTRANSLATE_* environment variables and
// command line flags bound by the CLI.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g.
// GOTRANSLATE_TRAIN_EPOCHS=5.
const EnvPrefix = "GOTRANSLATE"

// DefaultSentences are translated after training.
var DefaultSentences = []string{
	"Europa-Parlamentet er den direkte valgte lovgivende forsamling i Den Europæiske Union.",
	"Vi mener, at fred og velstand i Europa kun kan opnås gennem samarbejde.",
	"Denne aftale vil styrke relationerne mellem vores lande.",
}

// Config is the full run configuration.
type Config struct {
	SrcLang string       `mapstructure:"src_lang"`
	TgtLang string       `mapstructure:"tgt_lang"`
	Data    DataConfig   `mapstructure:"data"`
	Split   SplitConfig  `mapstructure:"split"`
	Model   ModelConfig  `mapstructure:"model"`
	Train   TrainConfig  `mapstructure:"train"`
	Eval    EvalConfig   `mapstructure:"eval"`
	Decode  DecodeConfig `mapstructure:"decode"`
	Plot    PlotConfig   `mapstructure:"plot"`
	Log     LogConfig    `mapstructure:"log"`
}

// DataConfig selects and trims the corpus.
type DataConfig struct {
	Files    []string `mapstructure:"files"`
	Column   string   `mapstructure:"column"`
	MaxTrain int      `mapstructure:"max_train"`
	MaxVal   int      `mapstructure:"max_val"`
	MinFreq  int      `mapstructure:"min_freq"`
}

// SplitConfig controls the train/validation split.
type SplitConfig struct {
	Fraction float64 `mapstructure:"fraction"`
	Seed     int64   `mapstructure:"seed"`
}

// ModelConfig sizes the network.
type ModelConfig struct {
	EmbDim     int     `mapstructure:"emb_dim"`
	HidDim     int     `mapstructure:"hid_dim"`
	Layers     int     `mapstructure:"layers"`
	EncDropout float64 `mapstructure:"enc_dropout"`
	DecDropout float64 `mapstructure:"dec_dropout"`
	Seed       uint64  `mapstructure:"seed"`
}

// TrainConfig controls the training loop.
type TrainConfig struct {
	BatchSize      int     `mapstructure:"batch_size"`
	Epochs         int     `mapstructure:"epochs"`
	TeacherForcing float64 `mapstructure:"teacher_forcing"`
	Clip           float64 `mapstructure:"clip"`
	LR             float64 `mapstructure:"lr"`
	// Patience enables early stopping on validation loss when positive.
	Patience   int    `mapstructure:"patience"`
	HistoryCSV string `mapstructure:"history_csv"`
}

// EvalConfig controls validation passes.
type EvalConfig struct {
	TeacherForcing float64 `mapstructure:"teacher_forcing"`
}

// DecodeConfig controls greedy translation of the sample sentences.
type DecodeConfig struct {
	MaxLen    int      `mapstructure:"max_len"`
	Sentences []string `mapstructure:"sentences"`
}

// PlotConfig controls image output. An empty Dir disables plots.
type PlotConfig struct {
	Dir          string `mapstructure:"dir"`
	HeatmapCells int    `mapstructure:"heatmap_cells"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	Style string `mapstructure:"style"`
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("src_lang", "da")
	v.SetDefault("tgt_lang", "en")

	v.SetDefault("data.files", []string{"train-00000-of-00002.parquet", "train-00001-of-00002.parquet"})
	v.SetDefault("data.column", "translation")
	v.SetDefault("data.max_train", 5000)
	v.SetDefault("data.max_val", 1000)
	v.SetDefault("data.min_freq", 1)

	v.SetDefault("split.fraction", 0.8)
	v.SetDefault("split.seed", 42)

	v.SetDefault("model.emb_dim", 128)
	v.SetDefault("model.hid_dim", 128)
	v.SetDefault("model.layers", 1)
	v.SetDefault("model.enc_dropout", 0.3)
	v.SetDefault("model.dec_dropout", 0.3)
	v.SetDefault("model.seed", 42)

	v.SetDefault("train.batch_size", 8)
	v.SetDefault("train.epochs", 3)
	v.SetDefault("train.teacher_forcing", 0.5)
	v.SetDefault("train.clip", 1.0)
	v.SetDefault("train.lr", 0.001)
	v.SetDefault("train.patience", 0)
	v.SetDefault("train.history_csv", "")

	v.SetDefault("eval.teacher_forcing", 0.4)

	v.SetDefault("decode.max_len", 50)
	v.SetDefault("decode.sentences", DefaultSentences)

	v.SetDefault("plot.dir", ".")
	v.SetDefault("plot.heatmap_cells", 10)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.style", "terminal")
}

// NewViper returns a viper instance with defaults and environment overrides
// configured.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := Load(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.SrcLang != "" && c.TgtLang != "", "src_lang and tgt_lang are required")
	check(c.SrcLang != c.TgtLang, "src_lang and tgt_lang must differ")
	check(c.Data.MinFreq >= 1, "data.min_freq must be at least 1, got %d", c.Data.MinFreq)
	check(c.Split.Fraction > 0 && c.Split.Fraction <= 1, "split.fraction must be in (0, 1], got %v", c.Split.Fraction)
	check(c.Model.EmbDim > 0 && c.Model.HidDim > 0, "model.emb_dim and model.hid_dim must be positive")
	check(c.Model.Layers >= 1, "model.layers must be at least 1, got %d", c.Model.Layers)
	check(c.Model.EncDropout >= 0 && c.Model.EncDropout < 1, "model.enc_dropout must be in [0, 1)")
	check(c.Model.DecDropout >= 0 && c.Model.DecDropout < 1, "model.dec_dropout must be in [0, 1)")
	check(c.Train.BatchSize >= 1, "train.batch_size must be at least 1, got %d", c.Train.BatchSize)
	check(c.Train.Epochs >= 1, "train.epochs must be at least 1, got %d", c.Train.Epochs)
	check(c.Train.TeacherForcing >= 0 && c.Train.TeacherForcing <= 1, "train.teacher_forcing must be in [0, 1]")
	check(c.Eval.TeacherForcing >= 0 && c.Eval.TeacherForcing <= 1, "eval.teacher_forcing must be in [0, 1]")
	check(c.Train.Clip >= 0, "train.clip must not be negative")
	check(c.Train.LR > 0, "train.lr must be positive")
	check(c.Decode.MaxLen >= 1, "decode.max_len must be at least 1, got %d", c.Decode.MaxLen)

	return errors.Join(errs...)
}
