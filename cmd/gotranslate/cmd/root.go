package cmd

import (
	"fmt"
	"os"

	"github.com/FlavioCFOliveira/GoTranslate/internal/config"
	"github.com/FlavioCFOliveira/GoTranslate/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version is set by main.
var Version = "dev"

var (
	cfgFile string
	v       = config.NewViper()
)

var rootCmd = &cobra.Command{
	Use:   "gotranslate",
	Short: "Train a Danish to English neural translation model",
	Long: `gotranslate trains an LSTM encoder / attention / LSTM decoder model on a
parallel corpus, reports train and validation loss per epoch, draws the loss
curve and translates a few sample sentences with attention heatmaps.

Settings come from defaults, an optional --config file, GOTRANSLATE_*
environment variables (e.g. GOTRANSLATE_TRAIN_EPOCHS=5) and flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-style", "terminal", "log style (terminal, json, noop)")
	rootCmd.PersistentFlags().String("src-lang", "da", "source language code")
	rootCmd.PersistentFlags().String("tgt-lang", "en", "target language code")
	rootCmd.PersistentFlags().String("column", "translation", "parquet struct column holding the languages")
	rootCmd.PersistentFlags().Int("max-train", 5000, "maximum number of training pairs")
	rootCmd.PersistentFlags().Int("max-val", 1000, "maximum number of validation pairs")

	mustBindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	mustBindPFlag("log.style", rootCmd.PersistentFlags().Lookup("log-style"))
	mustBindPFlag("src_lang", rootCmd.PersistentFlags().Lookup("src-lang"))
	mustBindPFlag("tgt_lang", rootCmd.PersistentFlags().Lookup("tgt-lang"))
	mustBindPFlag("data.column", rootCmd.PersistentFlags().Lookup("column"))
	mustBindPFlag("data.max_train", rootCmd.PersistentFlags().Lookup("max-train"))
	mustBindPFlag("data.max_val", rootCmd.PersistentFlags().Lookup("max-val"))
}

func mustBindPFlag(key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("binding flag %s: %v", key, err))
	}
}

func initConfig() error {
	if cfgFile == "" {
		return nil
	}
	v.SetConfigFile(cfgFile)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", cfgFile, err)
	}
	return nil
}

// loadConfig decodes the merged settings. Positional args replace the
// configured corpus files.
func loadConfig(args []string) (*config.Config, error) {
	if len(args) > 0 {
		v.Set("data.files", args)
	}
	return config.Load(v)
}

func newLogger(vp *viper.Viper) *zap.Logger {
	return logging.NewLogger(&logging.Config{
		Level: logging.Level(vp.GetString("log.level")),
		Style: logging.Style(vp.GetString("log.style")),
	})
}
