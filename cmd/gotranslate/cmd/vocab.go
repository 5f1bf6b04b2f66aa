package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/FlavioCFOliveira/GoTranslate/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab [corpus files...]",
	Short: "Print corpus and vocabulary statistics",
	Long: `Load and split the corpus exactly as train does, then print the split sizes,
both vocabulary sizes and the first tokens of each vocabulary.`,
	RunE: runVocab,
}

func init() {
	rootCmd.AddCommand(vocabCmd)

	vocabCmd.Flags().Int("top", 20, "number of tokens to list per vocabulary")
}

func runVocab(cmd *cobra.Command, args []string) error {
	logger := newLogger(v)
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := loadConfig(args)
	if err != nil {
		logger.Error("bad configuration", zap.Error(err))
		return err
	}

	corpus, err := app.Prepare(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to prepare corpus", zap.Error(err))
		return err
	}

	top, _ := cmd.Flags().GetInt("top")
	out := os.Stdout
	fmt.Fprintf(out, "Train pairs: %d\n", corpus.Train.Len())
	fmt.Fprintf(out, "Val pairs:   %d\n", corpus.Val.Len())
	fmt.Fprintf(out, "%s vocab: %d tokens\n", cfg.SrcLang, corpus.Train.SrcVocab.Len())
	fmt.Fprintf(out, "  %s\n", strings.Join(head(corpus.Train.SrcVocab.Tokens(), top), " "))
	fmt.Fprintf(out, "%s vocab: %d tokens\n", cfg.TgtLang, corpus.Train.TgtVocab.Len())
	fmt.Fprintf(out, "  %s\n", strings.Join(head(corpus.Train.TgtVocab.Tokens(), top), " "))
	return nil
}

func head(tokens []string, n int) []string {
	if n < 0 || n > len(tokens) {
		return tokens
	}
	return tokens[:n]
}
