package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/FlavioCFOliveira/GoTranslate/internal/app"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var trainCmd = &cobra.Command{
	Use:   "train [corpus files...]",
	Short: "Train the model and translate the sample sentences",
	Long: `Load the corpus, split it 80/20 with a fixed seed, build vocabularies from
the training split, train for the configured number of epochs and print
"Epoch n/N — Train loss: x — Val loss: y" after each one.

Corpus files may be parquet (nested <column>.<lang> fields), CSV or TSV
(header naming the language codes). Without arguments the files listed
under data.files are used.

Examples:
  # Train on the two Europarl shards in the current directory
  gotranslate train

  # Quick run on a CSV file with a smaller model
  gotranslate train --epochs 1 --emb-dim 32 --hid-dim 32 pairs.csv

  # Write images to ./out and keep a CSV history
  gotranslate train --plot-dir out --history-csv out/history.csv`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().Int("epochs", 3, "number of training epochs")
	trainCmd.Flags().Int("batch-size", 8, "minibatch size")
	trainCmd.Flags().Int("emb-dim", 128, "embedding size")
	trainCmd.Flags().Int("hid-dim", 128, "LSTM hidden size")
	trainCmd.Flags().Int("layers", 1, "number of LSTM layers")
	trainCmd.Flags().Float64("lr", 0.001, "Adam learning rate")
	trainCmd.Flags().Int("patience", 0, "stop after this many epochs without validation improvement (0 disables)")
	trainCmd.Flags().String("plot-dir", ".", "directory for loss.png and attention_<i>.png (empty disables plots)")
	trainCmd.Flags().String("history-csv", "", "write per-epoch losses to this CSV file")
	trainCmd.Flags().Bool("summary", false, "print the parameter table before training")

	mustBindPFlag("train.epochs", trainCmd.Flags().Lookup("epochs"))
	mustBindPFlag("train.batch_size", trainCmd.Flags().Lookup("batch-size"))
	mustBindPFlag("model.emb_dim", trainCmd.Flags().Lookup("emb-dim"))
	mustBindPFlag("model.hid_dim", trainCmd.Flags().Lookup("hid-dim"))
	mustBindPFlag("model.layers", trainCmd.Flags().Lookup("layers"))
	mustBindPFlag("train.lr", trainCmd.Flags().Lookup("lr"))
	mustBindPFlag("train.patience", trainCmd.Flags().Lookup("patience"))
	mustBindPFlag("plot.dir", trainCmd.Flags().Lookup("plot-dir"))
	mustBindPFlag("train.history_csv", trainCmd.Flags().Lookup("history-csv"))
}

func runTrain(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	logger := newLogger(v)
	defer func() {
		_ = logger.Sync()
	}()

	cfg, err := loadConfig(args)
	if err != nil {
		logger.Error("bad configuration", zap.Error(err))
		return err
	}

	summary, _ := cmd.Flags().GetBool("summary")
	res, err := app.Run(ctx, cfg, logger, os.Stdout, app.WithSummary(summary))
	if err != nil {
		logger.Error("run failed", zap.Error(err))
		return err
	}
	for _, f := range res.Files {
		logger.Info("wrote", zap.String("file", f))
	}
	return nil
}
