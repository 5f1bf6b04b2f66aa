package train

import (
	"fmt"
	"io"
	"math"

	"go.uber.org/zap"
)

// Callback defines the interface for training callbacks.
type Callback interface {
	OnTrainBegin(t *Trainer)
	OnTrainEnd(t *Trainer)
	OnEpochBegin(epoch int, t *Trainer)
	OnEpochEnd(epoch int, trainLoss, valLoss float64, t *Trainer)
	OnBatchBegin(batch int, t *Trainer)
	OnBatchEnd(batch int, loss float64, t *Trainer)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(t *Trainer)                                      {}
func (c BaseCallback) OnTrainEnd(t *Trainer)                                        {}
func (c BaseCallback) OnEpochBegin(epoch int, t *Trainer)                           {}
func (c BaseCallback) OnEpochEnd(epoch int, trainLoss, valLoss float64, t *Trainer) {}
func (c BaseCallback) OnBatchBegin(batch int, t *Trainer)                           {}
func (c BaseCallback) OnBatchEnd(batch int, loss float64, t *Trainer)               {}

// EarlyStopping stops training when the validation loss has stopped
// improving.
type EarlyStopping struct {
	BaseCallback
	Patience  int
	Threshold float64

	bestLoss     float64
	numBadEpochs int
	Stopped      bool
}

func NewEarlyStopping(patience int, threshold float64) *EarlyStopping {
	return &EarlyStopping{
		Patience:  patience,
		Threshold: threshold,
		bestLoss:  math.MaxFloat64,
	}
}

func (c *EarlyStopping) OnEpochEnd(epoch int, trainLoss, valLoss float64, t *Trainer) {
	if valLoss < c.bestLoss-c.Threshold {
		c.bestLoss = valLoss
		c.numBadEpochs = 0
	} else {
		c.numBadEpochs++
	}

	if c.Patience > 0 && c.numBadEpochs >= c.Patience {
		t.Logger().Info("early stopping",
			zap.Int("epoch", epoch),
			zap.Float64("val_loss", valLoss),
			zap.Int("patience", c.Patience))
		c.Stopped = true
		t.Stop()
	}
}

// Printer writes one line per epoch in the form
// "Epoch 1/3 — Train loss: 5.123 — Val loss: 4.988".
type Printer struct {
	BaseCallback
	W      io.Writer
	Epochs int
}

func (c Printer) OnEpochEnd(epoch int, trainLoss, valLoss float64, t *Trainer) {
	fmt.Fprintf(c.W, "Epoch %d/%d — Train loss: %.3f — Val loss: %.3f\n", epoch, c.Epochs, trainLoss, valLoss)
}

// LogCallback logs training progress through zap.
type LogCallback struct {
	BaseCallback
	// Interval is how many batches pass between batch logs; 0 disables them.
	Interval int
}

func (c LogCallback) OnTrainBegin(t *Trainer) {
	t.Logger().Info("training started",
		zap.Int("epochs", t.Config().Epochs),
		zap.Int("params", t.NumParams()))
}

func (c LogCallback) OnEpochEnd(epoch int, trainLoss, valLoss float64, t *Trainer) {
	t.Logger().Info("epoch finished",
		zap.Int("epoch", epoch),
		zap.Float64("train_loss", trainLoss),
		zap.Float64("val_loss", valLoss))
}

func (c LogCallback) OnBatchEnd(batch int, loss float64, t *Trainer) {
	if c.Interval > 0 && batch%c.Interval == 0 {
		t.Logger().Debug("batch", zap.Int("batch", batch), zap.Float64("loss", loss))
	}
}

func (c LogCallback) OnTrainEnd(t *Trainer) {
	t.Logger().Info("training finished")
}
