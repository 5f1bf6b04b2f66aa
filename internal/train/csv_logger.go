package train

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// CSVLogger logs per-epoch losses to a CSV file.
type CSVLogger struct {
	BaseCallback
	Filename string
	Append   bool

	file   *os.File
	writer *csv.Writer
	start  time.Time
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
	}
}

func (c *CSVLogger) OnTrainBegin(t *Trainer) {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		t.Logger().Warn("csv logger: failed to open file", zap.String("file", c.Filename), zap.Error(err))
		return
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	// Write header if not appending or if file is empty
	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		if err := c.flush([]string{"epoch", "train_loss", "val_loss", "time_seconds"}); err != nil {
			t.Logger().Warn("csv logger: failed to write header", zap.String("file", c.Filename), zap.Error(err))
		}
	}
}

// flush writes record and pushes it to the file.
func (c *CSVLogger) flush(record []string) error {
	if err := c.writer.Write(record); err != nil {
		return err
	}
	c.writer.Flush()
	return c.writer.Error()
}

func (c *CSVLogger) OnEpochEnd(epoch int, trainLoss, valLoss float64, t *Trainer) {
	if c.writer == nil {
		return
	}

	elapsed := time.Since(c.start).Seconds()
	record := []string{
		strconv.Itoa(epoch),
		fmt.Sprintf("%.6f", trainLoss),
		fmt.Sprintf("%.6f", valLoss),
		fmt.Sprintf("%.2f", elapsed),
	}

	if err := c.flush(record); err != nil {
		t.Logger().Warn("csv logger: failed to write record", zap.String("file", c.Filename), zap.Error(err))
	}
}

func (c *CSVLogger) OnTrainEnd(t *Trainer) {
	if c.file != nil {
		c.writer.Flush()
		c.file.Close()
		c.file = nil
		c.writer = nil
	}
}
