// Package plot renders the loss curve and attention heatmaps as images.
package plot

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// LossCurve draws train and validation loss per epoch and saves it to path.
// The image format follows the file extension.
func LossCurve(path string, train, val []float64) error {
	if len(train) == 0 {
		return errors.New("no epochs to plot")
	}
	if len(val) != len(train) {
		return fmt.Errorf("train and val lengths differ (%d vs %d)", len(train), len(val))
	}

	p := plot.New()
	p.Title.Text = "Loss"
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Loss"
	p.Add(plotter.NewGrid())

	if err := plotutil.AddLinePoints(p,
		"Train", epochPoints(train),
		"Val", epochPoints(val),
	); err != nil {
		return fmt.Errorf("failed to add lines: %w", err)
	}

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}

func epochPoints(losses []float64) plotter.XYs {
	pts := make(plotter.XYs, len(losses))
	for i, l := range losses {
		pts[i].X = float64(i + 1)
		pts[i].Y = l
	}
	return pts
}

// attentionGrid exposes a weights matrix to plotter.HeatMap. Row 0 of the
// matrix is drawn at the top.
type attentionGrid struct {
	weights [][]float64
	cols    int
}

func (g attentionGrid) Dims() (c, r int)   { return g.cols, len(g.weights) }
func (g attentionGrid) Z(c, r int) float64 { return g.weights[len(g.weights)-1-r][c] }
func (g attentionGrid) X(c int) float64    { return float64(c) }
func (g attentionGrid) Y(r int) float64    { return float64(r) }

// AttentionHeatmap draws one row per output token and one column per source
// token, keeping at most maxCells of each, and saves it to path. weights[i]
// is the attention distribution used to emit output[i].
func AttentionHeatmap(path string, source, output []string, weights [][]float64, maxCells int) error {
	rows := len(weights)
	if len(output) < rows {
		rows = len(output)
	}
	cols := len(source)
	if maxCells > 0 {
		rows = min(rows, maxCells)
		cols = min(cols, maxCells)
	}
	if rows == 0 || cols == 0 {
		return errors.New("nothing to plot")
	}

	grid := attentionGrid{weights: make([][]float64, rows), cols: cols}
	for i := 0; i < rows; i++ {
		if len(weights[i]) < cols {
			return fmt.Errorf("attention row %d has %d columns, need %d", i, len(weights[i]), cols)
		}
		grid.weights[i] = weights[i][:cols]
	}

	p := plot.New()
	p.Title.Text = "Attention"

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min, hm.Max = 0, 1
	p.Add(hm)

	xticks := make([]plot.Tick, cols)
	for c := 0; c < cols; c++ {
		xticks[c] = plot.Tick{Value: float64(c), Label: source[c]}
	}
	yticks := make([]plot.Tick, rows)
	for r := 0; r < rows; r++ {
		yticks[r] = plot.Tick{Value: float64(r), Label: output[rows-1-r]}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
