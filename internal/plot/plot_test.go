package plot

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func assertPNG(t *testing.T, path string) {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, pngMagic), "%s is not a PNG", path)
}

func TestLossCurve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "loss.png")
	require.NoError(t, LossCurve(path, []float64{5.1, 4.2, 3.9}, []float64{5.0, 4.6, 4.4}))
	assertPNG(t, path)
}

func TestLossCurveErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, LossCurve(filepath.Join(dir, "a.png"), nil, nil))
	assert.Error(t, LossCurve(filepath.Join(dir, "b.png"), []float64{1}, []float64{1, 2}))
}

func TestAttentionHeatmap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attention_1.png")
	source := []string{"<sos>", "hej", "verden", "<eos>"}
	output := []string{"hello", "world", "<eos>"}
	weights := [][]float64{
		{0.1, 0.7, 0.1, 0.1},
		{0.05, 0.1, 0.8, 0.05},
		{0.1, 0.1, 0.1, 0.7},
	}
	require.NoError(t, AttentionHeatmap(path, source, output, weights, 10))
	assertPNG(t, path)
}

func TestAttentionHeatmapCropsToMaxCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crop.png")
	n := 15
	source := make([]string, n)
	output := make([]string, n)
	weights := make([][]float64, n)
	for i := 0; i < n; i++ {
		source[i] = "s"
		output[i] = "o"
		weights[i] = make([]float64, n)
		weights[i][i] = 1
	}
	require.NoError(t, AttentionHeatmap(path, source, output, weights, 10))
	assertPNG(t, path)
}

func TestAttentionHeatmapErrors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, AttentionHeatmap(filepath.Join(dir, "a.png"), []string{"a"}, nil, nil, 10))
	assert.Error(t, AttentionHeatmap(filepath.Join(dir, "b.png"), []string{"a", "b"}, []string{"x"}, [][]float64{{1}}, 10))
}
