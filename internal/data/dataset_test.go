package data

import (
	"sort"
	"testing"

	"github.com/FlavioCFOliveira/GoTranslate/internal/tokenize"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPadShape(t *testing.T) {
	out, lens := Pad([][]int{{1, 4, 2}, {1, 5, 6, 7, 2}}, vocab.PadID)

	require.Len(t, out, 2)
	assert.Equal(t, []int{1, 4, 2, 0, 0}, out[0])
	assert.Equal(t, []int{1, 5, 6, 7, 2}, out[1])
	assert.Equal(t, []int{3, 5}, lens)
}

func TestPadOnlyTrailing(t *testing.T) {
	seqs := [][]int{{1, 2}, {1, 9, 9, 9, 2}, {1, 9, 2}}
	out, lens := Pad(seqs, vocab.PadID)
	for i, row := range out {
		for j, id := range row {
			if j >= lens[i] {
				assert.Equal(t, vocab.PadID, id)
			} else {
				assert.NotEqual(t, vocab.PadID, id)
			}
		}
	}
}

func newTestDataset() *Dataset {
	pairs := []Pair{
		{"hej", "hello"},
		{"god morgen", "good morning"},
		{"tak", "thanks"},
		{"ja tak", "yes please"},
		{"nej", "no"},
	}
	d := NewDataset(pairs, tokenize.Default, tokenize.Default)
	d.BuildVocab(1)
	return d
}

func TestDatasetExample(t *testing.T) {
	d := newTestDataset()
	require.Equal(t, 5, d.Len())

	src, tgt := d.Example(1)
	assert.Equal(t, []int{vocab.SOSID, d.SrcVocab.ID("god"), d.SrcVocab.ID("morgen"), vocab.EOSID}, src)
	assert.Equal(t, []int{vocab.SOSID, d.TgtVocab.ID("good"), d.TgtVocab.ID("morning"), vocab.EOSID}, tgt)
}

func TestDatasetWithVocab(t *testing.T) {
	train := newTestDataset()
	val := NewDataset([]Pair{{"hej igen", "hello again"}}, tokenize.Default, tokenize.Default).
		WithVocab(train.SrcVocab, train.TgtVocab)

	src, _ := val.Example(0)
	assert.Equal(t, []int{vocab.SOSID, train.SrcVocab.ID("hej"), vocab.UNKID, vocab.EOSID}, src)
}

func TestCollate(t *testing.T) {
	d := newTestDataset()
	b := d.Collate([]int{0, 1})

	assert.Equal(t, 2, b.Size())
	assert.Equal(t, []int{3, 4}, b.SrcLens)
	assert.Len(t, b.Src[0], 4)
	assert.Equal(t, vocab.PadID, b.Src[0][3])
	assert.Len(t, b.Trg[1], 4)
}

func TestLoaderBatches(t *testing.T) {
	d := newTestDataset()
	l := NewLoader(d, 2, false, 0)

	assert.Equal(t, 3, l.NumBatches())
	batches := l.Batches()
	require.Len(t, batches, 3)
	assert.Equal(t, 2, batches[0].Size())
	assert.Equal(t, 1, batches[2].Size())

	// Without shuffling the first row is the first example.
	src, _ := d.Example(0)
	assert.Equal(t, src, batches[0].Src[0][:len(src)])
}

func TestLoaderShuffleCoversDataset(t *testing.T) {
	d := newTestDataset()
	l := NewLoader(d, 2, true, 42)

	var firsts []int
	for _, b := range l.Batches() {
		for _, row := range b.Src {
			firsts = append(firsts, row[1])
		}
	}
	var want []int
	for i := 0; i < d.Len(); i++ {
		src, _ := d.Example(i)
		want = append(want, src[1])
	}
	sort.Ints(firsts)
	sort.Ints(want)
	assert.Equal(t, want, firsts)
}
