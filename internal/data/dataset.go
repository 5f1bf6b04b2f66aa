package data

import (
	"math/rand"

	"github.com/FlavioCFOliveira/GoTranslate/internal/tokenize"
	"github.com/FlavioCFOliveira/GoTranslate/internal/vocab"
)

// Dataset holds tokenized sentence pairs and the vocabularies used to encode
// them.
type Dataset struct {
	Src [][]string
	Tgt [][]string

	SrcVocab *vocab.Vocabulary
	TgtVocab *vocab.Vocabulary
}

// NewDataset tokenizes pairs with the given tokenizers. Vocabularies are
// attached separately with WithVocab so the validation split can reuse the
// ones built on training data.
func NewDataset(pairs []Pair, srcTok, tgtTok tokenize.Tokenizer) *Dataset {
	return &Dataset{
		Src: tokenize.All(srcTok, Sources(pairs)),
		Tgt: tokenize.All(tgtTok, Targets(pairs)),
	}
}

// BuildVocab builds one vocabulary per language from the dataset's own
// sentences and attaches them.
func (d *Dataset) BuildVocab(minFreq int) {
	d.SrcVocab = vocab.Build(d.Src, minFreq)
	d.TgtVocab = vocab.Build(d.Tgt, minFreq)
}

// WithVocab attaches vocabularies built elsewhere.
func (d *Dataset) WithVocab(src, tgt *vocab.Vocabulary) *Dataset {
	d.SrcVocab = src
	d.TgtVocab = tgt
	return d
}

// Len returns the number of examples.
func (d *Dataset) Len() int {
	return len(d.Src)
}

// Example returns the encoded pair at i, both wrapped in <sos> ... <eos>.
func (d *Dataset) Example(i int) (src, tgt []int) {
	return d.SrcVocab.EncodeWithMarkers(d.Src[i]), d.TgtVocab.EncodeWithMarkers(d.Tgt[i])
}

// Batch is a padded minibatch. Src and Trg are rectangular, right-padded to
// the longest row with vocab.PadID.
type Batch struct {
	Src     [][]int
	Trg     [][]int
	SrcLens []int
	TrgLens []int
}

// Size returns the number of rows.
func (b *Batch) Size() int {
	return len(b.Src)
}

// Pad right-pads seqs to the longest sequence and returns the matrix together
// with each row's true length.
func Pad(seqs [][]int, padID int) ([][]int, []int) {
	maxLen := 0
	for _, s := range seqs {
		if len(s) > maxLen {
			maxLen = len(s)
		}
	}

	out := make([][]int, len(seqs))
	lens := make([]int, len(seqs))
	for i, s := range seqs {
		row := make([]int, maxLen)
		copy(row, s)
		for j := len(s); j < maxLen; j++ {
			row[j] = padID
		}
		out[i] = row
		lens[i] = len(s)
	}
	return out, lens
}

// Collate encodes the examples at indices and pads both sides.
func (d *Dataset) Collate(indices []int) *Batch {
	src := make([][]int, len(indices))
	tgt := make([][]int, len(indices))
	for i, idx := range indices {
		src[i], tgt[i] = d.Example(idx)
	}

	b := &Batch{}
	b.Src, b.SrcLens = Pad(src, vocab.PadID)
	b.Trg, b.TrgLens = Pad(tgt, vocab.PadID)
	return b
}

// Loader groups a dataset into batches, optionally reshuffled on every pass.
type Loader struct {
	dataset   *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewLoader creates a loader. seed only matters when shuffle is set.
func NewLoader(d *Dataset, batchSize int, shuffle bool, seed int64) *Loader {
	if batchSize < 1 {
		batchSize = 1
	}
	return &Loader{
		dataset:   d,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// NumBatches returns how many batches one pass yields. The last batch may be
// smaller than the batch size.
func (l *Loader) NumBatches() int {
	return (l.dataset.Len() + l.batchSize - 1) / l.batchSize
}

// Batches returns one pass over the dataset.
func (l *Loader) Batches() []*Batch {
	order := make([]int, l.dataset.Len())
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	}

	batches := make([]*Batch, 0, l.NumBatches())
	for start := 0; start < len(order); start += l.batchSize {
		end := start + l.batchSize
		if end > len(order) {
			end = len(order)
		}
		batches = append(batches, l.dataset.Collate(order[start:end]))
	}
	return batches
}
