package layer

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Embedding maps integer token ids to dense vectors.
type Embedding struct {
	numEmbeddings int
	embeddingDim  int

	// Learnable weight matrix [numEmbeddings, embeddingDim]
	weight *Param
}

// NewEmbedding creates an embedding table.
// numEmbeddings: size of the dictionary of embeddings
// embeddingDim: size of each embedding vector
func NewEmbedding(name string, numEmbeddings, embeddingDim int, rng *RNG) *Embedding {
	weight := newParam(name+".weight", numEmbeddings*embeddingDim)
	rng.Uniform(weight.Value, math.Sqrt(3.0/float64(embeddingDim)))

	return &Embedding{
		numEmbeddings: numEmbeddings,
		embeddingDim:  embeddingDim,
		weight:        weight,
	}
}

// index panics on ids outside the table.
func (e *Embedding) index(id int) int {
	if id < 0 || id >= e.numEmbeddings {
		panic(fmt.Sprintf("Embedding: id %d out of range [0, %d)", id, e.numEmbeddings))
	}
	return id
}

// Forward returns a copy of the embedding vector for id.
func (e *Embedding) Forward(id int) []float64 {
	start := e.index(id) * e.embeddingDim
	out := make([]float64, e.embeddingDim)
	copy(out, e.weight.Value[start:start+e.embeddingDim])
	return out
}

// Backward accumulates grad into the row used for id. Gradients are sparse:
// only rows that were looked up receive updates.
func (e *Embedding) Backward(id int, grad []float64) {
	start := e.index(id) * e.embeddingDim
	floats.Add(e.weight.Grad[start:start+e.embeddingDim], grad)
}

// Params returns the weight table.
func (e *Embedding) Params() []*Param {
	return []*Param{e.weight}
}

// NumEmbeddings returns the vocabulary size.
func (e *Embedding) NumEmbeddings() int {
	return e.numEmbeddings
}

// Dim returns the embedding dimension.
func (e *Embedding) Dim() int {
	return e.embeddingDim
}

// Row returns the live embedding vector for id (not a copy).
func (e *Embedding) Row(id int) []float64 {
	start := e.index(id) * e.embeddingDim
	return e.weight.Value[start : start+e.embeddingDim]
}
