// Package data loads parallel corpora and turns them into padded batches.
package data

import (
	"math"
	"math/rand"
	"sort"
)

// Pair is one aligned source/target sentence pair.
type Pair struct {
	Src string
	Tgt string
}

// Split shuffles pairs with a seeded generator and returns the first
// round(fraction*n) of the shuffled order as train. Validation keeps the
// remaining pairs in their original corpus order.
func Split(pairs []Pair, fraction float64, seed int64) (train, val []Pair) {
	n := len(pairs)
	k := int(math.Round(fraction * float64(n)))
	if k < 0 {
		k = 0
	}
	if k > n {
		k = n
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)

	train = make([]Pair, k)
	for i, idx := range perm[:k] {
		train[i] = pairs[idx]
	}

	rest := append([]int(nil), perm[k:]...)
	sort.Ints(rest)
	val = make([]Pair, len(rest))
	for i, idx := range rest {
		val[i] = pairs[idx]
	}
	return train, val
}

// Cap returns at most the first n pairs. A non-positive n keeps everything.
func Cap(pairs []Pair, n int) []Pair {
	if n <= 0 || len(pairs) <= n {
		return pairs
	}
	return pairs[:n]
}

// Sources returns the source side of every pair.
func Sources(pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Src
	}
	return out
}

// Targets returns the target side of every pair.
func Targets(pairs []Pair) []string {
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.Tgt
	}
	return out
}
