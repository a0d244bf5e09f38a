// Package embed provides embedding clients for the semantic index.
package embed

import (
	"context"
	"math"
)

// Embedder produces fixed-dimension, L2-normalized embeddings for text
// passages. Implementations batch internally; a failed batch fails the whole
// call, and the index layer decides what to exclude.
type Embedder interface {
	// Embed returns one vector per input text, in order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the embedding dimension.
	Dimension() int
}

// Normalize L2-normalizes a vector in place and returns it. A zero vector is
// returned unchanged.
func Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return vec
	}
	inv := 1.0 / math.Sqrt(sum)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) * inv)
	}
	return vec
}
