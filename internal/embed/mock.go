package embed

import (
	"context"
	"crypto/sha256"
	"fmt"
	"strings"
	"sync"
)

// MockEmbedder is a deterministic Embedder for tests. Vectors are derived
// from the text's hash, so identical texts always embed identically and
// similar texts do not collide by accident. Per-text failures can be
// scripted with FailOn.
type MockEmbedder struct {
	Dim int

	mu      sync.Mutex
	failOn  []string
	nCalled int
}

// NewMockEmbedder creates a mock embedder with the given dimension.
func NewMockEmbedder(dim int) *MockEmbedder {
	if dim <= 0 {
		dim = 8
	}
	return &MockEmbedder{Dim: dim}
}

// FailOn makes Embed return an error for any batch containing a text with
// the given substring.
func (e *MockEmbedder) FailOn(substring string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failOn = append(e.failOn, substring)
}

// Calls returns the number of Embed invocations.
func (e *MockEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.nCalled
}

// Dimension returns the embedding dimension.
func (e *MockEmbedder) Dimension() int {
	return e.Dim
}

// Embed returns one deterministic vector per input text.
func (e *MockEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.nCalled++
	failOn := make([]string, len(e.failOn))
	copy(failOn, e.failOn)
	e.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		for _, sub := range failOn {
			if strings.Contains(text, sub) {
				return nil, fmt.Errorf("mock embedder configured to fail on %q", sub)
			}
		}
		out[i] = e.vectorFor(text)
	}
	return out, nil
}

func (e *MockEmbedder) vectorFor(text string) []float32 {
	sum := sha256.Sum256([]byte(text))
	vec := make([]float32, e.Dim)
	for i := range vec {
		vec[i] = float32(sum[i%len(sum)]) - 128.0
	}
	return Normalize(vec)
}
