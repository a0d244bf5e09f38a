// Package index builds an in-memory vector index over a run's chunks and
// answers cosine-similarity queries against it. The index lives for a single
// pipeline run; embeddings are written back onto the chunks in place.
package index

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/cardforge/cardforge/internal/embed"
	"github.com/cardforge/cardforge/internal/types"
)

const defaultBatchSize = 16

// Match is a ranked retrieval result.
type Match struct {
	ChunkID      int
	Similarity   float64
	Text         string
	ChapterTitle string
}

// Index holds normalized chunk embeddings for one run.
type Index struct {
	embedder  embed.Embedder
	logger    *slog.Logger
	batchSize int

	entries []entry
}

type entry struct {
	chunk  *types.Chunk
	vector []float32
}

// Config configures an Index.
type Config struct {
	Embedder  embed.Embedder
	Logger    *slog.Logger // Optional
	BatchSize int          // Texts per embedding call (default 16)
}

// New creates an empty Index.
func New(cfg Config) *Index {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	return &Index{
		embedder:  cfg.Embedder,
		logger:    cfg.Logger,
		batchSize: cfg.BatchSize,
	}
}

// Build embeds all chunks in bounded batches and indexes the results,
// filling each chunk's Embedding field in place. A failed batch excludes its
// chunks from the index and is logged; it does not fail the build. Build
// errors only when every batch failed for a non-empty input.
func (ix *Index) Build(ctx context.Context, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	failed := 0
	for start := 0; start < len(chunks); start += ix.batchSize {
		end := start + ix.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Text
		}

		vectors, err := ix.embedder.Embed(ctx, texts)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			ix.logger.Warn("embedding batch failed, excluding chunks from index",
				"first_chunk", batch[0].ID, "count", len(batch), "error", err)
			failed += len(batch)
			continue
		}
		if len(vectors) != len(batch) {
			ix.logger.Warn("embedder returned wrong vector count, excluding batch",
				"want", len(batch), "got", len(vectors))
			failed += len(batch)
			continue
		}

		for i := range batch {
			vec := embed.Normalize(vectors[i])
			batch[i].Embedding = vec
			ix.entries = append(ix.entries, entry{chunk: &batch[i], vector: vec})
		}
	}

	if len(ix.entries) == 0 {
		return fmt.Errorf("embedding failed for all %d chunks", len(chunks))
	}
	if failed > 0 {
		ix.logger.Warn("index built with exclusions", "indexed", len(ix.entries), "excluded", failed)
	} else {
		ix.logger.Info("index built", "chunks", len(ix.entries))
	}
	return nil
}

// Size returns the number of indexed chunks.
func (ix *Index) Size() int {
	return len(ix.entries)
}

// Query embeds the given text and returns the top k most similar chunks by
// cosine similarity, skipping any chunk ID in exclude.
func (ix *Index) Query(ctx context.Context, text string, k int, exclude map[int]bool) ([]Match, error) {
	if k <= 0 || len(ix.entries) == 0 {
		return nil, nil
	}

	vectors, err := ix.embedder.Embed(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query failed: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	query := embed.Normalize(vectors[0])

	matches := make([]Match, 0, len(ix.entries))
	for _, e := range ix.entries {
		if exclude[e.chunk.ID] {
			continue
		}
		matches = append(matches, Match{
			ChunkID:      e.chunk.ID,
			Similarity:   dot(query, e.vector),
			Text:         e.chunk.Text,
			ChapterTitle: e.chunk.ChapterTitle,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].ChunkID < matches[j].ChunkID
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// dot computes the inner product of two vectors. With both sides
// L2-normalized this is the cosine similarity.
func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
