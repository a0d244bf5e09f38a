package index

import (
	"context"
	"fmt"
	"testing"

	"github.com/cardforge/cardforge/internal/embed"
	"github.com/cardforge/cardforge/internal/types"
)

func makeChunks(n int) []types.Chunk {
	chunks := make([]types.Chunk, n)
	for i := range chunks {
		chunks[i] = types.Chunk{
			ID:           i,
			Text:         fmt.Sprintf("chunk %d body text", i),
			ChapterTitle: "Chapter 1",
		}
	}
	return chunks
}

func TestBuild_FillsEmbeddingsInPlace(t *testing.T) {
	chunks := makeChunks(5)
	ix := New(Config{Embedder: embed.NewMockEmbedder(8), BatchSize: 2})

	if err := ix.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if ix.Size() != 5 {
		t.Errorf("indexed %d chunks, want 5", ix.Size())
	}
	for _, ch := range chunks {
		if len(ch.Embedding) != 8 {
			t.Errorf("chunk %d embedding dimension = %d, want 8", ch.ID, len(ch.Embedding))
		}
	}
}

func TestBuild_FailedBatchExcludedNotFatal(t *testing.T) {
	chunks := makeChunks(6)
	mock := embed.NewMockEmbedder(8)
	mock.FailOn("chunk 3")
	ix := New(Config{Embedder: mock, BatchSize: 2})

	if err := ix.Build(context.Background(), chunks); err != nil {
		t.Fatalf("Build should tolerate a failed batch, got: %v", err)
	}
	// Batch size 2: the batch holding chunks 2 and 3 fails, the rest survive.
	if ix.Size() != 4 {
		t.Errorf("indexed %d chunks, want 4", ix.Size())
	}
	if chunks[3].Embedding != nil {
		t.Error("failed chunk should have no embedding")
	}
	if chunks[0].Embedding == nil {
		t.Error("surviving chunk lost its embedding")
	}
}

func TestBuild_AllBatchesFailedErrors(t *testing.T) {
	chunks := makeChunks(3)
	mock := embed.NewMockEmbedder(8)
	mock.FailOn("chunk")
	ix := New(Config{Embedder: mock})

	if err := ix.Build(context.Background(), chunks); err == nil {
		t.Error("expected error when every batch fails")
	}
}

func TestQuery_RanksExactMatchFirst(t *testing.T) {
	chunks := makeChunks(10)
	ix := New(Config{Embedder: embed.NewMockEmbedder(16)})
	ctx := context.Background()
	if err := ix.Build(ctx, chunks); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Querying with a chunk's own text must rank that chunk first: the mock
	// embedder is deterministic, so identical text means identical vectors.
	matches, err := ix.Query(ctx, chunks[7].Text, 3, nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("got %d matches, want 3", len(matches))
	}
	if matches[0].ChunkID != 7 {
		t.Errorf("top match is chunk %d, want 7", matches[0].ChunkID)
	}
	if matches[0].Similarity < 0.999 {
		t.Errorf("self-similarity = %f, want ~1", matches[0].Similarity)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Similarity > matches[i-1].Similarity {
			t.Error("matches not sorted by descending similarity")
		}
	}
}

func TestQuery_ExcludesIDs(t *testing.T) {
	chunks := makeChunks(5)
	ix := New(Config{Embedder: embed.NewMockEmbedder(16)})
	ctx := context.Background()
	if err := ix.Build(ctx, chunks); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	exclude := map[int]bool{2: true, 3: true}
	matches, err := ix.Query(ctx, chunks[2].Text, 10, exclude)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(matches) != 3 {
		t.Errorf("got %d matches, want 3 after exclusion", len(matches))
	}
	for _, m := range matches {
		if exclude[m.ChunkID] {
			t.Errorf("excluded chunk %d appeared in results", m.ChunkID)
		}
	}
}

func TestQuery_EmptyIndex(t *testing.T) {
	ix := New(Config{Embedder: embed.NewMockEmbedder(8)})
	matches, err := ix.Query(context.Background(), "anything", 5, nil)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if matches != nil {
		t.Errorf("expected no matches from an empty index, got %d", len(matches))
	}
}
