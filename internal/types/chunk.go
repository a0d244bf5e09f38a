package types

const (
	// ChunkMinWords is the minimum word count for a chunk to survive filtering.
	ChunkMinWords = 30
	// ChunkMinChars is the minimum text length for a chunk to survive filtering.
	ChunkMinChars = 100
)

// Chunk is a bounded, overlap-preserving span of a chapter's text. Chunk IDs
// are sequential and stable within a pipeline run. Embedding is nil until the
// semantic index build fills it in place.
type Chunk struct {
	ID           int       `json:"id"`
	Text         string    `json:"text"`
	ChapterTitle string    `json:"chapterTitle"`
	CharCount    int       `json:"charCount"`
	WordCount    int       `json:"wordCount"`
	Entities     []string  `json:"entities,omitempty"`
	Embedding    []float32 `json:"embedding,omitempty"`
}

// MeetsMinimums reports whether the chunk satisfies the survival invariant.
func (c *Chunk) MeetsMinimums() bool {
	return c.WordCount >= ChunkMinWords && len(c.Text) >= ChunkMinChars
}
