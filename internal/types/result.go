package types

// Result is the output contract handed to the persistence collaborator.
// ChunkMapping lets the collaborator resolve a card's SourceChunks without
// re-running the chunker.
type Result struct {
	Cards        []Card         `json:"cards"`
	Chapters     []Chapter      `json:"chapters"`
	ChunkMapping map[int]*Chunk `json:"chunkMapping"`
}
