package domain

// Chunk is a bounded span of a document's text, the unit of retrieval.
// Chunks are immutable once created and live for one indexing pass.
type Chunk struct {
	DocID      string
	Seq        int
	Text       string
	ChunkSize  int // configured token budget that produced this chunk
	TokenCount int // estimated tokens actually in Text
}
