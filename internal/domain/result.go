package domain

// RetrievalHit is one ranked search result. Produced fresh per query,
// never persisted.
type RetrievalHit struct {
	DocID     string  `json:"doc_id"`
	ChunkSize int     `json:"chunk_size"`
	Seq       int     `json:"chunk_seq"`
	Text      string  `json:"chunk"`
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
}

// TokenUsage carries token accounting from a model call. Fields are pointers
// so they marshal as absent, not zero, when the provider reports nothing.
type TokenUsage struct {
	PromptTokens     *int `json:"prompt_tokens,omitempty"`
	CompletionTokens *int `json:"completion_tokens,omitempty"`
	TotalTokens      *int `json:"total_tokens,omitempty"`
}

// ConfigSummary is the JSON shape of a configuration inside a result.
type ConfigSummary struct {
	ChunkSize      int     `json:"chunk_size"`
	OverlapPercent int     `json:"overlap_percent"`
	TopK           int     `json:"top_k"`
	Model          string  `json:"model,omitempty"`
	Temperature    float64 `json:"temperature"`
}

// Summary converts a Config to its result representation.
func (c Config) Summary() ConfigSummary {
	return ConfigSummary{
		ChunkSize:      c.chunkSize,
		OverlapPercent: c.overlapPercent,
		TopK:           c.topK,
		Model:          c.modelName,
		Temperature:    c.temperature,
	}
}

// RAGResult is the outcome of one complete pipeline run.
type RAGResult struct {
	Query              string           `json:"query"`
	Answer             string           `json:"answer"`
	RetrievedChunks    []RetrievalHit   `json:"retrieved_chunks"`
	Config             ConfigSummary    `json:"config"`
	Usage              TokenUsage       `json:"usage"`
	LatencySeconds     float64          `json:"latency"`
	TotalChunksIndexed int              `json:"total_chunks_indexed"`
	Evaluation         *EvaluationScore `json:"evaluation,omitempty"`
}
