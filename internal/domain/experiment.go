package domain

// LegOutcome is the result of one configuration's run inside an experiment.
// Exactly one of Result and Error is set.
type LegOutcome struct {
	ChunkSize int        `json:"chunk_size"`
	Result    *RAGResult `json:"result,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// Failed reports whether the leg errored.
func (l LegOutcome) Failed() bool { return l.Error != "" }

// ExperimentResult aggregates all legs of one experiment, in the order the
// chunk sizes were requested.
type ExperimentResult struct {
	Query            string       `json:"query"`
	Experiments      []LegOutcome `json:"experiments"`
	TotalExperiments int          `json:"total_experiments"`
	BestChunkSize    *int         `json:"best_chunk_size,omitempty"`
}
