package domain

import "fmt"

// Score dimension names, in rubric order.
var ScoreDimensions = []string{
	"relevance", "accuracy", "completeness", "coherence", "faithfulness",
}

// EvaluationRequest is one answer to be judged against its query and the
// context it was grounded in.
type EvaluationRequest struct {
	Query           string   `json:"query"`
	GeneratedAnswer string   `json:"generated_answer"`
	ExpectedAnswer  string   `json:"expected_answer,omitempty"`
	ContextChunks   []string `json:"context_chunks,omitempty"`
	EvaluatorModel  string   `json:"evaluator_model,omitempty"`
}

// EvaluationScore holds the six judge scores, each in [0,1], plus free-text
// feedback. Overall is the judge's holistic aggregate, not necessarily the
// mean of the other five.
type EvaluationScore struct {
	Relevance      float64 `json:"relevance"`
	Accuracy       float64 `json:"accuracy"`
	Completeness   float64 `json:"completeness"`
	Coherence      float64 `json:"coherence"`
	Faithfulness   float64 `json:"faithfulness"`
	Overall        float64 `json:"overall"`
	Feedback       string  `json:"feedback,omitempty"`
	EvaluatorModel string  `json:"evaluator_model,omitempty"`
}

// Validate checks that every score lies in [0,1].
func (s EvaluationScore) Validate() error {
	for name, v := range map[string]float64{
		"relevance":    s.Relevance,
		"accuracy":     s.Accuracy,
		"completeness": s.Completeness,
		"coherence":    s.Coherence,
		"faithfulness": s.Faithfulness,
		"overall":      s.Overall,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s score %g out of [0,1]", ErrEvaluationParse, name, v)
		}
	}
	return nil
}

// MeanOfDimensions returns the mean of the five non-overall scores.
func (s EvaluationScore) MeanOfDimensions() float64 {
	return (s.Relevance + s.Accuracy + s.Completeness + s.Coherence + s.Faithfulness) / 5
}
