// Package evaluation scores generated answers with an LLM judge across six
// dimensions and aggregates scores over batches and pipeline comparisons.
package evaluation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Service judges answers against their query and retrieval context.
type Service struct {
	completer    Completer
	defaultModel string
	logger       *zap.Logger
}

// New creates an evaluation service.
func New(completer Completer, defaultModel string, logger *zap.Logger) *Service {
	return &Service{completer: completer, defaultModel: defaultModel, logger: logger}
}

// Evaluate scores one answer. Scores outside [0,1] after normalization and
// responses missing any dimension fail with ErrEvaluationParse; nothing is
// clamped silently.
func (s *Service) Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationScore, error) {
	model := req.EvaluatorModel
	if model == "" {
		model = s.defaultModel
	}

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Model:  model,
		Prompt: buildJudgePrompt(req),
	})
	if err != nil {
		return domain.EvaluationScore{}, fmt.Errorf("judge call: %w", err)
	}

	score, err := ParseScores(res.Text)
	if err != nil {
		return domain.EvaluationScore{}, err
	}
	score.EvaluatorModel = model
	return score, nil
}

// BatchItem is one outcome of a batch evaluation. Exactly one of Score and
// Error is set.
type BatchItem struct {
	Query string                  `json:"query"`
	Score *domain.EvaluationScore `json:"scores,omitempty"`
	Error string                  `json:"error,omitempty"`
}

// BatchResult carries ordered per-item outcomes plus averages over the
// successful items.
type BatchResult struct {
	TotalQueries  int                `json:"total_queries"`
	Results       []BatchItem        `json:"results"`
	AverageScores map[string]float64 `json:"average_scores,omitempty"`
}

// EvaluateBatch judges each request independently; one item's failure never
// aborts the rest. Results keep the input order.
func (s *Service) EvaluateBatch(ctx context.Context, reqs []domain.EvaluationRequest) BatchResult {
	out := BatchResult{
		TotalQueries: len(reqs),
		Results:      make([]BatchItem, len(reqs)),
	}

	var ok []domain.EvaluationScore
	for i, req := range reqs {
		item := BatchItem{Query: req.Query}
		score, err := s.Evaluate(ctx, req)
		if err != nil {
			s.logger.Warn("batch item evaluation failed",
				zap.Int("item", i), zap.Error(err))
			item.Error = err.Error()
		} else {
			sc := score
			item.Score = &sc
			ok = append(ok, score)
		}
		out.Results[i] = item
	}

	if len(ok) > 0 {
		out.AverageScores = averageScores(ok)
	}
	return out
}

// EvaluatedRun is one pipeline outcome with its judge score, used for
// cross-configuration comparison.
type EvaluatedRun struct {
	Config  domain.ConfigSummary   `json:"pipeline_config"`
	Answer  string                 `json:"answer,omitempty"`
	Scores  domain.EvaluationScore `json:"scores"`
	Rank    int                    `json:"rank"`
	Overall float64                `json:"overall_score"`
}

// Comparison ranks evaluated pipeline runs by overall score.
type Comparison struct {
	Winner         *EvaluatedRun  `json:"winner,omitempty"`
	AllResults     []EvaluatedRun `json:"all_results"`
	TotalPipelines int            `json:"total_pipelines"`
}

// ComparePipelines sorts runs by overall score descending (ties broken by
// smaller chunk size) and reports the winner.
func ComparePipelines(runs []EvaluatedRun) Comparison {
	ranked := make([]EvaluatedRun, len(runs))
	copy(ranked, runs)
	for i := range ranked {
		ranked[i].Overall = ranked[i].Scores.Overall
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Overall != ranked[j].Overall {
			return ranked[i].Overall > ranked[j].Overall
		}
		return ranked[i].Config.ChunkSize < ranked[j].Config.ChunkSize
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	c := Comparison{AllResults: ranked, TotalPipelines: len(ranked)}
	if len(ranked) > 0 {
		c.Winner = &ranked[0]
	}
	return c
}

func buildJudgePrompt(req domain.EvaluationRequest) string {
	var b strings.Builder

	b.WriteString("You are an expert evaluator of RAG (Retrieval-Augmented Generation) systems.\n\n")
	b.WriteString("Evaluate the following response.\n\n")
	fmt.Fprintf(&b, "QUERY:\n%s\n\n", req.Query)
	fmt.Fprintf(&b, "GENERATED ANSWER:\n%s\n", req.GeneratedAnswer)

	if req.ExpectedAnswer != "" {
		fmt.Fprintf(&b, "\nEXPECTED ANSWER:\n%s\n", req.ExpectedAnswer)
	}
	if len(req.ContextChunks) > 0 {
		b.WriteString("\nRETRIEVED CONTEXT:\n")
		for i, chunk := range req.ContextChunks {
			fmt.Fprintf(&b, "[%d] %s\n", i+1, chunk)
		}
	}

	b.WriteString(`
Provide numeric scores from 0 to 100 for each:

1. RELEVANCE - How well does the answer address the query?
2. ACCURACY - Is the content factually correct?
3. COMPLETENESS - Does it fully answer the question?
4. COHERENCE - Is the answer clear and well-structured?
5. FAITHFULNESS - Does the answer stick to the retrieved context?

Respond STRICTLY in the format:

RELEVANCE: <score>/100
ACCURACY: <score>/100
COMPLETENESS: <score>/100
COHERENCE: <score>/100
FAITHFULNESS: <score>/100
OVERALL: <score>/100

FEEDBACK:
<one paragraph of feedback>
`)
	return b.String()
}

var scoreLineRe = regexp.MustCompile(`^([A-Z]+)\s*:\s*([0-9]+(?:\.[0-9]+)?)\s*(?:/\s*100)?\s*$`)

// ParseScores extracts the six rubric scores from judge output. Raw scores
// are on a 0..100 scale and normalized to [0,1]. Missing dimensions,
// non-numeric values, and out-of-range values are ErrEvaluationParse.
func ParseScores(text string) (domain.EvaluationScore, error) {
	raw := make(map[string]float64)
	var feedback []string
	inFeedback := false

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)

		if inFeedback {
			feedback = append(feedback, trimmed)
			continue
		}
		if upper := strings.ToUpper(trimmed); strings.HasPrefix(upper, "FEEDBACK") {
			if _, rest, found := strings.Cut(trimmed, ":"); found {
				if r := strings.TrimSpace(rest); r != "" {
					feedback = append(feedback, r)
				}
			}
			inFeedback = true
			continue
		}

		m := scoreLineRe.FindStringSubmatch(strings.ToUpper(trimmed))
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return domain.EvaluationScore{}, fmt.Errorf("%w: bad number in %q", domain.ErrEvaluationParse, trimmed)
		}
		raw[strings.ToLower(m[1])] = v / 100
	}

	for _, dim := range domain.ScoreDimensions {
		if _, ok := raw[dim]; !ok {
			return domain.EvaluationScore{}, fmt.Errorf("%w: missing %s score", domain.ErrEvaluationParse, dim)
		}
	}

	score := domain.EvaluationScore{
		Relevance:    raw["relevance"],
		Accuracy:     raw["accuracy"],
		Completeness: raw["completeness"],
		Coherence:    raw["coherence"],
		Faithfulness: raw["faithfulness"],
		Feedback:     strings.TrimSpace(strings.Join(feedback, "\n")),
	}

	if overall, ok := raw["overall"]; ok {
		score.Overall = overall
	} else {
		// The judge is asked for a holistic OVERALL; when it omits one,
		// fall back to the mean of the five dimensions.
		score.Overall = score.MeanOfDimensions()
	}

	if err := score.Validate(); err != nil {
		return domain.EvaluationScore{}, err
	}
	return score, nil
}

func averageScores(scores []domain.EvaluationScore) map[string]float64 {
	n := float64(len(scores))
	avg := map[string]float64{
		"relevance": 0, "accuracy": 0, "completeness": 0,
		"coherence": 0, "faithfulness": 0, "overall": 0,
	}
	for _, s := range scores {
		avg["relevance"] += s.Relevance / n
		avg["accuracy"] += s.Accuracy / n
		avg["completeness"] += s.Completeness / n
		avg["coherence"] += s.Coherence / n
		avg["faithfulness"] += s.Faithfulness / n
		avg["overall"] += s.Overall / n
	}
	return avg
}
