package evaluation

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

const judgeResponse = `RELEVANCE: 90/100
ACCURACY: 85/100
COMPLETENESS: 80/100
COHERENCE: 95/100
FAITHFULNESS: 70/100
OVERALL: 84/100

FEEDBACK:
The answer addresses the query well but drifts from the context once.
`

type mockCompleter struct {
	responses []string
	errs      []error
	calls     int
	lastReq   domain.CompletionRequest
}

func (m *mockCompleter) Complete(_ context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	i := m.calls
	m.calls++
	m.lastReq = req
	if i < len(m.errs) && m.errs[i] != nil {
		return domain.CompletionResult{}, m.errs[i]
	}
	text := m.responses[0]
	if i < len(m.responses) {
		text = m.responses[i]
	}
	return domain.CompletionResult{Text: text}, nil
}

func TestParseScores_Normalizes(t *testing.T) {
	score, err := ParseScores(judgeResponse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(score.Relevance-0.90) > 1e-9 || math.Abs(score.Faithfulness-0.70) > 1e-9 {
		t.Errorf("scores = %+v", score)
	}
	if math.Abs(score.Overall-0.84) > 1e-9 {
		t.Errorf("overall = %g, want 0.84", score.Overall)
	}
	if !strings.Contains(score.Feedback, "drifts from the context") {
		t.Errorf("feedback = %q", score.Feedback)
	}
}

func TestParseScores_MissingOverallFallsBackToMean(t *testing.T) {
	text := `RELEVANCE: 100/100
ACCURACY: 100/100
COMPLETENESS: 50/100
COHERENCE: 50/100
FAITHFULNESS: 100/100
`
	score, err := ParseScores(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(score.Overall-0.8) > 1e-9 {
		t.Errorf("overall = %g, want mean 0.8", score.Overall)
	}
}

func TestParseScores_MissingDimension(t *testing.T) {
	text := `RELEVANCE: 90/100
ACCURACY: 85/100
OVERALL: 80/100
`
	_, err := ParseScores(text)
	if !errors.Is(err, domain.ErrEvaluationParse) {
		t.Errorf("expected ErrEvaluationParse, got %v", err)
	}
}

func TestParseScores_OutOfRangeNotClamped(t *testing.T) {
	text := strings.Replace(judgeResponse, "ACCURACY: 85/100", "ACCURACY: 130/100", 1)
	_, err := ParseScores(text)
	if !errors.Is(err, domain.ErrEvaluationParse) {
		t.Errorf("expected ErrEvaluationParse for score above range, got %v", err)
	}
}

func TestParseScores_Garbage(t *testing.T) {
	_, err := ParseScores("the model refuses to follow the format")
	if !errors.Is(err, domain.ErrEvaluationParse) {
		t.Errorf("expected ErrEvaluationParse, got %v", err)
	}
}

func TestEvaluate_PromptIncludesContext(t *testing.T) {
	c := &mockCompleter{responses: []string{judgeResponse}}
	svc := New(c, "judge-model", zap.NewNop())

	score, err := svc.Evaluate(context.Background(), domain.EvaluationRequest{
		Query:           "q",
		GeneratedAnswer: "a",
		ExpectedAnswer:  "golden",
		ContextChunks:   []string{"chunk one", "chunk two"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score.EvaluatorModel != "judge-model" {
		t.Errorf("evaluator model = %q", score.EvaluatorModel)
	}
	for _, want := range []string{"QUERY:", "GENERATED ANSWER:", "EXPECTED ANSWER:", "[1] chunk one", "[2] chunk two"} {
		if !strings.Contains(c.lastReq.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestEvaluateBatch_IsolatesFailures(t *testing.T) {
	c := &mockCompleter{
		responses: []string{judgeResponse, "garbage", judgeResponse},
	}
	svc := New(c, "judge", zap.NewNop())

	reqs := []domain.EvaluationRequest{
		{Query: "q1", GeneratedAnswer: "a1"},
		{Query: "q2", GeneratedAnswer: "a2"},
		{Query: "q3", GeneratedAnswer: "a3"},
	}
	res := svc.EvaluateBatch(context.Background(), reqs)

	if res.TotalQueries != 3 || len(res.Results) != 3 {
		t.Fatalf("result shape wrong: %+v", res)
	}
	if res.Results[0].Score == nil || res.Results[2].Score == nil {
		t.Error("successful items should carry scores")
	}
	if res.Results[1].Error == "" || res.Results[1].Score != nil {
		t.Errorf("failed item should carry only an error: %+v", res.Results[1])
	}
	if res.Results[1].Query != "q2" {
		t.Error("batch results must keep input order")
	}
	if math.Abs(res.AverageScores["overall"]-0.84) > 1e-9 {
		t.Errorf("average overall = %g", res.AverageScores["overall"])
	}
}

func TestComparePipelines(t *testing.T) {
	runs := []EvaluatedRun{
		{Config: domain.ConfigSummary{ChunkSize: 1024}, Scores: domain.EvaluationScore{Overall: 0.7}},
		{Config: domain.ConfigSummary{ChunkSize: 256}, Scores: domain.EvaluationScore{Overall: 0.9}},
		{Config: domain.ConfigSummary{ChunkSize: 512}, Scores: domain.EvaluationScore{Overall: 0.9}},
	}

	c := ComparePipelines(runs)
	if c.TotalPipelines != 3 || c.Winner == nil {
		t.Fatalf("comparison = %+v", c)
	}
	// Tie on overall: smaller chunk size wins.
	if c.Winner.Config.ChunkSize != 256 {
		t.Errorf("winner chunk size = %d, want 256", c.Winner.Config.ChunkSize)
	}
	if c.AllResults[0].Rank != 1 || c.AllResults[2].Rank != 3 {
		t.Errorf("ranks wrong: %+v", c.AllResults)
	}
	if c.AllResults[2].Config.ChunkSize != 1024 {
		t.Errorf("last place = %d, want 1024", c.AllResults[2].Config.ChunkSize)
	}
}

func TestComparePipelines_Empty(t *testing.T) {
	c := ComparePipelines(nil)
	if c.Winner != nil || c.TotalPipelines != 0 {
		t.Errorf("comparison = %+v", c)
	}
}
