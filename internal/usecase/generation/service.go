// Package generation builds grounded prompts from retrieved context and
// produces answers through a chat model. It also generates test question
// sets from document text.
package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
)

// Defaults for answer generation.
const (
	DefaultMaxAnswerTokens = 2048
	questionDocLimit       = 2000 // characters of document text fed to question generation
)

// Question is one generated test question with its expected answer.
type Question struct {
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expected_answer"`
}

// Service generates grounded answers and test questions.
type Service struct {
	completer       Completer
	defaultModel    string
	maxTokens       int
	maxContextChars int // 0 = unlimited
	logger          *zap.Logger
}

// New creates a generation service.
func New(completer Completer, defaultModel string, logger *zap.Logger) *Service {
	return &Service{
		completer:    completer,
		defaultModel: defaultModel,
		maxTokens:    DefaultMaxAnswerTokens,
		logger:       logger,
	}
}

// WithMaxContextChars caps the total context text placed into the prompt.
// Chunks are already ranked, so the cap drops the weakest hits first.
func (s *Service) WithMaxContextChars(n int) *Service {
	s.maxContextChars = n
	return s
}

// Generate answers the query using only the supplied context chunks, which
// must already be in rank order (highest similarity first).
func (s *Service) Generate(
	ctx context.Context, query string, contextChunks []string,
	model string, temperature float64,
) (string, domain.TokenUsage, error) {
	if model == "" {
		model = s.defaultModel
	}

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Model:       model,
		Prompt:      buildRAGPrompt(query, capContext(contextChunks, s.maxContextChars)),
		MaxTokens:   s.maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", domain.TokenUsage{}, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	answer := strings.TrimSpace(res.Text)
	if answer == "" {
		return "", domain.TokenUsage{}, fmt.Errorf("%w: empty completion", domain.ErrGenerationFailed)
	}

	s.logger.Debug("answer generated",
		zap.String("model", model),
		zap.Int("context_chunks", len(contextChunks)),
	)
	return answer, res.Usage, nil
}

// GenerateQuestions produces up to n factual question/answer pairs from
// document text, for building evaluation sets.
func (s *Service) GenerateQuestions(
	ctx context.Context, docText string, n int, model string,
) ([]Question, error) {
	if model == "" {
		model = s.defaultModel
	}
	if n <= 0 {
		n = 5
	}

	excerpt := docText
	if len(excerpt) > questionDocLimit {
		excerpt = excerpt[:questionDocLimit] + "..."
	}

	res, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Model:  model,
		Prompt: buildQuestionPrompt(excerpt, n),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailed, err)
	}

	questions := parseQuestions(res.Text)
	if len(questions) > n {
		questions = questions[:n]
	}
	return questions, nil
}

// capContext keeps leading chunks whose combined length stays within limit.
// At least one chunk always survives so the answer stays grounded.
func capContext(chunks []string, limit int) []string {
	if limit <= 0 {
		return chunks
	}
	total := 0
	for i, c := range chunks {
		total += len(c)
		if total > limit && i > 0 {
			return chunks[:i]
		}
	}
	return chunks
}

func buildRAGPrompt(query string, contextChunks []string) string {
	var ctxB strings.Builder
	for i, chunk := range contextChunks {
		fmt.Fprintf(&ctxB, "[%d] %s\n\n", i+1, chunk)
	}

	return fmt.Sprintf(`You are a helpful assistant that answers questions using ONLY this context.

CONTEXT:
%s
QUESTION:
%s

If context is insufficient, say so.
Cite chunks like [1], [2].
ANSWER:
`, ctxB.String(), query)
}

func buildQuestionPrompt(excerpt string, n int) string {
	return fmt.Sprintf(`Generate %d factual Q&A pairs from this document.

DOCUMENT:
%s

Format strictly as:
Q1: question
A1: answer
`, n, excerpt)
}

// parseQuestions extracts Q<i>:/A<i>: pairs. A question without an answer is
// dropped; interleaving errors skip the broken pair rather than failing.
func parseQuestions(text string) []Question {
	var questions []Question
	var q, a string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Q") && strings.Contains(line, ":"):
			if q != "" && a != "" {
				questions = append(questions, Question{Question: q, ExpectedAnswer: a})
			}
			_, rest, _ := strings.Cut(line, ":")
			q = strings.TrimSpace(rest)
			a = ""
		case strings.HasPrefix(line, "A") && strings.Contains(line, ":") && q != "":
			_, rest, _ := strings.Cut(line, ":")
			a = strings.TrimSpace(rest)
		}
	}
	if q != "" && a != "" {
		questions = append(questions, Question{Question: q, ExpectedAnswer: a})
	}
	return questions
}
