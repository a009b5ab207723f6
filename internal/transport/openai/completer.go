package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/HansujaB/rag-insights-engine/internal/domain"
	"github.com/HansujaB/rag-insights-engine/internal/metrics"
)

// Completer runs chat completions for the generator and the evaluator.
type Completer struct {
	client  *openai.Client
	kind    string // metric label: generation, evaluation
	timeout time.Duration
	logger  *zap.Logger
}

// CompleterConfig holds the chat provider settings.
type CompleterConfig struct {
	APIKey  string
	BaseURL string
	Kind    string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewCompleter creates an OpenAI-compatible chat-completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &Completer{
		client:  openai.NewClientWithConfig(clientCfg),
		kind:    cfg.Kind,
		timeout: cfg.Timeout,
		logger:  cfg.Logger,
	}
}

// Complete implements domain.Completer. An empty completion is a provider
// failure, not an empty answer.
func (c *Completer) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:       req.Model,
		Messages:    messages,
		Temperature: float32(req.Temperature),
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	duration := time.Since(start)

	if err != nil {
		metrics.ModelRequestsTotal.WithLabelValues(c.kind, req.Model, "error").Inc()
		return domain.CompletionResult{}, parseAPIError(c.kind, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		metrics.ModelRequestsTotal.WithLabelValues(c.kind, req.Model, "error").Inc()
		return domain.CompletionResult{}, fmt.Errorf(
			"empty completion from model %s: %w", req.Model, domain.ErrProviderUnavailable)
	}

	metrics.ModelRequestsTotal.WithLabelValues(c.kind, req.Model, "success").Inc()
	metrics.ModelRequestDuration.WithLabelValues(c.kind, req.Model).Observe(duration.Seconds())

	result := domain.CompletionResult{Text: resp.Choices[0].Message.Content}
	if resp.Usage.TotalTokens > 0 {
		prompt, completion, total := resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens
		result.Usage = domain.TokenUsage{
			PromptTokens:     &prompt,
			CompletionTokens: &completion,
			TotalTokens:      &total,
		}
		metrics.ModelTokensTotal.WithLabelValues(c.kind, req.Model, "prompt").Add(float64(prompt))
		metrics.ModelTokensTotal.WithLabelValues(c.kind, req.Model, "completion").Add(float64(completion))
		metrics.ModelTokensTotal.WithLabelValues(c.kind, req.Model, "total").Add(float64(total))
	}

	c.logger.Debug("chat completion",
		zap.String("model", req.Model),
		zap.Duration("duration", duration),
		zap.Int("answer_chars", len(result.Text)),
	)
	return result, nil
}

// HealthCheck verifies API availability via ListModels.
func (c *Completer) HealthCheck(ctx context.Context) error {
	if _, err := c.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
