package domain

import "context"

// CompletionRequest is one prompt sent to a chat model.
type CompletionRequest struct {
	Model       string
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// CompletionResult carries the model's answer and optional token accounting.
type CompletionResult struct {
	Text  string
	Usage TokenUsage
}

// Completer is the shared chat-completion contract for the generator and
// the evaluator.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}
