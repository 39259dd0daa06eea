package llm

import "context"

// LLMClient is the text-completion capability the pipeline depends on.
// Chat sends a single user prompt and returns the model's text.
type LLMClient interface {
	Ping(ctx context.Context) error
	Chat(ctx context.Context, prompt string, temperature float64) (string, error)
}
