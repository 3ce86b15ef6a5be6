package llm

import "context"

type Provider interface {
	// Generate returns the full completion for prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}
