package providers

import (
	"context"
	"fmt"
)

// Request contains the data sent to an LLM for generation.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response contains the raw response from an LLM.
type Response struct {
	Content    string
	TokensUsed int
}

// Generator is the provider abstraction interface. Implementations make a
// single attempt per call; retry policy belongs to [Retrier].
type Generator interface {
	Generate(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a provider by name.
func New(provider, model string) (Generator, error) {
	switch provider {
	case "ollama", "lmstudio":
		return NewOllama(model)
	case "openrouter":
		return NewOpenRouter(model)
	case "gemini", "google":
		return NewGemini(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}
