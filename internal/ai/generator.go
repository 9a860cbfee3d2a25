package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/xelth-com/shopdeskgo/internal/config"
)

// Request is one single-turn completion request
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON response when it supports that
	JSON bool
}

// TextGenerator produces a completion for a prompt
type TextGenerator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// ErrNotConfigured is returned when no provider credentials are set
var ErrNotConfigured = errors.New("ai provider is not configured")

// NewGenerator creates the generator selected by cfg.Provider.
// The returned close function releases provider resources.
func NewGenerator(ctx context.Context, cfg config.AIConfig) (TextGenerator, func(), error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, nil, ErrNotConfigured
		}
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		return client, client.Close, nil
	case "", "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, nil, ErrNotConfigured
		}
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}
