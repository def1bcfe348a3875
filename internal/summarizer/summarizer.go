package summarizer

import (
	"context"
	"errors"
	"fmt"
	"os"

	"recap-bot/internal/config"
)

// Summarizer produces a prose summary of a chat transcript.
type Summarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// ErrNoCompletion is returned when the completion service responds without
// any candidate text.
var ErrNoCompletion = errors.New("no completion candidates returned")

// New creates a summarizer for the configured provider. The provider's API
// key is read from the environment here so a missing secret fails at startup
// rather than on the first request.
func New(cfg *config.Config) (Summarizer, error) {
	switch cfg.Summary.Provider {
	case "openai":
		apiKey := os.Getenv("OPEN_AI_SECRET")
		if apiKey == "" {
			return nil, errors.New("summarizer: OPEN_AI_SECRET environment variable is not set")
		}
		return NewOpenAISummarizer(apiKey, cfg.Summary.Model, cfg.Summary.Prompt, cfg.Summary.MaxTokens), nil
	case "gemini":
		apiKey := os.Getenv("GEMINI_API_KEY")
		if apiKey == "" {
			return nil, errors.New("summarizer: GEMINI_API_KEY environment variable is not set")
		}
		return NewGeminiSummarizer(apiKey, cfg.Summary.Model, cfg.Summary.Prompt, cfg.Summary.MaxTokens), nil
	default:
		return nil, fmt.Errorf("summarizer: unsupported provider %q", cfg.Summary.Provider)
	}
}
