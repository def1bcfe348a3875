package summarizer

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiSummarizer uses the Gemini API as an alternative completion provider.
type GeminiSummarizer struct {
	apiKey    string
	model     string
	prompt    string
	maxTokens int
}

func NewGeminiSummarizer(apiKey, model, prompt string, maxTokens int) *GeminiSummarizer {
	return &GeminiSummarizer{
		apiKey:    apiKey,
		model:     model,
		prompt:    prompt,
		maxTokens: maxTokens,
	}
}

func (s *GeminiSummarizer) Summarize(ctx context.Context, transcript string) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: s.apiKey})
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create client: %w", err)
	}

	result, err := client.Models.GenerateContent(
		ctx,
		s.model,
		genai.Text(transcript),
		&genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: s.prompt}}},
			MaxOutputTokens:   int32(s.maxTokens),
		},
	)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini: %w", ErrNoCompletion)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: %w", ErrNoCompletion)
	}

	return text, nil
}
