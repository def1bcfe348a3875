package summarizer

import "recap-bot/internal/config"

func testConfig(provider string) *config.Config {
	return &config.Config{
		Summary: config.SummaryConfig{
			Provider:  provider,
			Model:     "test-model",
			Prompt:    "Summarize:",
			MaxTokens: 4096,
		},
	}
}
