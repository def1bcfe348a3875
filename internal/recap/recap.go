// Package recap orchestrates the resolve -> fetch -> render -> budget ->
// summarize pipeline for one channel.
package recap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"recap-bot/internal/history"
	"recap-bot/internal/summarizer"
	"recap-bot/internal/timeframe"
	"recap-bot/internal/tokens"
	"recap-bot/internal/transcript"
)

// ErrNoMessages indicates the resolved timeframe contained no messages, so
// there is nothing to summarize.
var ErrNoMessages = errors.New("no messages in timeframe")

type Service struct {
	resolver         *timeframe.Resolver
	fetcher          *history.Fetcher
	summarizer       summarizer.Summarizer
	maxRequestTokens int
}

func NewService(resolver *timeframe.Resolver, fetcher *history.Fetcher, s summarizer.Summarizer, maxRequestTokens int) *Service {
	return &Service{
		resolver:         resolver,
		fetcher:          fetcher,
		summarizer:       s,
		maxRequestTokens: maxRequestTokens,
	}
}

// Run resolves the timeframe expression and summarizes the channel's
// messages since the resulting cutoff.
func (s *Service) Run(ctx context.Context, channelID, since string) (string, error) {
	cutoff, err := s.resolver.Resolve(since)
	if err != nil {
		return "", err
	}
	return s.RunSince(ctx, channelID, cutoff)
}

// RunSince summarizes the channel's messages with timestamp >= cutoff.
func (s *Service) RunSince(ctx context.Context, channelID string, cutoff time.Time) (string, error) {
	log.Printf("recap: fetching messages in channel %s since %s", channelID, cutoff.Format(time.RFC3339))

	msgs, err := s.fetcher.FetchSince(ctx, channelID, cutoff)
	if err != nil {
		return "", fmt.Errorf("recap: fetch failed: %w", err)
	}
	if len(msgs) == 0 {
		return "", ErrNoMessages
	}
	log.Printf("recap: fetched %d messages", len(msgs))

	text := transcript.Render(msgs)
	if estimated := tokens.Estimate(text); estimated > s.maxRequestTokens {
		log.Printf("recap: transcript estimated at %d tokens, truncating to %d", estimated, s.maxRequestTokens)
		text = tokens.TruncateToBudget(text, s.maxRequestTokens)
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		return "", fmt.Errorf("recap: summarize failed: %w", err)
	}
	return summary, nil
}
