// Package history walks a channel's message history backward in pages and
// produces the normalized chronological sequence of messages since a cutoff.
package history

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"recap-bot/internal/transcript"
)

// Message is a platform message as returned by the history API.
type Message struct {
	ID        string
	ChannelID string
	AuthorID  string
	Content   string
	Timestamp time.Time
}

// Source reads pages of channel history, newest first.
type Source interface {
	// MessagesBefore returns up to limit messages strictly older than
	// beforeID, newest first. An empty beforeID returns the newest messages.
	MessagesBefore(ctx context.Context, channelID, beforeID string, limit int) ([]Message, error)
}

// MemberDirectory maps author ids to display names for a channel's guild.
type MemberDirectory interface {
	DisplayNames(ctx context.Context, channelID string) (map[string]string, error)
}

const (
	defaultPageSize = 100

	// defaultMaxPages bounds the backward scan so a cutoff far in the past
	// cannot turn the fetch into a full-history walk.
	defaultMaxPages = 100
)

// Fetcher paginates backward from the newest message until the cutoff is
// crossed, history is exhausted, or the page cap is reached.
type Fetcher struct {
	source   Source
	members  MemberDirectory
	pageSize int
	maxPages int
}

func NewFetcher(source Source, members MemberDirectory) *Fetcher {
	return &Fetcher{
		source:   source,
		members:  members,
		pageSize: defaultPageSize,
		maxPages: defaultMaxPages,
	}
}

// FetchSince returns every message in the channel with timestamp >= cutoff,
// sorted ascending. Any page request failing aborts the whole fetch; display
// name resolution failing does not.
func (f *Fetcher) FetchSince(ctx context.Context, channelID string, cutoff time.Time) ([]transcript.Message, error) {
	var collected []transcript.Message
	var cursor string

	for page := 1; page <= f.maxPages; page++ {
		msgs, err := f.source.MessagesBefore(ctx, channelID, cursor, f.pageSize)
		if err != nil {
			return nil, fmt.Errorf("history: failed to fetch page %d: %w", page, err)
		}
		if len(msgs) == 0 {
			break
		}

		inRange := make([]Message, 0, len(msgs))
		for _, m := range msgs {
			if !m.Timestamp.Before(cutoff) {
				inRange = append(inRange, m)
			}
		}
		log.Printf("history: page %d: %d messages, %d in timeframe", page, len(msgs), len(inRange))

		names := f.resolveNames(ctx, channelID, inRange)
		collected = append(collected, normalize(inRange, names)...)

		// A message older than the cutoff appeared in this page, so every
		// older page is entirely out of range.
		if len(inRange) < len(msgs) {
			break
		}

		cursor = msgs[len(msgs)-1].ID
	}

	transcript.SortByTime(collected)
	return collected, nil
}

// resolveNames builds the page-scoped display name index. Resolution is best
// effort: on failure every author in the page falls back to the sentinel.
func (f *Fetcher) resolveNames(ctx context.Context, channelID string, msgs []Message) map[string]string {
	if len(msgs) == 0 {
		return nil
	}
	names, err := f.members.DisplayNames(ctx, channelID)
	if err != nil {
		log.Printf("history: display name resolution failed: %v", err)
		return nil
	}
	return names
}

// normalize converts a page of raw messages concurrently, one goroutine per
// message, writing each result into its own slot so page order is preserved.
func normalize(msgs []Message, names map[string]string) []transcript.Message {
	out := make([]transcript.Message, len(msgs))
	var wg sync.WaitGroup
	for i, m := range msgs {
		wg.Add(1)
		go func(i int, m Message) {
			defer wg.Done()
			name := names[m.AuthorID]
			if name == "" {
				name = transcript.FallbackUsername
			}
			out[i] = transcript.Message{
				Content:   m.Content,
				Username:  name,
				Timestamp: m.Timestamp.UTC(),
			}
		}(i, m)
	}
	wg.Wait()
	return out
}
