// Package digest periodically posts a public summary of recent activity in
// each configured channel.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"recap-bot/internal/recap"
	"recap-bot/internal/retry"
)

// channelTimeout bounds one channel's digest end to end, covering the
// paginated fetch, the completion request, and the retried post.
const channelTimeout = 2 * time.Minute

// Recapper produces a summary of a channel since a cutoff.
type Recapper interface {
	RunSince(ctx context.Context, channelID string, cutoff time.Time) (string, error)
}

// Poster publishes digest summaries publicly.
type Poster interface {
	PostMessage(channelID, content string) error
}

// Scheduler runs the digest job on a fixed interval. Each run covers the
// interval that just elapsed, so consecutive digests tile the channel's
// history without gaps.
type Scheduler struct {
	recaps      Recapper
	poster      Poster
	channelIDs  []string
	interval    time.Duration
	cron        *cron.Cron
	retryConfig retry.Config
}

func NewScheduler(recaps Recapper, poster Poster, channelIDs []string, interval time.Duration) *Scheduler {
	return &Scheduler{
		recaps:      recaps,
		poster:      poster,
		channelIDs:  channelIDs,
		interval:    interval,
		cron:        cron.New(),
		retryConfig: retry.DefaultConfig(),
	}
}

// Start schedules the digest job. A non-positive interval or an empty
// channel list disables it.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 || len(s.channelIDs) == 0 {
		log.Println("digest: disabled")
		return nil
	}

	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.run(ctx) }); err != nil {
		return fmt.Errorf("digest: failed to schedule %q: %w", spec, err)
	}
	s.cron.Start()
	log.Printf("digest: scheduled every %s for %d channel(s)", s.interval, len(s.channelIDs))
	return nil
}

// Stop stops the scheduler. Started jobs run to completion.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) run(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.interval)

	for _, channelID := range s.channelIDs {
		s.digestChannel(ctx, channelID, cutoff)
	}
}

// digestChannel summarizes and posts one channel under its own wall-clock
// deadline, the same bound the interactive recap path runs with.
func (s *Scheduler) digestChannel(ctx context.Context, channelID string, cutoff time.Time) {
	ctx, cancel := context.WithTimeout(ctx, channelTimeout)
	defer cancel()

	summary, err := s.recaps.RunSince(ctx, channelID, cutoff)
	if errors.Is(err, recap.ErrNoMessages) {
		log.Printf("digest: channel %s: nothing to summarize", channelID)
		return
	}
	if err != nil {
		log.Printf("digest: channel %s: %v", channelID, err)
		return
	}

	err = retry.WithBackoff(ctx, s.retryConfig, func(ctx context.Context) error {
		return s.poster.PostMessage(channelID, summary)
	})
	if err != nil {
		log.Printf("digest: channel %s: post failed: %v", channelID, err)
	}
}
