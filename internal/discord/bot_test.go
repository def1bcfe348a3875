package discord

import (
	"errors"
	"net/http"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"recap-bot/internal/recap"
	"recap-bot/internal/retry"
	"recap-bot/internal/summarizer"
	"recap-bot/internal/timeframe"
)

func draftMessage(disabled bool) *discordgo.Message {
	return &discordgo.Message{
		Content: "Summary: a quiet day.",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					&discordgo.Button{
						Label:    "Publish",
						CustomID: publishPrefix + "abc123",
						Disabled: disabled,
					},
				},
			},
		},
	}
}

func TestPublishButtonDisabled(t *testing.T) {
	if publishButtonDisabled(draftMessage(false)) {
		t.Error("active button reported disabled")
	}
	if !publishButtonDisabled(draftMessage(true)) {
		t.Error("disabled button reported active")
	}
	if publishButtonDisabled(&discordgo.Message{}) {
		t.Error("message without components reported disabled")
	}
}

func TestDisabledPublishRow(t *testing.T) {
	rows := disabledPublishRow(publishPrefix + "abc123")
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	row, ok := rows[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("row is %T, want ActionsRow", rows[0])
	}
	btn, ok := row.Components[0].(discordgo.Button)
	if !ok {
		t.Fatalf("component is %T, want Button", row.Components[0])
	}
	if !btn.Disabled {
		t.Error("replacement button is not disabled")
	}
	if btn.CustomID != publishPrefix+"abc123" {
		t.Errorf("custom id = %q, request id was not preserved", btn.CustomID)
	}
}

func TestFailureNotice(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{timeframe.ErrInvalidTimeframe, "timeframe"},
		{recap.ErrNoMessages, "Nothing to summarize"},
		{summarizer.ErrNoCompletion, "summary service"},
		{errors.New("boom"), "Could not build a recap"},
	}

	for _, tt := range tests {
		got := failureNotice(tt.err)
		if !strings.Contains(got, tt.want) {
			t.Errorf("failureNotice(%v) = %q, want it to mention %q", tt.err, got, tt.want)
		}
	}
}

func TestFailureNoticeWrappedErrors(t *testing.T) {
	wrapped := errors.Join(errors.New("recap: fetch failed"), recap.ErrNoMessages)
	if got := failureNotice(wrapped); !strings.Contains(got, "Nothing to summarize") {
		t.Errorf("wrapped ErrNoMessages notice = %q", got)
	}
}

func TestWrapPostError(t *testing.T) {
	restErr := func(status int) *discordgo.RESTError {
		return &discordgo.RESTError{Response: &http.Response{StatusCode: status}}
	}

	var perm *retry.PermanentError
	if err := wrapPostError(restErr(http.StatusForbidden)); !errors.As(err, &perm) {
		t.Errorf("403 error should be permanent, got %v", err)
	}
	if err := wrapPostError(restErr(http.StatusNotFound)); !errors.As(err, &perm) {
		t.Errorf("404 error should be permanent, got %v", err)
	}
	if err := wrapPostError(restErr(http.StatusTooManyRequests)); errors.As(err, &perm) {
		t.Errorf("429 error should stay retryable, got %v", err)
	}
	if err := wrapPostError(restErr(http.StatusBadGateway)); errors.As(err, &perm) {
		t.Errorf("502 error should stay retryable, got %v", err)
	}
	if err := wrapPostError(errors.New("connection reset")); errors.As(err, &perm) {
		t.Errorf("transport error should stay retryable, got %v", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 2000); got != "short" {
		t.Errorf("truncate modified short input: %q", got)
	}

	long := strings.Repeat("word ", 500) + "End."
	got := truncate(long, 2000)
	if len(got) > 2000 {
		t.Errorf("truncate result is %d chars, limit 2000", len(got))
	}

	sentences := strings.Repeat("This is a sentence. ", 150)
	got = truncate(sentences, 2000)
	if !strings.HasSuffix(got, ".") {
		t.Errorf("expected cut at sentence boundary, got suffix %q", got[len(got)-10:])
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	// Three-byte runes; a byte-indexed cut would land mid-rune for most
	// limits.
	long := strings.Repeat("日本語", 1000)
	for _, max := range []int{20, 21, 22, 23} {
		got := truncate(long, max)
		if !utf8.ValidString(got) {
			t.Errorf("max=%d: truncate produced invalid UTF-8: %q", max, got)
		}
		if len(got) > max+len("…") {
			t.Errorf("max=%d: result is %d bytes", max, len(got))
		}
	}
}
