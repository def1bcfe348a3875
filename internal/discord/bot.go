// Package discord wires the recap pipeline to the Discord gateway: the
// /recap slash command, its autocomplete, the ephemeral draft with its
// Publish button, and the message-log hook.
package discord

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"recap-bot/internal/msglog"
	"recap-bot/internal/recap"
	"recap-bot/internal/retry"
	"recap-bot/internal/summarizer"
	"recap-bot/internal/timeframe"
)

const (
	// publishPrefix marks the custom ID of a draft's Publish button; the
	// suffix is the recap request id.
	publishPrefix = "recap-publish:"

	// recapTimeout bounds one recap invocation end to end, covering the
	// paginated fetch and the completion request.
	recapTimeout = 2 * time.Minute

	// maxMessageLength is Discord's content limit for a single message.
	maxMessageLength = 2000
)

// Bot owns the interaction handlers for the recap workflow.
type Bot struct {
	session *discordgo.Session
	recaps  *recap.Service
	msgLog  *msglog.Writer
	guildID string
	allowed map[string]bool
}

// NewBot attaches the recap handlers to the session. channelIDs are the
// channels whose messages are appended to the message log.
func NewBot(session *discordgo.Session, recaps *recap.Service, msgLog *msglog.Writer, guildID string, channelIDs []string) *Bot {
	allowed := make(map[string]bool, len(channelIDs))
	for _, id := range channelIDs {
		allowed[id] = true
	}

	b := &Bot{
		session: session,
		recaps:  recaps,
		msgLog:  msgLog,
		guildID: guildID,
		allowed: allowed,
	}
	session.AddHandler(b.onReady)
	session.AddHandler(b.onInteractionCreate)
	session.AddHandler(b.onMessageCreate)
	return b
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord: failed to open session: %w", err)
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

// PostMessage sends a public message to a channel. Client errors such as
// missing permissions are marked permanent so callers retrying with backoff
// give up immediately; only 5xx and rate-limit responses stay retryable.
func (b *Bot) PostMessage(channelID, content string) error {
	if _, err := b.session.ChannelMessageSend(channelID, content); err != nil {
		return wrapPostError(err)
	}
	return nil
}

func wrapPostError(err error) error {
	wrapped := fmt.Errorf("discord: failed to send message: %w", err)

	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil &&
		!retry.HTTPStatusRetryable(restErr.Response.StatusCode) {
		return retry.Permanent(wrapped)
	}
	return wrapped
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	log.Printf("discord: logged in as %s", r.User.Username)

	cmd := &discordgo.ApplicationCommand{
		Name:        "recap",
		Description: "Get a recap of old activity in the channel",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         "since",
				Description:  "The date or relative time to start the recap from",
				Required:     true,
				Autocomplete: true,
			},
		},
	}
	if _, err := s.ApplicationCommandCreate(s.State.User.ID, b.guildID, cmd); err != nil {
		log.Printf("discord: failed to register recap command: %v", err)
	}
}

// onInteractionCreate dispatches on the interaction kind. Anything other
// than the recap command, its autocomplete, or a publish button press is
// deliberately ignored.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == "recap" {
			go b.handleRecap(s, i)
		}
	case discordgo.InteractionApplicationCommandAutocomplete:
		if i.ApplicationCommandData().Name == "recap" {
			b.handleAutocomplete(s, i)
		}
	case discordgo.InteractionMessageComponent:
		if strings.HasPrefix(i.MessageComponentData().CustomID, publishPrefix) {
			b.handlePublish(s, i)
		}
	}
}

// handleRecap runs one recap invocation: ephemeral ack first to mask the
// fetch and summarize latency, then either the draft with its Publish button
// or a failure notice.
func (b *Bot) handleRecap(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		log.Printf("discord: recap ack failed: %v", err)
		return
	}

	var since string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "since" {
			since = opt.StringValue()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), recapTimeout)
	defer cancel()

	summary, err := b.recaps.Run(ctx, i.ChannelID, since)
	if err != nil {
		log.Printf("discord: recap failed: %v", err)
		b.editResponse(s, i, failureNotice(err), nil)
		return
	}

	requestID := uuid.NewString()
	components := []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Publish",
					Style:    discordgo.PrimaryButton,
					CustomID: publishPrefix + requestID,
				},
			},
		},
	}
	b.editResponse(s, i, truncate(summary, maxMessageLength), components)
}

func (b *Bot) handleAutocomplete(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: []*discordgo.ApplicationCommandOptionChoice{
				{Name: "Last day", Value: "last_day"},
				{Name: "Last week", Value: "last_week"},
				{Name: "Last month", Value: "last_month"},
			},
		},
	})
	if err != nil {
		log.Printf("discord: autocomplete response failed: %v", err)
	}
}

// handlePublish re-emits the draft's own content as a public message. The
// draft message is the source of truth for what gets published; no separate
// store is consulted. After a successful publish the button is disabled so
// the draft publishes at most once.
func (b *Bot) handlePublish(s *discordgo.Session, i *discordgo.InteractionCreate) {
	draft := i.Message
	if draft == nil || draft.Content == "" {
		b.respondEphemeral(s, i, "There is no draft to publish.")
		return
	}
	if publishButtonDisabled(draft) {
		b.respondEphemeral(s, i, "This recap has already been published.")
		return
	}

	if _, err := s.ChannelMessageSend(i.ChannelID, draft.Content); err != nil {
		log.Printf("discord: publish failed: %v", err)
		b.respondEphemeral(s, i, "Could not publish the recap. Please try again.")
		return
	}

	disabled := disabledPublishRow(i.MessageComponentData().CustomID)
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    draft.Content,
			Components: disabled,
		},
	}); err != nil {
		log.Printf("discord: failed to disable publish button: %v", err)
	}
}

// onMessageCreate appends messages from allowed channels to the message log.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if b.msgLog == nil || !b.allowed[m.ChannelID] {
		return
	}

	name := m.Author.Username
	if m.Member != nil && m.Member.Nick != "" {
		name = m.Member.Nick
	}
	if err := b.msgLog.Append(m.Timestamp, name, m.Content); err != nil {
		log.Printf("discord: message log append failed: %v", err)
	}
}

func (b *Bot) editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string, components []discordgo.MessageComponent) {
	edit := &discordgo.WebhookEdit{Content: &content}
	if components != nil {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		log.Printf("discord: response edit failed: %v", err)
	}
}

func (b *Bot) respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("discord: ephemeral response failed: %v", err)
	}
}

// failureNotice maps a pipeline error to the single user-visible notice.
func failureNotice(err error) string {
	switch {
	case errors.Is(err, timeframe.ErrInvalidTimeframe):
		return "I couldn't understand that timeframe. Try `last_day`, `last_week`, `last_month`, a duration like `3 hours`, or a date."
	case errors.Is(err, recap.ErrNoMessages):
		return "Nothing to summarize in that timeframe."
	case errors.Is(err, summarizer.ErrNoCompletion):
		return "The summary service returned nothing. Please try again later."
	default:
		return "Could not build a recap. Please try again later."
	}
}

// publishButtonDisabled reports whether the draft's Publish button has
// already been disabled by a previous publish.
func publishButtonDisabled(m *discordgo.Message) bool {
	for _, c := range m.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, rc := range row.Components {
			if btn, ok := rc.(*discordgo.Button); ok && strings.HasPrefix(btn.CustomID, publishPrefix) {
				return btn.Disabled
			}
		}
	}
	return false
}

func disabledPublishRow(customID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Published",
					Style:    discordgo.SecondaryButton,
					CustomID: customID,
					Disabled: true,
				},
			},
		},
	}
}

// truncate shortens s to max characters, preferring a sentence boundary.
// The cut never lands inside a multi-byte rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	cut := s[:max-1]
	for len(cut) > 0 {
		if r, size := utf8.DecodeLastRuneInString(cut); r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	if idx := strings.LastIndexAny(cut, ".!?"); idx > max/2 {
		return cut[:idx+1]
	}
	return cut + "…"
}
