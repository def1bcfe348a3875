package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"recap-bot/internal/history"
)

// maxMembersPerFetch bounds the single member-list call made per page.
const maxMembersPerFetch = 1000

// HistoryReader adapts the Discord REST API to the history.Source and
// history.MemberDirectory contracts.
type HistoryReader struct {
	session *discordgo.Session
}

func NewHistoryReader(session *discordgo.Session) *HistoryReader {
	return &HistoryReader{session: session}
}

func (r *HistoryReader) MessagesBefore(ctx context.Context, channelID, beforeID string, limit int) ([]history.Message, error) {
	msgs, err := r.session.ChannelMessages(channelID, limit, beforeID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: failed to fetch channel messages: %w", err)
	}

	out := make([]history.Message, 0, len(msgs))
	for _, m := range msgs {
		var authorID string
		if m.Author != nil {
			authorID = m.Author.ID
		}
		out = append(out, history.Message{
			ID:        m.ID,
			ChannelID: m.ChannelID,
			AuthorID:  authorID,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		})
	}
	return out, nil
}

func (r *HistoryReader) DisplayNames(ctx context.Context, channelID string) (map[string]string, error) {
	channel, err := r.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: failed to look up channel: %w", err)
	}
	if channel.GuildID == "" {
		return nil, fmt.Errorf("discord: channel %s is not in a guild", channelID)
	}

	members, err := r.session.GuildMembers(channel.GuildID, "", maxMembersPerFetch, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("discord: failed to list guild members: %w", err)
	}

	names := make(map[string]string, len(members))
	for _, m := range members {
		if m.User == nil {
			continue
		}
		names[m.User.ID] = displayName(m)
	}
	return names, nil
}

func displayName(m *discordgo.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	if m.User.GlobalName != "" {
		return m.User.GlobalName
	}
	return m.User.Username
}
