package discord

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// NewSession creates a Discord session with the intents the bot needs:
// guild metadata, guild messages, and message content.
func NewSession(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord: failed to create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent
	return session, nil
}
