package notifier

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// ChannelSender is the part of a discordgo session the announcer uses.
type ChannelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordNotifier mirrors system broadcasts into a Discord channel.
type DiscordNotifier struct {
	session   ChannelSender
	channelID string
}

func NewDiscordNotifier(session ChannelSender, channelID string) *DiscordNotifier {
	return &DiscordNotifier{
		session:   session,
		channelID: channelID,
	}
}

// NewDiscordSession opens a bot session. Returns nil, nil when no token is set.
func NewDiscordSession(botToken string) (*discordgo.Session, error) {
	if botToken == "" {
		return nil, nil
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return session, nil
}

func (n *DiscordNotifier) AnnounceBroadcast(message string, targetURL *string) error {
	if n.session == nil {
		return fmt.Errorf("discord session is nil")
	}
	if n.channelID == "" {
		return fmt.Errorf("discord channel ID is empty")
	}

	content := fmt.Sprintf("📢 **Announcement**\n%s", message)
	if targetURL != nil && *targetURL != "" {
		content += fmt.Sprintf("\n%s", *targetURL)
	}

	if _, err := n.session.ChannelMessageSend(n.channelID, content); err != nil {
		return fmt.Errorf("send discord message: %w", err)
	}
	return nil
}
