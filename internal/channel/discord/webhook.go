package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/version"
)

// WebhookPoster posts operational events to a fixed webhook. It needs no
// gateway connection.
type WebhookPoster struct {
	session  *discordgo.Session
	cred     domain.WebhookCredential
	username string
}

// NewWebhookPoster creates a poster for cred. session may be nil, in which
// case an unauthenticated REST session is created.
func NewWebhookPoster(session *discordgo.Session, cred domain.WebhookCredential, username string) (*WebhookPoster, error) {
	if cred.ID == "" || cred.Token == "" {
		return nil, fmt.Errorf("discord: ops webhook credential is incomplete")
	}
	if session == nil {
		s, err := discordgo.New("")
		if err != nil {
			return nil, fmt.Errorf("discord: creating rest session: %w", err)
		}
		s.UserAgent = version.UserAgent()
		session = s
	}
	return &WebhookPoster{session: session, cred: cred, username: username}, nil
}

// Post executes the webhook with msg as its only embed.
func (p *WebhookPoster) Post(ctx context.Context, msg domain.RichMessage) error {
	_, err := p.session.WebhookExecute(p.cred.ID, p.cred.Token, false, &discordgo.WebhookParams{
		Username: p.username,
		Embeds:   []*discordgo.MessageEmbed{fromRichMessage(msg)},
	}, discordgo.WithContext(ctx))
	return apiError(err)
}
