package domain

import (
	"context"
	"fmt"
	"strings"
)

// ChannelKind classifies a platform channel.
type ChannelKind string

const (
	ChannelKindText  ChannelKind = "text"
	ChannelKindDM    ChannelKind = "dm"
	ChannelKindVoice ChannelKind = "voice"
	ChannelKindOther ChannelKind = "other"
)

// Channel is a live platform channel.
type Channel struct {
	ID        string      `json:"id"`
	Name      string      `json:"name,omitempty"`
	Kind      ChannelKind `json:"kind"`
	GuildID   string      `json:"guildId,omitempty"`
	GuildName string      `json:"guildName,omitempty"`
	OwnerID   string      `json:"ownerId,omitempty"` // guild owner
	Recipient *User       `json:"recipient,omitempty"`
}

// Mention returns the platform mention markup for the channel.
func (c Channel) Mention() string {
	return "<#" + c.ID + ">"
}

// Guild is the summary of a server reported on join and leave.
type Guild struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	OwnerTag string `json:"ownerTag"`
}

// Status is a bot presence state.
type Status string

const (
	StatusOnline Status = "online" // online, showing the configured activity
	StatusBusy   Status = "busy"   // do not disturb
	StatusFree   Status = "free"   // online, no activity
)

// WebhookCredential identifies a webhook endpoint.
type WebhookCredential struct {
	ID    string
	Token string
}

// ParseWebhookCredential parses the "<id>/<token>" form.
func ParseWebhookCredential(s string) (WebhookCredential, error) {
	id, token, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || id == "" || token == "" || strings.Contains(token, "/") {
		return WebhookCredential{}, fmt.Errorf("webhook credential must be <id>/<token>")
	}
	return WebhookCredential{ID: id, Token: token}, nil
}

// String returns the "<id>/<token>" form.
func (c WebhookCredential) String() string {
	return c.ID + "/" + c.Token
}

// Platform is the chat platform as seen by the relay core. Implementations
// report rejected sends as *APIError where the platform supplies a code.
type Platform interface {
	// Channel looks up a channel in live state.
	Channel(ctx context.Context, id string) (Channel, bool)

	// CanWrite reports whether the bot may post in the channel.
	CanWrite(ctx context.Context, channelID string) bool

	// DirectChannel opens (or reuses) the DM channel with a user.
	DirectChannel(ctx context.Context, userID string) (Channel, error)

	// SendMessage posts a structured message box.
	SendMessage(ctx context.Context, channelID string, msg RichMessage) error

	// SendText posts plain text.
	SendText(ctx context.Context, channelID, text string) error

	// SendFile re-posts an attachment.
	SendFile(ctx context.Context, channelID string, att Attachment) error

	// SendWebhook posts through a webhook under a custom identity.
	SendWebhook(ctx context.Context, cred WebhookCredential, post WebhookPost) error

	// DirectMessage sends plain text to a user's DM channel.
	DirectMessage(ctx context.Context, userID, text string) error
}
