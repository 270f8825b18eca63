package domain

import (
	"fmt"
	"time"
)

// User is a platform account.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator,omitempty"`
	AvatarURL     string `json:"avatarUrl,omitempty"`
	Bot           bool   `json:"bot,omitempty"`
}

// Tag returns "username#discriminator", or just the username for accounts
// that no longer carry a discriminator.
func (u User) Tag() string {
	if u.Discriminator == "" || u.Discriminator == "0" {
		return u.Username
	}
	return u.Username + "#" + u.Discriminator
}

// Mention returns the platform mention markup for the user.
func (u User) Mention() string {
	return "<@" + u.ID + ">"
}

// Member is the guild-scoped view of a user.
type Member struct {
	DisplayName string `json:"displayName,omitempty"`
}

// Identity is the name and avatar a message is displayed under.
type Identity struct {
	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Attachment represents a file attached to a message.
type Attachment struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Field is a name/value pair rendered inside a rich message.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a link preview or rich block carried by a source message.
type Embed struct {
	URL          string  `json:"url,omitempty"`
	Type         string  `json:"type,omitempty"`
	Title        string  `json:"title,omitempty"`
	Description  string  `json:"description,omitempty"`
	Color        int     `json:"color,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	ThumbnailURL string  `json:"thumbnailUrl,omitempty"`
	Footer       string  `json:"footer,omitempty"`
	Fields       []Field `json:"fields,omitempty"`
}

// SourceMessage is the inbound platform message a relay request was built from.
type SourceMessage struct {
	ID          string       `json:"id"`
	URL         string       `json:"url"`
	Content     string       `json:"content"`
	Embeds      []Embed      `json:"embeds,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Author      User         `json:"author"`
	Member      *Member      `json:"member,omitempty"`
	Timestamp   time.Time    `json:"timestamp"`
}

// MessageURL builds the jump link of a message. Direct messages use "@me"
// in place of a guild ID.
func MessageURL(guildID, channelID, messageID string) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// InboundMessage is a message received from the platform gateway.
type InboundMessage struct {
	Channel Channel       `json:"channel"`
	Source  SourceMessage `json:"source"`
}

// RichMessage is the structured message box posted to channels and to the
// operations webhook.
type RichMessage struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Color       int       `json:"color,omitempty"`
	Fields      []Field   `json:"fields,omitempty"`
	Author      *Identity `json:"author,omitempty"`
	Footer      string    `json:"footer,omitempty"`
}

// WebhookPost is a message sent through a webhook under a custom identity.
type WebhookPost struct {
	Content     string       `json:"content"`
	Username    string       `json:"username,omitempty"`
	AvatarURL   string       `json:"avatarUrl,omitempty"`
	Embeds      []Embed      `json:"embeds,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
