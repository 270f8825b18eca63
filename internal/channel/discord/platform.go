package discord

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/bwmarrin/discordgo"
	"github.com/soyeahso/relaybot/internal/domain"
)

// maxFileSize is the upload limit for bots without boosted guilds.
const maxFileSize = 25 << 20

// Channel looks a channel up in the gateway state, falling back to REST.
func (c *Client) Channel(ctx context.Context, id string) (domain.Channel, bool) {
	ch, err := c.session.State.Channel(id)
	if err != nil {
		ch, err = c.session.Channel(id, discordgo.WithContext(ctx))
		if err != nil {
			c.log.Debug().Err(apiError(err)).Str("channel", id).Msg("channel lookup failed")
			return domain.Channel{}, false
		}
	}
	return toChannel(ch, c.guild(ctx, ch.GuildID)), true
}

func (c *Client) guild(ctx context.Context, id string) *discordgo.Guild {
	if id == "" {
		return nil
	}
	if g, err := c.session.State.Guild(id); err == nil {
		return g
	}
	g, err := c.session.Guild(id, discordgo.WithContext(ctx))
	if err != nil {
		return nil
	}
	return g
}

// CanWrite reports whether the bot may view and post in a channel.
func (c *Client) CanWrite(ctx context.Context, channelID string) bool {
	self := c.session.State.User
	if self == nil {
		return false
	}
	perms, err := c.session.State.UserChannelPermissions(self.ID, channelID)
	if err != nil {
		perms, err = c.session.UserChannelPermissions(self.ID, channelID, discordgo.WithContext(ctx))
		if err != nil {
			c.log.Debug().Err(apiError(err)).Str("channel", channelID).Msg("permission lookup failed")
			return false
		}
	}
	const need = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages
	return perms&need == need
}

// DirectChannel opens the DM channel with a user.
func (c *Client) DirectChannel(ctx context.Context, userID string) (domain.Channel, error) {
	ch, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return domain.Channel{}, apiError(err)
	}
	return toChannel(ch, nil), nil
}

// SendMessage posts a message box.
func (c *Client) SendMessage(ctx context.Context, channelID string, msg domain.RichMessage) error {
	_, err := c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{fromRichMessage(msg)},
	}, discordgo.WithContext(ctx))
	return apiError(err)
}

// SendText posts plain text.
func (c *Client) SendText(ctx context.Context, channelID, text string) error {
	_, err := c.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx))
	return apiError(err)
}

// SendFile re-uploads an attachment.
func (c *Client) SendFile(ctx context.Context, channelID string, att domain.Attachment) error {
	file, err := c.fetch(ctx, att)
	if err != nil {
		return err
	}
	_, err = c.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Files: []*discordgo.File{file},
	}, discordgo.WithContext(ctx))
	return apiError(err)
}

// SendWebhook executes a destination webhook under the post's identity.
// Attachments that cannot be fetched are linked instead.
func (c *Client) SendWebhook(ctx context.Context, cred domain.WebhookCredential, post domain.WebhookPost) error {
	params := &discordgo.WebhookParams{
		Content:   appendLinks(post.Content, linkPreviews(post.Embeds)),
		Username:  post.Username,
		AvatarURL: post.AvatarURL,
		Embeds:    fromEmbeds(post.Embeds),
	}
	for _, att := range post.Attachments {
		file, err := c.fetch(ctx, att)
		if err != nil {
			c.log.Warn().Err(err).Str("attachment", att.Filename).Msg("attaching by link")
			params.Content += "\n" + att.URL
			continue
		}
		params.Files = append(params.Files, file)
	}

	_, err := c.session.WebhookExecute(cred.ID, cred.Token, false, params, discordgo.WithContext(ctx))
	return apiError(err)
}

// DirectMessage sends text to a user's DMs.
func (c *Client) DirectMessage(ctx context.Context, userID, text string) error {
	ch, err := c.session.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return apiError(err)
	}
	return c.SendText(ctx, ch.ID, text)
}

// fetch downloads an attachment so it can be uploaded again.
func (c *Client) fetch(ctx context.Context, att domain.Attachment) (*discordgo.File, error) {
	if att.Size > maxFileSize {
		return nil, fmt.Errorf("attachment %s: %d bytes exceeds upload limit", att.Filename, att.Size)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, att.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("attachment %s: %w", att.Filename, err)
	}
	req.Header.Set("User-Agent", c.session.UserAgent)

	resp, err := c.session.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching attachment %s: %w", att.Filename, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching attachment %s: %s", att.Filename, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", att.Filename, err)
	}
	if len(data) > maxFileSize {
		return nil, fmt.Errorf("attachment %s exceeds upload limit", att.Filename)
	}

	contentType := att.MimeType
	if contentType == "" {
		contentType = resp.Header.Get("Content-Type")
	}
	name := att.Filename
	if name == "" {
		name = "file"
	}
	return &discordgo.File{Name: name, ContentType: contentType, Reader: bytes.NewReader(data)}, nil
}
