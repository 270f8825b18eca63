package discord

import (
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/soyeahso/relaybot/internal/domain"
)

// toUser converts a discordgo user.
func toUser(u *discordgo.User) domain.User {
	if u == nil {
		return domain.User{}
	}
	return domain.User{
		ID:            u.ID,
		Username:      u.Username,
		Discriminator: u.Discriminator,
		AvatarURL:     u.AvatarURL(""),
		Bot:           u.Bot,
	}
}

// displayName is the nickname, then the global name, then the username.
func displayName(m *discordgo.Member, u *discordgo.User) string {
	if m != nil && m.Nick != "" {
		return m.Nick
	}
	if u != nil && u.GlobalName != "" {
		return u.GlobalName
	}
	if u != nil {
		return u.Username
	}
	return ""
}

func channelKind(t discordgo.ChannelType) domain.ChannelKind {
	switch t {
	case discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildPublicThread, discordgo.ChannelTypeGuildPrivateThread,
		discordgo.ChannelTypeGuildNewsThread:
		return domain.ChannelKindText
	case discordgo.ChannelTypeDM, discordgo.ChannelTypeGroupDM:
		return domain.ChannelKindDM
	case discordgo.ChannelTypeGuildVoice, discordgo.ChannelTypeGuildStageVoice:
		return domain.ChannelKindVoice
	default:
		return domain.ChannelKindOther
	}
}

// toChannel converts a discordgo channel. guild may be nil for DMs or when
// the guild is not cached.
func toChannel(c *discordgo.Channel, guild *discordgo.Guild) domain.Channel {
	ch := domain.Channel{
		ID:      c.ID,
		Name:    c.Name,
		Kind:    channelKind(c.Type),
		GuildID: c.GuildID,
	}
	if guild != nil {
		ch.GuildName = guild.Name
		ch.OwnerID = guild.OwnerID
	}
	if ch.Kind == domain.ChannelKindDM && len(c.Recipients) > 0 {
		r := toUser(c.Recipients[0])
		ch.Recipient = &r
	}
	return ch
}

func toGuild(g *discordgo.Guild, ownerTag string) domain.Guild {
	return domain.Guild{ID: g.ID, Name: g.Name, OwnerTag: ownerTag}
}

func toAttachments(in []*discordgo.MessageAttachment) []domain.Attachment {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, domain.Attachment{
			ID:       a.ID,
			URL:      a.URL,
			MimeType: a.ContentType,
			Filename: a.Filename,
			Size:     int64(a.Size),
		})
	}
	return out
}

func toEmbeds(in []*discordgo.MessageEmbed) []domain.Embed {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Embed, 0, len(in))
	for _, e := range in {
		em := domain.Embed{
			URL:         e.URL,
			Type:        string(e.Type),
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		if e.Image != nil {
			em.ImageURL = e.Image.URL
		}
		if e.Thumbnail != nil {
			em.ThumbnailURL = e.Thumbnail.URL
		}
		if e.Footer != nil {
			em.Footer = e.Footer.Text
		}
		for _, f := range e.Fields {
			em.Fields = append(em.Fields, domain.Field{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		out = append(out, em)
	}
	return out
}

// toSource converts a gateway message.
func toSource(m *discordgo.Message) domain.SourceMessage {
	src := domain.SourceMessage{
		ID:          m.ID,
		URL:         domain.MessageURL(m.GuildID, m.ChannelID, m.ID),
		Content:     m.Content,
		Embeds:      toEmbeds(m.Embeds),
		Attachments: toAttachments(m.Attachments),
		Author:      toUser(m.Author),
		Timestamp:   m.Timestamp,
	}
	if m.Member != nil {
		src.Member = &domain.Member{DisplayName: displayName(m.Member, m.Author)}
	} else if m.Author != nil && m.Author.GlobalName != "" {
		src.Member = &domain.Member{DisplayName: m.Author.GlobalName}
	}
	return src
}

func fromFields(in []domain.Field) []*discordgo.MessageEmbedField {
	if len(in) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbedField, 0, len(in))
	for _, f := range in {
		out = append(out, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

// fromRichMessage renders a message box as an embed.
func fromRichMessage(msg domain.RichMessage) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       msg.Title,
		Description: msg.Description,
		Color:       msg.Color,
		Fields:      fromFields(msg.Fields),
	}
	if msg.Author != nil {
		e.Author = &discordgo.MessageEmbedAuthor{Name: msg.Author.DisplayName, IconURL: msg.Author.AvatarURL}
	}
	if msg.Footer != "" {
		e.Footer = &discordgo.MessageEmbedFooter{Text: msg.Footer}
	}
	return e
}

// fromEmbeds rebuilds source embeds for a webhook post. Plain link embeds
// carry nothing the platform would not unfurl again and are left out.
func fromEmbeds(in []domain.Embed) []*discordgo.MessageEmbed {
	var out []*discordgo.MessageEmbed
	for _, e := range in {
		if isLinkPreview(e) {
			continue
		}
		em := &discordgo.MessageEmbed{
			URL:         e.URL,
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
			Fields:      fromFields(e.Fields),
		}
		if e.ImageURL != "" {
			em.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
		}
		if e.ThumbnailURL != "" {
			em.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
		}
		if e.Footer != "" {
			em.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		out = append(out, em)
	}
	return out
}

func isLinkPreview(e domain.Embed) bool {
	return e.Type != "" && e.Type != string(discordgo.EmbedTypeRich)
}

// linkPreviews returns the URLs of embeds the platform builds from links.
func linkPreviews(in []domain.Embed) []string {
	var urls []string
	for _, e := range in {
		if isLinkPreview(e) && e.URL != "" {
			urls = append(urls, e.URL)
		}
	}
	return urls
}

// apiError converts a REST error into a domain.APIError so callers can
// match it with errors.Is.
func apiError(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Message == nil {
		return err
	}
	out := &domain.APIError{Code: rest.Message.Code, Message: rest.Message.Message}
	if rest.Response != nil {
		out.Status = rest.Response.StatusCode
	}
	return out
}

// appendLinks adds preview URLs missing from content on their own lines
// so they unfurl again.
func appendLinks(content string, urls []string) string {
	var missing []string
	for _, u := range urls {
		if !strings.Contains(content, u) {
			missing = append(missing, u)
		}
	}
	if len(missing) == 0 {
		return content
	}
	return content + "\n" + strings.Join(missing, "\n")
}
