package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/hooks"
)

func (c *Client) baseContext() context.Context {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ctx
}

func (c *Client) onReady(_ *discordgo.Session, r *discordgo.Ready) {
	c.mu.Lock()
	for _, g := range r.Guilds {
		c.startup[g.ID] = true
	}
	c.mu.Unlock()

	ctx := c.baseContext()
	user := toUser(r.User)
	c.log.Info().Str("user", user.Tag()).Int("guilds", len(r.Guilds)).Msg("discord ready")

	if err := c.SetStatus(ctx, domain.StatusOnline, true); err != nil {
		c.log.Warn().Err(err).Msg("setting presence failed")
	}
	c.hooks.Emit(ctx, hooks.EventBotReady, map[string]any{
		"user":   user.Tag(),
		"guilds": len(r.Guilds),
	})
}

// onGuildCreate reports guilds the bot was added to. The gateway replays
// every known guild after Ready; those are not joins.
func (c *Client) onGuildCreate(_ *discordgo.Session, g *discordgo.GuildCreate) {
	if g.Guild == nil || g.Unavailable {
		return
	}
	c.mu.Lock()
	replay := c.startup[g.ID]
	delete(c.startup, g.ID)
	c.mu.Unlock()
	if replay {
		return
	}

	guild := toGuild(g.Guild, c.ownerTag(g.OwnerID))
	c.log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("joined guild")
	c.hooks.Emit(c.baseContext(), hooks.EventGuildJoin, map[string]any{"guild": guild})
}

// onGuildDelete reports guilds the bot left. Outages also delete guilds
// and mark them unavailable.
func (c *Client) onGuildDelete(_ *discordgo.Session, g *discordgo.GuildDelete) {
	if g.Guild == nil {
		return
	}
	if g.Unavailable {
		c.log.Warn().Str("guild", g.ID).Msg("guild unavailable")
		return
	}

	src := g.Guild
	if g.BeforeDelete != nil {
		src = g.BeforeDelete
	}
	guild := toGuild(src, c.ownerTag(src.OwnerID))
	c.log.Info().Str("guild", g.ID).Str("name", guild.Name).Msg("left guild")
	c.hooks.Emit(c.baseContext(), hooks.EventGuildLeave, map[string]any{"guild": guild})
}

func (c *Client) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || m.Author == nil {
		return
	}
	if self := s.State.User; self != nil && m.Author.ID == self.ID {
		return
	}

	c.mu.RLock()
	handler := c.handler
	c.mu.RUnlock()
	if handler == nil {
		return
	}

	ctx := c.baseContext()
	ch, ok := c.Channel(ctx, m.ChannelID)
	if !ok {
		c.log.Warn().Str("channel", m.ChannelID).Msg("message from unknown channel")
		return
	}
	handler(domain.InboundMessage{Channel: ch, Source: toSource(m.Message)})
}

// ownerTag resolves a guild owner to "user#0000", or the raw ID when the
// lookup fails.
func (c *Client) ownerTag(ownerID string) string {
	if ownerID == "" {
		return ""
	}
	u, err := c.lookupUser(ownerID)
	if err != nil || u == nil {
		c.log.Debug().Err(err).Str("owner", ownerID).Msg("owner lookup failed")
		return ownerID
	}
	return toUser(u).Tag()
}
