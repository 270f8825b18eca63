// Package discord implements the relay platform on Discord using discordgo.
package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/soyeahso/relaybot/internal/domain"
	"github.com/soyeahso/relaybot/internal/hooks"
	"github.com/soyeahso/relaybot/internal/logging"
	"github.com/soyeahso/relaybot/internal/version"
)

// Intents the relay needs: guild lifecycle, guild and direct messages with content.
const intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsDirectMessages |
	discordgo.IntentMessageContent

// Config holds the adapter settings.
type Config struct {
	Token    string
	Activity string // shown while online
}

// Status is the runtime state of the gateway connection.
type Status struct {
	Connected bool   `json:"connected"`
	Running   bool   `json:"running"`
	User      string `json:"user,omitempty"`
	Guilds    int    `json:"guilds"`
	LastError string `json:"lastError,omitempty"`
}

// Client is the Discord platform adapter. It implements domain.Platform.
type Client struct {
	cfg     Config
	session *discordgo.Session
	hooks   *hooks.Manager
	log     *logging.Logger

	// lookupUser resolves guild owners; tests replace it.
	lookupUser func(id string) (*discordgo.User, error)

	mu       sync.RWMutex
	ctx      context.Context
	handler  func(msg domain.InboundMessage)
	running  bool
	lastErr  string
	startup  map[string]bool // guilds announced by Ready, replayed as GuildCreate
	removers []func()
}

var _ domain.Platform = (*Client)(nil)

// New creates an adapter. No connection is made until Start.
func New(cfg Config, hm *hooks.Manager, log *logging.Logger) (*Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord: bot token is required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord: creating session: %w", err)
	}
	session.Identify.Intents = intents
	session.UserAgent = version.UserAgent()

	c := &Client{
		cfg:     cfg,
		session: session,
		hooks:   hm,
		log:     log.Sub("discord"),
		ctx:     context.Background(),
		startup: map[string]bool{},
	}
	c.lookupUser = func(id string) (*discordgo.User, error) {
		return c.session.User(id)
	}
	return c, nil
}

// Session exposes the underlying discordgo session.
func (c *Client) Session() *discordgo.Session {
	return c.session
}

// OnMessage sets the handler for inbound messages.
func (c *Client) OnMessage(handler func(msg domain.InboundMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handler = handler
}

// Status returns the current runtime status.
func (c *Client) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := Status{
		Connected: c.session.DataReady,
		Running:   c.running,
		LastError: c.lastErr,
	}
	if c.session.State != nil {
		if u := c.session.State.User; u != nil {
			st.User = u.String()
		}
		st.Guilds = len(c.session.State.Guilds)
	}
	return st
}

// Start registers gateway handlers and opens the connection. ctx is used
// for work started by gateway events.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	c.ctx = ctx
	c.removers = append(c.removers,
		c.session.AddHandler(c.onReady),
		c.session.AddHandler(c.onGuildCreate),
		c.session.AddHandler(c.onGuildDelete),
		c.session.AddHandler(c.onMessageCreate),
	)
	c.mu.Unlock()

	c.log.Info().Msg("connecting to discord gateway")
	if err := c.session.Open(); err != nil {
		c.mu.Lock()
		c.lastErr = err.Error()
		c.mu.Unlock()
		return fmt.Errorf("discord: opening gateway: %w", err)
	}

	c.mu.Lock()
	c.running = true
	c.lastErr = ""
	c.mu.Unlock()
	return nil
}

// Stop closes the gateway connection.
func (c *Client) Stop(_ context.Context) error {
	c.mu.Lock()
	for _, remove := range c.removers {
		remove()
	}
	c.removers = nil
	c.running = false
	c.mu.Unlock()

	c.log.Info().Msg("closing discord gateway")
	return c.session.Close()
}

// SetStatus updates the bot presence. Nothing changes when the bot cannot
// write where the work happens.
func (c *Client) SetStatus(_ context.Context, status domain.Status, writable bool) error {
	if !writable {
		return nil
	}
	data, err := presence(status, c.cfg.Activity)
	if err != nil {
		return err
	}
	return c.session.UpdateStatusComplex(data)
}

func presence(status domain.Status, activity string) (discordgo.UpdateStatusData, error) {
	switch status {
	case domain.StatusOnline:
		data := discordgo.UpdateStatusData{Status: string(discordgo.StatusOnline)}
		if activity != "" {
			data.Activities = []*discordgo.Activity{{Name: activity, Type: discordgo.ActivityTypeGame}}
		}
		return data, nil
	case domain.StatusBusy:
		return discordgo.UpdateStatusData{Status: string(discordgo.StatusDoNotDisturb)}, nil
	case domain.StatusFree:
		return discordgo.UpdateStatusData{Status: string(discordgo.StatusOnline)}, nil
	default:
		return discordgo.UpdateStatusData{}, fmt.Errorf("discord: unknown status %q", status)
	}
}
