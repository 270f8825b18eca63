package config

import "github.com/soyeahso/relaybot/internal/domain"

// Config is the root configuration for relaybot.
type Config struct {
	Dev     bool          `yaml:"dev,omitempty"` // print dev events to the console
	Discord DiscordConfig `yaml:"discord,omitempty"`
	OpsLog  OpsLogConfig  `yaml:"opsLog,omitempty"`
	Relay   RelayConfig   `yaml:"relay,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// DiscordConfig holds bot credentials and presence.
type DiscordConfig struct {
	Token    string `yaml:"token,omitempty"`
	BotName  string `yaml:"botName,omitempty"`
	Activity string `yaml:"activity,omitempty"` // shown while online
}

// OpsLogConfig locates the webhook operational events are posted to.
type OpsLogConfig struct {
	WebhookID    string `yaml:"webhookId,omitempty"`
	WebhookToken string `yaml:"webhookToken,omitempty"`
}

// Enabled reports whether both webhook parts are set.
func (o OpsLogConfig) Enabled() bool {
	return o.WebhookID != "" && o.WebhookToken != ""
}

// Credential returns the ops webhook credential.
func (o OpsLogConfig) Credential() domain.WebhookCredential {
	return domain.WebhookCredential{ID: o.WebhookID, Token: o.WebhookToken}
}

// RelayConfig controls delivery.
type RelayConfig struct {
	MaxEmbeds        int    `yaml:"maxEmbeds,omitempty"`
	WebhookEnvPrefix string `yaml:"webhookEnvPrefix,omitempty"`
	ShowAuthor       *bool  `yaml:"showAuthor,omitempty"` // default for new forward rules; defaults to true
}

// ShowAuthorDefault resolves ShowAuthor.
func (r RelayConfig) ShowAuthorDefault() bool {
	return r.ShowAuthor == nil || *r.ShowAuthor
}

// StoreConfig locates the forward rule database.
type StoreConfig struct {
	Path string `yaml:"path,omitempty"` // defaults to <base>/data/relaybot.db
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json"
}
