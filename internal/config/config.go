package config

import "fmt"

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	defaultBotName          = "Relay bot"
	defaultActivity         = "relaying messages"
	defaultMaxEmbeds        = 5
	defaultWebhookEnvPrefix = "DISCORD_WEBHOOK"
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Discord: DiscordConfig{
			BotName:  defaultBotName,
			Activity: defaultActivity,
		},
		Relay: RelayConfig{
			MaxEmbeds:        defaultMaxEmbeds,
			WebhookEnvPrefix: defaultWebhookEnvPrefix,
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}
