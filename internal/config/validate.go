package config

import (
	"fmt"
	"regexp"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// envPrefixPattern is what a shell accepts as a variable name.
var envPrefixPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Discord validation
	if cfg.Discord.Token == "" {
		issues = append(issues, ValidationIssue{
			Path:    "discord.token",
			Message: "token is required (or set RELAYBOT_DISCORD_TOKEN)",
		})
	}

	// Ops log validation: both parts or neither
	if (cfg.OpsLog.WebhookID == "") != (cfg.OpsLog.WebhookToken == "") {
		issues = append(issues, ValidationIssue{
			Path:    "opsLog",
			Message: "webhookId and webhookToken must be set together",
		})
	}

	// Relay validation
	if cfg.Relay.MaxEmbeds < 1 || cfg.Relay.MaxEmbeds > 10 {
		issues = append(issues, ValidationIssue{
			Path:    "relay.maxEmbeds",
			Message: fmt.Sprintf("must be 1-10, got %d", cfg.Relay.MaxEmbeds),
		})
	}
	if cfg.Relay.WebhookEnvPrefix != "" && !envPrefixPattern.MatchString(cfg.Relay.WebhookEnvPrefix) {
		issues = append(issues, ValidationIssue{
			Path:    "relay.webhookEnvPrefix",
			Message: fmt.Sprintf("must be a valid environment variable name, got %q", cfg.Relay.WebhookEnvPrefix),
		})
	}

	// Logging validation
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{"pretty", "compact", "json"}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	return issues
}
