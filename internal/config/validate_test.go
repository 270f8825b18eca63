package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	cfg := Defaults()
	cfg.Discord.Token = "bot-token"
	return cfg
}

func issuePaths(issues []ValidationIssue) []string {
	var out []string
	for _, i := range issues {
		out = append(out, i.Path)
	}
	return out
}

func TestValidate_Valid(t *testing.T) {
	cfg := validConfig()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_DefaultsNeedToken(t *testing.T) {
	cfg := Defaults()
	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "discord.token", issues[0].Path)
}

func TestValidate_OpsLogPairing(t *testing.T) {
	tests := []struct {
		name    string
		id, tok string
		invalid bool
	}{
		{"neither", "", "", false},
		{"both", "123", "abc", false},
		{"id only", "123", "", true},
		{"token only", "", "abc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.OpsLog = OpsLogConfig{WebhookID: tt.id, WebhookToken: tt.tok}
			issues := Validate(&cfg)
			if tt.invalid {
				assert.Equal(t, []string{"opsLog"}, issuePaths(issues))
			} else {
				assert.Empty(t, issues)
			}
		})
	}
}

func TestValidate_MaxEmbeds(t *testing.T) {
	for _, n := range []int{-1, 0, 11} {
		cfg := validConfig()
		cfg.Relay.MaxEmbeds = n
		assert.Equal(t, []string{"relay.maxEmbeds"}, issuePaths(Validate(&cfg)), "maxEmbeds=%d", n)
	}
	for _, n := range []int{1, 5, 10} {
		cfg := validConfig()
		cfg.Relay.MaxEmbeds = n
		assert.Empty(t, Validate(&cfg), "maxEmbeds=%d", n)
	}
}

func TestValidate_WebhookEnvPrefix(t *testing.T) {
	cfg := validConfig()
	cfg.Relay.WebhookEnvPrefix = "MIRROR_HOOK"
	assert.Empty(t, Validate(&cfg))

	cfg.Relay.WebhookEnvPrefix = "bad-prefix"
	assert.Equal(t, []string{"relay.webhookEnvPrefix"}, issuePaths(Validate(&cfg)))
}

func TestValidate_Logging(t *testing.T) {
	for _, level := range []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.Empty(t, Validate(&cfg), "level %s", level)
	}

	cfg := validConfig()
	cfg.Logging.Level = "verbose"
	cfg.Logging.ConsoleStyle = "fancy"
	assert.Equal(t, []string{"logging.level", "logging.consoleStyle"}, issuePaths(Validate(&cfg)))
}

func TestValidate_MultipleIssues(t *testing.T) {
	cfg := Config{Relay: RelayConfig{MaxEmbeds: 50}, OpsLog: OpsLogConfig{WebhookID: "1"}}
	assert.Len(t, Validate(&cfg), 3)
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "relay.maxEmbeds", Message: "must be 1-10, got 0"}
	assert.Equal(t, "relay.maxEmbeds: must be 1-10, got 0", issue.String())
}
