package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields lets tokens be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Discord.Token = expandEnvVars(cfg.Discord.Token)
	cfg.OpsLog.WebhookID = expandEnvVars(cfg.OpsLog.WebhookID)
	cfg.OpsLog.WebhookToken = expandEnvVars(cfg.OpsLog.WebhookToken)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	expandSensitiveFields(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields left empty by the file.
func applyDefaults(cfg *Config) {
	if cfg.Discord.BotName == "" {
		cfg.Discord.BotName = defaultBotName
	}
	if cfg.Relay.MaxEmbeds == 0 {
		cfg.Relay.MaxEmbeds = defaultMaxEmbeds
	}
	if cfg.Relay.WebhookEnvPrefix == "" {
		cfg.Relay.WebhookEnvPrefix = defaultWebhookEnvPrefix
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.ConsoleStyle == "" {
		cfg.Logging.ConsoleStyle = "pretty"
	}
}

// applyEnvOverrides reads RELAYBOT_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RELAYBOT_DISCORD_TOKEN"); v != "" {
		cfg.Discord.Token = v
	}
	if v := os.Getenv("RELAYBOT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("RELAYBOT_DEV"); v != "" {
		if dev, err := strconv.ParseBool(v); err == nil {
			cfg.Dev = dev
		}
	}
	if v := os.Getenv("RELAYBOT_MAX_EMBEDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Relay.MaxEmbeds = n
		}
	}
}
