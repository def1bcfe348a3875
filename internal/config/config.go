package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Service  ServiceConfig  `mapstructure:"service"`
	Discord  DiscordConfig  `mapstructure:"discord"`
	Summary  SummaryConfig  `mapstructure:"summary"`
}

// DatabaseConfig is accepted for compatibility with existing config files;
// nothing in the bot reads it yet.
type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServiceConfig struct {
	ProduceDigestIntervalSeconds int    `mapstructure:"produce_digest_interval_seconds"`
	MessageLogDirectory          string `mapstructure:"message_log_directory"`
	MaxGPTRequestTokens          int    `mapstructure:"max_gpt_request_tokens"`
}

type DiscordConfig struct {
	Token      string   `mapstructure:"token"`
	GuildID    string   `mapstructure:"guild_id"`
	ChannelIDs []string `mapstructure:"channel_ids"`
}

type SummaryConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	Prompt    string `mapstructure:"prompt"`
	MaxTokens int    `mapstructure:"max_tokens"`
}

// DefaultPrompt is the system instruction used when the config omits one.
const DefaultPrompt = "You are a helpful assistant. Summarize the following chat transcript, " +
	"covering the main topics discussed and any decisions that were made."

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Service.MessageLogDirectory == "" {
		cfg.Service.MessageLogDirectory = "logs"
	}
	if cfg.Service.MaxGPTRequestTokens == 0 {
		cfg.Service.MaxGPTRequestTokens = 16000
	}
	if cfg.Summary.Provider == "" {
		cfg.Summary.Provider = "openai"
	}
	if cfg.Summary.Model == "" {
		cfg.Summary.Model = "gpt-4o-mini"
	}
	if cfg.Summary.Prompt == "" {
		cfg.Summary.Prompt = DefaultPrompt
	}
	if cfg.Summary.MaxTokens == 0 {
		cfg.Summary.MaxTokens = 4096
	}
}

func validate(cfg *Config) error {
	if cfg.Discord.Token == "" {
		return fmt.Errorf("config: discord.token is required (set DISCORD_TOKEN env var)")
	}
	switch cfg.Summary.Provider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("config: unsupported summary provider %q (supported: openai, gemini)", cfg.Summary.Provider)
	}
	if cfg.Summary.MaxTokens < 0 {
		return fmt.Errorf("config: summary.max_tokens must not be negative")
	}
	if cfg.Service.MaxGPTRequestTokens < 0 {
		return fmt.Errorf("config: service.max_gpt_request_tokens must not be negative")
	}
	if cfg.Service.ProduceDigestIntervalSeconds < 0 {
		return fmt.Errorf("config: service.produce_digest_interval_seconds must not be negative")
	}
	return nil
}

// Path returns the config file path: the CONFIG_FILE environment variable when
// set, otherwise config.toml in the working directory.
func Path() string {
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		return p
	}
	return "config.toml"
}

func configType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		return "toml"
	}
}

// Load reads the config file, expands environment variables, applies defaults,
// and validates the configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	v := viper.New()
	v.SetConfigType(configType(path))
	if err := v.ReadConfig(strings.NewReader(expanded)); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
