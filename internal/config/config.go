package config

import (
	"encoding/json"
	"fmt"

	"github.com/harun/chatclone/pkg/assembler"
	"github.com/harun/chatclone/pkg/session"
)

// Config represents the main chatclone configuration
type Config struct {
	// Chat behaviour
	Chat ChatConfig `json:"chat" mapstructure:"chat"`

	// Provider credentials
	Providers ProvidersConfig `json:"providers" mapstructure:"providers"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Gateway server
	Server ServerConfig `json:"server" mapstructure:"server"`
}

// ChatConfig holds the settings each stream is opened with
type ChatConfig struct {
	Model           string  `json:"model" mapstructure:"model"`
	Temperature     float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens       int     `json:"max_tokens" mapstructure:"max_tokens"`
	MaxHistoryPairs int     `json:"max_history_pairs" mapstructure:"max_history_pairs"`
	SystemPrompt    string  `json:"system_prompt" mapstructure:"system_prompt"`
	CommitPartial   bool    `json:"commit_partial" mapstructure:"commit_partial"`
}

// ProvidersConfig holds credentials per provider
type ProvidersConfig struct {
	OpenAI    ProviderConfig `json:"openai" mapstructure:"openai"`
	Anthropic ProviderConfig `json:"anthropic" mapstructure:"anthropic"`
}

// ProviderConfig holds one provider's connection settings
type ProviderConfig struct {
	APIKey  string `json:"api_key" mapstructure:"api_key"`
	BaseURL string `json:"base_url" mapstructure:"base_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	MaxSize   int    `json:"max_size" mapstructure:"max_size"` // MB
	MaxAge    int    `json:"max_age" mapstructure:"max_age"`   // days
	Compress  bool   `json:"compress" mapstructure:"compress"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// ServerConfig holds gateway server configuration
type ServerConfig struct {
	Host               string `json:"host" mapstructure:"host"`
	Port               int    `json:"port" mapstructure:"port"`
	IdleTimeoutSeconds int    `json:"idle_timeout_seconds" mapstructure:"idle_timeout_seconds"`
	ReapSchedule       string `json:"reap_schedule" mapstructure:"reap_schedule"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Chat: ChatConfig{
			Model:           assembler.DefaultModel,
			Temperature:     0.7,
			MaxTokens:       0,
			MaxHistoryPairs: session.DefaultMaxPairs,
			SystemPrompt:    "",
			CommitPartial:   false,
		},
		Logging: LoggingConfig{
			Level:     "info",
			MaxSize:   100,
			MaxAge:    7,
			Compress:  true,
			Redaction: true,
		},
		Server: ServerConfig{
			Host:               "127.0.0.1",
			Port:               8080,
			IdleTimeoutSeconds: int(session.DefaultIdleTimeout.Seconds()),
			ReapSchedule:       session.DefaultReapSchedule,
		},
	}
}

// ChatOptions converts the chat section into stream options
func (c *Config) ChatOptions() assembler.Options {
	return assembler.Options{
		Model:        c.Chat.Model,
		Temperature:  c.Chat.Temperature,
		MaxTokens:    c.Chat.MaxTokens,
		SystemPrompt: c.Chat.SystemPrompt,
	}
}

// ProviderFactory builds the SDK provider factory from the credentials
func (c *Config) ProviderFactory() *assembler.ProviderFactory {
	return &assembler.ProviderFactory{
		OpenAI: assembler.Credentials{
			APIKey:  c.Providers.OpenAI.APIKey,
			BaseURL: c.Providers.OpenAI.BaseURL,
		},
		Anthropic: assembler.Credentials{
			APIKey:  c.Providers.Anthropic.APIKey,
			BaseURL: c.Providers.Anthropic.BaseURL,
		},
	}
}

// String returns a JSON representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// Redacted returns a copy with credentials masked
func (c *Config) Redacted() *Config {
	out := *c
	out.Providers.OpenAI.APIKey = maskKey(c.Providers.OpenAI.APIKey)
	out.Providers.Anthropic.APIKey = maskKey(c.Providers.Anthropic.APIKey)
	return &out
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "[REDACTED]"
	}
	return key[:3] + "...[REDACTED]"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.ChatOptions().Validate(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}

	if c.Chat.MaxHistoryPairs <= 0 {
		return fmt.Errorf("chat: max_history_pairs must be positive, got %d", c.Chat.MaxHistoryPairs)
	}

	// The configured model needs credentials for its provider
	model, _ := assembler.LookupModel(c.Chat.Model)
	switch model.Provider {
	case assembler.ProviderOpenAI:
		if c.Providers.OpenAI.APIKey == "" {
			return fmt.Errorf("providers.openai.api_key is required for model %s", model.ID)
		}
	case assembler.ProviderAnthropic:
		if c.Providers.Anthropic.APIKey == "" {
			return fmt.Errorf("providers.anthropic.api_key is required for model %s", model.ID)
		}
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", c.Server.Port)
	}
	if c.Server.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("server: idle_timeout_seconds must be >= 0")
	}

	return nil
}
