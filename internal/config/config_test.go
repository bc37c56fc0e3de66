package config

import (
	"testing"

	"github.com/harun/chatclone/pkg/assembler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Providers.OpenAI.APIKey = "sk-test123456789"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.NotNil(t, cfg)
	assert.Equal(t, "gpt-3.5-turbo", cfg.Chat.Model)
	assert.Equal(t, 0.7, cfg.Chat.Temperature)
	assert.Equal(t, 10, cfg.Chat.MaxHistoryPairs)
	assert.False(t, cfg.Chat.CommitPartial)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Redaction)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "@every 1m", cfg.Server.ReapSchedule)
	assert.Equal(t, 1800, cfg.Server.IdleTimeoutSeconds)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(*Config) {},
		},
		{
			name:    "temperature out of range",
			mutate:  func(c *Config) { c.Chat.Temperature = 1.1 },
			wantErr: "temperature",
		},
		{
			name:    "unsupported model",
			mutate:  func(c *Config) { c.Chat.Model = "davinci" },
			wantErr: "unsupported model",
		},
		{
			name:    "missing key for model provider",
			mutate:  func(c *Config) { c.Chat.Model = "claude-3-5-haiku-latest" },
			wantErr: "providers.anthropic.api_key",
		},
		{
			name:    "missing openai key",
			mutate:  func(c *Config) { c.Providers.OpenAI.APIKey = "" },
			wantErr: "providers.openai.api_key",
		},
		{
			name:    "zero history",
			mutate:  func(c *Config) { c.Chat.MaxHistoryPairs = 0 },
			wantErr: "max_history_pairs",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: "port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigChatOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Chat.Model = "gpt-4o"
	cfg.Chat.Temperature = 0.3
	cfg.Chat.MaxTokens = 512
	cfg.Chat.SystemPrompt = "be brief"

	assert.Equal(t, assembler.Options{
		Model:        "gpt-4o",
		Temperature:  0.3,
		MaxTokens:    512,
		SystemPrompt: "be brief",
	}, cfg.ChatOptions())
}

func TestConfigRedacted(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.Anthropic.APIKey = "sk-ant-abcdefghijkl"

	redacted := cfg.Redacted()
	assert.NotContains(t, redacted.String(), "sk-test123456789")
	assert.NotContains(t, redacted.String(), "abcdefghijkl")
	assert.Contains(t, redacted.String(), "[REDACTED]")

	// the original is untouched
	assert.Equal(t, "sk-test123456789", cfg.Providers.OpenAI.APIKey)
}

func TestConfigProviderFactory(t *testing.T) {
	cfg := validConfig()
	cfg.Providers.OpenAI.BaseURL = "http://localhost:9999/v1"

	factory := cfg.ProviderFactory()
	assert.Equal(t, "sk-test123456789", factory.OpenAI.APIKey)
	assert.Equal(t, "http://localhost:9999/v1", factory.OpenAI.BaseURL)
	assert.Empty(t, factory.Anthropic.APIKey)
}
