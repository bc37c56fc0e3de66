package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("CHATCLONE_PROVIDERS_OPENAI_API_KEY", "")
	t.Setenv("CHATCLONE_PROVIDERS_ANTHROPIC_API_KEY", "")
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader("/path/to/config.json")
	assert.NotNil(t, loader)
	assert.Equal(t, "/path/to/config.json", loader.GetConfigPath())
}

func TestLoaderLoad(t *testing.T) {
	t.Run("load default config when file doesn't exist", func(t *testing.T) {
		clearProviderEnv(t)
		configPath := filepath.Join(t.TempDir(), "nonexistent.json")

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, "gpt-3.5-turbo", cfg.Chat.Model)
		assert.Equal(t, 10, cfg.Chat.MaxHistoryPairs)
	})

	t.Run("load config from file", func(t *testing.T) {
		clearProviderEnv(t)
		configPath := filepath.Join(t.TempDir(), "config.json")

		testConfig := `{
			"chat": {
				"model": "gpt-4o",
				"temperature": 0.2,
				"commit_partial": true
			},
			"providers": {
				"openai": {"api_key": "sk-file-key"}
			},
			"server": {"port": 9090}
		}`
		require.NoError(t, os.WriteFile(configPath, []byte(testConfig), 0644))

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, "gpt-4o", cfg.Chat.Model)
		assert.Equal(t, 0.2, cfg.Chat.Temperature)
		assert.True(t, cfg.Chat.CommitPartial)
		assert.Equal(t, "sk-file-key", cfg.Providers.OpenAI.APIKey)
		assert.Equal(t, 9090, cfg.Server.Port)

		// unspecified values keep their defaults
		assert.Equal(t, 10, cfg.Chat.MaxHistoryPairs)
		assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	})

	t.Run("conventional env keys", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-env-openai")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-env")

		cfg, err := NewLoader(filepath.Join(t.TempDir(), "missing.json")).Load()

		require.NoError(t, err)
		assert.Equal(t, "sk-env-openai", cfg.Providers.OpenAI.APIKey)
		assert.Equal(t, "sk-ant-env", cfg.Providers.Anthropic.APIKey)
	})

	t.Run("prefixed env overrides file", func(t *testing.T) {
		clearProviderEnv(t)
		t.Setenv("CHATCLONE_CHAT_MODEL", "gpt-4")

		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"chat":{"model":"gpt-4o"}}`), 0644))

		cfg, err := NewLoader(configPath).Load()

		require.NoError(t, err)
		assert.Equal(t, "gpt-4", cfg.Chat.Model)
	})

	t.Run("invalid json", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.json")
		require.NoError(t, os.WriteFile(configPath, []byte(`{"chat":`), 0644))

		_, err := NewLoader(configPath).Load()
		assert.Error(t, err)
	})
}

func TestLoaderSave(t *testing.T) {
	clearProviderEnv(t)
	configPath := filepath.Join(t.TempDir(), "nested", "config.json")
	loader := NewLoader(configPath)

	cfg := DefaultConfig()
	cfg.Chat.Model = "claude-sonnet-4-0"
	cfg.Chat.Temperature = 0.4
	cfg.Providers.Anthropic.APIKey = "sk-ant-saved"

	require.NoError(t, loader.Save(cfg))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-0", loaded.Chat.Model)
	assert.Equal(t, 0.4, loaded.Chat.Temperature)
	assert.Equal(t, "sk-ant-saved", loaded.Providers.Anthropic.APIKey)

	raw, err := os.ReadFile(configPath)
	require.NoError(t, err)
	var keys map[string]any
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.ElementsMatch(t, []string{"chat", "providers", "logging", "server"}, mapKeys(keys))
}

func mapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func TestGetConfigPathDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := NewLoader("").GetConfigPath()
	assert.Equal(t, filepath.Join(os.Getenv("HOME"), ".chatclone", "chatclone.json"), path)
}
