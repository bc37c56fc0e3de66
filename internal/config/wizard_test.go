package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWizardRun(t *testing.T) {
	t.Run("collects keys and settings", func(t *testing.T) {
		input := strings.Join([]string{
			"not-a-key",      // rejected openai key
			"sk-openai-123",  // accepted
			"",               // skip anthropic
			"gpt-2",          // rejected model
			"gpt-4o",         // accepted
			"hot",            // not a number
			"0.3",            // accepted
			"debug",          // log level
		}, "\n") + "\n"

		var out bytes.Buffer
		cfg, err := NewWizard(strings.NewReader(input), &out).Run(DefaultConfig())

		require.NoError(t, err)
		assert.Equal(t, "sk-openai-123", cfg.Providers.OpenAI.APIKey)
		assert.Empty(t, cfg.Providers.Anthropic.APIKey)
		assert.Equal(t, "gpt-4o", cfg.Chat.Model)
		assert.Equal(t, 0.3, cfg.Chat.Temperature)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Contains(t, out.String(), "Configuration complete!")
		assert.Contains(t, out.String(), "claude-sonnet-4-0")
	})

	t.Run("keeps existing values on enter", func(t *testing.T) {
		base := DefaultConfig()
		base.Providers.Anthropic.APIKey = "sk-ant-existing"

		input := "\n\n\n\n\n"
		cfg, err := NewWizard(strings.NewReader(input), &bytes.Buffer{}).Run(base)

		require.NoError(t, err)
		assert.Equal(t, "sk-ant-existing", cfg.Providers.Anthropic.APIKey)
		assert.Equal(t, base.Chat.Model, cfg.Chat.Model)
	})

	t.Run("requires a key", func(t *testing.T) {
		_, err := NewWizard(strings.NewReader("\n\n"), &bytes.Buffer{}).Run(DefaultConfig())
		assert.Error(t, err)
	})
}
