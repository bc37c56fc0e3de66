package config

import (
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/harun/chatclone/pkg/assembler"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLive(t *testing.T) {
	live := NewLive(validConfig())

	assert.Equal(t, assembler.DefaultModel, live.ChatOptions().Model)

	next := validConfig()
	next.Chat.Model = "gpt-4o-mini"
	live.Set(next)

	assert.Equal(t, "gpt-4o-mini", live.ChatOptions().Model)
	assert.Same(t, next, live.Get())
}

func TestLiveNewProvider(t *testing.T) {
	live := NewLive(DefaultConfig())

	_, err := live.NewProvider(assembler.ProviderOpenAI)
	assert.ErrorIs(t, err, assembler.ErrAuthentication)

	live.Set(validConfig())
	p, err := live.NewProvider(assembler.ProviderOpenAI)
	require.NoError(t, err)
	assert.Equal(t, assembler.ProviderOpenAI, p.Name())
}

func writeConfig(t *testing.T, path, model string, temp float64) {
	t.Helper()

	body := `{"chat":{"model":"` + model + `","temperature":` + strconv.FormatFloat(temp, 'f', -1, 64) +
		`},"providers":{"openai":{"api_key":"sk-watch"},"anthropic":{"api_key":"sk-ant-watch"}}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
}

func TestWatcherReload(t *testing.T) {
	clearProviderEnv(t)

	path := filepath.Join(t.TempDir(), "chatclone.json")
	writeConfig(t, path, "gpt-4o", 0.5)

	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)
	live := NewLive(cfg)

	var mu sync.Mutex
	var reloaded []*Config
	watcher, err := NewWatcher(WatcherConfig{
		Loader:             loader,
		Live:               live,
		StabilityThreshold: 20 * time.Millisecond,
		OnReload: func(c *Config) {
			mu.Lock()
			reloaded = append(reloaded, c)
			mu.Unlock()
		},
		Logger: zerolog.Nop(),
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	writeConfig(t, path, "claude-3-5-haiku-latest", 0.25)

	require.Eventually(t, func() bool {
		return live.ChatOptions().Model == "claude-3-5-haiku-latest"
	}, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, 0.25, live.ChatOptions().Temperature)

	mu.Lock()
	assert.NotEmpty(t, reloaded)
	mu.Unlock()
}

func TestWatcherKeepsCurrentOnInvalidReload(t *testing.T) {
	clearProviderEnv(t)

	path := filepath.Join(t.TempDir(), "chatclone.json")
	writeConfig(t, path, "gpt-4o", 0.5)

	loader := NewLoader(path)
	cfg, err := loader.Load()
	require.NoError(t, err)
	live := NewLive(cfg)

	watcher, err := NewWatcher(WatcherConfig{Loader: loader, Live: live, Logger: zerolog.Nop()})
	require.NoError(t, err)

	writeConfig(t, path, "gpt-4o", 1.5)
	watcher.Reload()
	assert.Equal(t, 0.5, live.ChatOptions().Temperature)

	require.NoError(t, os.WriteFile(path, []byte(`{broken`), 0644))
	watcher.Reload()
	assert.Equal(t, "gpt-4o", live.ChatOptions().Model)

	require.NoError(t, watcher.Stop())
	require.NoError(t, watcher.Stop())
}
