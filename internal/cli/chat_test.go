package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/harun/chatclone/internal/config"
	"github.com/harun/chatclone/internal/terminal"
	"github.com/harun/chatclone/pkg/assembler"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConversation(provider *assembler.ScriptedProvider, out *bytes.Buffer) (*conversation.Conversation, *terminal.Renderer, *session.Store) {
	store := session.NewStore()
	renderer := terminal.NewRenderer(out, terminal.Options{})
	conv := conversation.New(conversation.Config{
		Store:     store,
		Assembler: assembler.New(assembler.Config{Providers: provider, Logger: zerolog.Nop()}),
		Renderer:  renderer,
		Logger:    zerolog.Nop(),
	})
	return conv, renderer, store
}

func plainContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithCancel(parent)
}

func TestREPL(t *testing.T) {
	t.Run("exchange and commands", func(t *testing.T) {
		out := &bytes.Buffer{}
		conv, renderer, store := newTestConversation(&assembler.ScriptedProvider{Fragments: []string{"Hel", "lo"}}, out)

		input := strings.Join([]string{"Hi", "", "/history", "/clear", "/history", "/exit", "ignored"}, "\n") + "\n"
		err := repl(context.Background(), strings.NewReader(input), out, conv, renderer, plainContext)
		require.NoError(t, err)

		text := out.String()
		assert.Contains(t, text, "Assistant: Hello\n")
		assert.Contains(t, text, "You: Hi\nAssistant: Hello\n")
		assert.Contains(t, text, "Conversation cleared.\n")
		assert.Contains(t, text, "(no messages)\n")
		assert.Equal(t, 0, store.Len())
	})

	t.Run("failure keeps going", func(t *testing.T) {
		out := &bytes.Buffer{}
		provider := &assembler.ScriptedProvider{
			Fragments: []string{"Hel"},
			StreamErr: &assembler.StreamError{Kind: assembler.KindQuota, Provider: "scripted", Err: errors.New("slow down")},
		}
		conv, renderer, store := newTestConversation(provider, out)

		err := repl(context.Background(), strings.NewReader("Hi\nagain\n"), out, conv, renderer, plainContext)
		require.NoError(t, err)

		assert.Equal(t, 2, strings.Count(out.String(), "Quota or rate limit reached"))
		assert.Len(t, provider.Requests(), 2)
		assert.Equal(t, 0, store.Len())
	})

	t.Run("end of input", func(t *testing.T) {
		out := &bytes.Buffer{}
		conv, renderer, store := newTestConversation(&assembler.ScriptedProvider{Fragments: []string{"ok"}}, out)

		err := repl(context.Background(), strings.NewReader("Hi"), out, conv, renderer, plainContext)
		require.NoError(t, err)
		assert.Equal(t, 2, store.Len())
	})

	t.Run("cancelled parent stops the loop", func(t *testing.T) {
		out := &bytes.Buffer{}
		conv, renderer, _ := newTestConversation(&assembler.ScriptedProvider{Fragments: []string{"ok"}}, out)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := repl(ctx, strings.NewReader("Hi\nagain\n"), out, conv, renderer, plainContext)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLoggerConfig(t *testing.T) {
	lc := config.LoggingConfig{
		Level:     "debug",
		File:      "/tmp/chatclone.log",
		MaxSize:   5,
		MaxAge:    3,
		Compress:  false,
		Redaction: true,
	}

	cfg := loggerConfig(lc, false)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, "/tmp/chatclone.log", cfg.File)
	assert.False(t, cfg.Console)
	assert.True(t, cfg.Redaction)
	assert.Equal(t, 5, cfg.MaxSize)
	assert.Equal(t, 3, cfg.MaxAge)
	assert.False(t, cfg.Compress)

	assert.True(t, loggerConfig(lc, true).Console)
}
