package assembler

import (
	"context"
	"errors"
	"testing"

	"github.com/harun/chatclone/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAssembler(p ProviderCreator) *Assembler {
	return New(Config{
		Providers: p,
		Logger:    zerolog.Nop(),
	})
}

func userTurns(contents ...string) []session.Turn {
	turns := make([]session.Turn, 0, len(contents))
	for _, c := range contents {
		turns = append(turns, session.NewTurn(session.RoleUser, c))
	}
	return turns
}

func collect(t *testing.T, f Fragments) ([]string, error) {
	t.Helper()

	var out []string
	for f.Next() {
		out = append(out, f.Current())
	}
	return out, f.Err()
}

func TestAssembler_Stream(t *testing.T) {
	t.Run("yields fragments in order", func(t *testing.T) {
		provider := &ScriptedProvider{Fragments: []string{"Hel", "lo"}}
		a := newTestAssembler(provider)

		fragments, err := a.Stream(context.Background(), userTurns("Hi"), DefaultOptions())
		require.NoError(t, err)
		defer fragments.Close()

		got, err := collect(t, fragments)
		require.NoError(t, err)
		assert.Equal(t, []string{"Hel", "lo"}, got)

		// exhausted sequences stay exhausted
		assert.False(t, fragments.Next())
	})

	t.Run("forwards turns and options to the provider", func(t *testing.T) {
		provider := &ScriptedProvider{Fragments: []string{"ok"}}
		a := newTestAssembler(provider)

		turns := []session.Turn{
			session.NewTurn(session.RoleUser, "Hi"),
			session.NewTurn(session.RoleAssistant, "Hello"),
			session.NewTurn(session.RoleUser, "How are you?"),
		}
		opts := Options{
			Model:        "gpt-4o",
			Temperature:  0.2,
			MaxTokens:    256,
			SystemPrompt: "be brief",
		}

		fragments, err := a.Stream(context.Background(), turns, opts)
		require.NoError(t, err)
		_, err = collect(t, fragments)
		require.NoError(t, err)

		requests := provider.Requests()
		require.Len(t, requests, 1)
		assert.Equal(t, "gpt-4o", requests[0].Model)
		assert.Equal(t, 0.2, requests[0].Temperature)
		assert.Equal(t, 256, requests[0].MaxTokens)
		assert.Equal(t, "be brief", requests[0].SystemPrompt)
		assert.Equal(t, turns, requests[0].Messages)
	})

	t.Run("surfaces failure after partial output", func(t *testing.T) {
		streamErr := &StreamError{Kind: KindNetwork, Provider: "scripted", Err: errors.New("connection reset")}
		provider := &ScriptedProvider{Fragments: []string{"Hel"}, StreamErr: streamErr}
		a := newTestAssembler(provider)

		fragments, err := a.Stream(context.Background(), userTurns("Hi"), DefaultOptions())
		require.NoError(t, err)

		got, err := collect(t, fragments)
		assert.Equal(t, []string{"Hel"}, got)
		assert.ErrorIs(t, err, ErrNetwork)
	})

	t.Run("returns open failures", func(t *testing.T) {
		openErr := &StreamError{Kind: KindQuota, Provider: "scripted", Err: errors.New("slow down")}
		a := newTestAssembler(&ScriptedProvider{OpenErr: openErr})

		fragments, err := a.Stream(context.Background(), userTurns("Hi"), DefaultOptions())
		assert.Nil(t, fragments)
		assert.ErrorIs(t, err, ErrQuota)
	})
}

func TestAssembler_StreamValidation(t *testing.T) {
	tests := []struct {
		name    string
		turns   []session.Turn
		opts    Options
		wantErr error
	}{
		{
			name:    "temperature above one",
			turns:   userTurns("Hi"),
			opts:    Options{Model: DefaultModel, Temperature: 1.5},
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "negative temperature",
			turns:   userTurns("Hi"),
			opts:    Options{Model: DefaultModel, Temperature: -0.1},
			wantErr: ErrInvalidTemperature,
		},
		{
			name:    "unsupported model",
			turns:   userTurns("Hi"),
			opts:    Options{Model: "gpt-2", Temperature: 0.5},
			wantErr: ErrUnsupportedModel,
		},
		{
			name:    "no turns",
			turns:   nil,
			opts:    DefaultOptions(),
			wantErr: ErrNoTurns,
		},
		{
			name:    "empty turn",
			turns:   []session.Turn{{Role: session.RoleUser, Content: " "}},
			opts:    DefaultOptions(),
			wantErr: session.ErrEmptyContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &ScriptedProvider{Fragments: []string{"never"}}
			a := newTestAssembler(provider)

			fragments, err := a.Stream(context.Background(), tt.turns, tt.opts)
			assert.Nil(t, fragments)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, provider.Requests(), "no remote call expected")
		})
	}
}

func TestAssembler_BoundaryTemperatures(t *testing.T) {
	for _, temp := range []float64{0, 1} {
		provider := &ScriptedProvider{Fragments: []string{"ok"}}
		a := newTestAssembler(provider)

		opts := DefaultOptions()
		opts.Temperature = temp

		fragments, err := a.Stream(context.Background(), userTurns("Hi"), opts)
		require.NoError(t, err)
		require.NoError(t, fragments.Close())
		assert.Len(t, provider.Requests(), 1)
	}
}

func TestProviderFactory_NewProvider(t *testing.T) {
	t.Run("missing key is an authentication failure", func(t *testing.T) {
		factory := &ProviderFactory{}

		_, err := factory.NewProvider(ProviderOpenAI)
		assert.ErrorIs(t, err, ErrAuthentication)
		assert.ErrorIs(t, err, ErrMissingAPIKey)

		_, err = factory.NewProvider(ProviderAnthropic)
		assert.ErrorIs(t, err, ErrAuthentication)
	})

	t.Run("builds configured providers", func(t *testing.T) {
		factory := &ProviderFactory{
			OpenAI:    Credentials{APIKey: "sk-test"},
			Anthropic: Credentials{APIKey: "sk-ant-test"},
		}

		p, err := factory.NewProvider(ProviderOpenAI)
		require.NoError(t, err)
		assert.Equal(t, ProviderOpenAI, p.Name())

		p, err = factory.NewProvider(ProviderAnthropic)
		require.NoError(t, err)
		assert.Equal(t, ProviderAnthropic, p.Name())
	})

	t.Run("unknown provider", func(t *testing.T) {
		factory := &ProviderFactory{}

		_, err := factory.NewProvider("gemini")
		assert.Error(t, err)
	})

	t.Run("assembler reports missing key without calling out", func(t *testing.T) {
		a := newTestAssembler(&ProviderFactory{})

		_, err := a.Stream(context.Background(), userTurns("Hi"), DefaultOptions())
		assert.Equal(t, KindAuthentication, KindOf(err))
	})
}

func TestSupportedModels(t *testing.T) {
	models := SupportedModels()
	require.NotEmpty(t, models)

	m, ok := LookupModel(DefaultModel)
	require.True(t, ok)
	assert.Equal(t, ProviderOpenAI, m.Provider)
	assert.Contains(t, models, m)

	for i := 1; i < len(models); i++ {
		prev, cur := models[i-1], models[i]
		if prev.Provider == cur.Provider {
			assert.Less(t, prev.ID, cur.ID)
		} else {
			assert.Less(t, prev.Provider, cur.Provider)
		}
	}
}
