package assembler

import (
	"context"
	"fmt"
	"time"

	"github.com/harun/chatclone/internal/observability"
	"github.com/harun/chatclone/internal/tracing"
	"github.com/harun/chatclone/pkg/session"
	"github.com/rs/zerolog"
)

// Assembler opens completion streams seeded with a session log
type Assembler struct {
	providers ProviderCreator
	logger    zerolog.Logger
}

// Config holds assembler configuration
type Config struct {
	Providers ProviderCreator
	Logger    zerolog.Logger
}

// New creates a new assembler
func New(cfg Config) *Assembler {
	observability.EnsureRegistered()

	return &Assembler{
		providers: cfg.Providers,
		logger:    cfg.Logger.With().Str("component", "assembler").Logger(),
	}
}

// Stream validates the options and opens a fragment stream for the turns.
// Nothing is sent to a provider when validation fails.
func (a *Assembler) Stream(ctx context.Context, turns []session.Turn, opts Options) (Fragments, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if len(turns) == 0 {
		return nil, ErrNoTurns
	}
	for i, turn := range turns {
		if err := turn.Validate(); err != nil {
			return nil, fmt.Errorf("invalid turn %d: %w", i, err)
		}
	}

	model, _ := LookupModel(opts.Model)
	logger := tracing.LoggerFromContext(ctx, a.logger).With().
		Str("provider", model.Provider).
		Str("model", model.ID).
		Logger()

	provider, err := a.providers.NewProvider(model.Provider)
	if err != nil {
		observability.RecordStream(model.Provider, 0, string(KindOf(err)))
		logger.Error().Err(err).Msg("Failed to create provider")
		return nil, err
	}

	request := Request{
		Model:        model.ID,
		Messages:     turns,
		Temperature:  opts.Temperature,
		MaxTokens:    opts.MaxTokens,
		SystemPrompt: opts.SystemPrompt,
	}

	started := time.Now()
	fragments, err := provider.Stream(ctx, request)
	if err != nil {
		observability.RecordStream(model.Provider, time.Since(started), string(KindOf(err)))
		logger.Error().Err(err).Msg("Failed to open stream")
		return nil, err
	}

	logger.Debug().
		Int("turns", len(turns)).
		Float64("temperature", opts.Temperature).
		Msg("Stream opened")

	return instrument(model.Provider, fragments), nil
}
