package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/harun/chatclone/internal/observability"
	"github.com/harun/chatclone/internal/tracing"
	"github.com/harun/chatclone/pkg/assembler"
	"github.com/harun/chatclone/pkg/session"
	"github.com/rs/zerolog"
)

// Streamer opens fragment streams for a turn log
type Streamer interface {
	Stream(ctx context.Context, turns []session.Turn, opts assembler.Options) (assembler.Fragments, error)
}

// Config holds conversation configuration
type Config struct {
	Store     *session.Store
	Assembler Streamer
	Renderer  Renderer
	Settings  SettingsSource

	// MaxPairs caps the stored history; zero means session.DefaultMaxPairs
	MaxPairs int

	// CommitPartial keeps the partial reply of a failed stream
	CommitPartial bool

	Logger zerolog.Logger
}

// Reply is the outcome of one Send
type Reply struct {
	Content  string
	Partial  bool
	Ignored  bool
	Duration time.Duration
}

// Conversation runs exchanges against one session store
type Conversation struct {
	store         *session.Store
	assembler     Streamer
	renderer      Renderer
	settings      SettingsSource
	maxPairs      int
	commitPartial bool
	logger        zerolog.Logger
}

// New creates a conversation bound to a store
func New(cfg Config) *Conversation {
	observability.EnsureRegistered()

	if cfg.MaxPairs <= 0 {
		cfg.MaxPairs = session.DefaultMaxPairs
	}
	if cfg.Renderer == nil {
		cfg.Renderer = NopRenderer{}
	}
	if cfg.Settings == nil {
		cfg.Settings = StaticSettings(assembler.DefaultOptions())
	}

	return &Conversation{
		store:         cfg.Store,
		assembler:     cfg.Assembler,
		renderer:      cfg.Renderer,
		settings:      cfg.Settings,
		maxPairs:      cfg.MaxPairs,
		commitPartial: cfg.CommitPartial,
		logger: cfg.Logger.With().
			Str("component", "conversation").
			Str("session_id", cfg.Store.ID()).
			Logger(),
	}
}

// Send runs one exchange: the input becomes a user turn, the reply is
// streamed to the renderer and committed as an assistant turn on success.
func (c *Conversation) Send(ctx context.Context, input string) (Reply, error) {
	if strings.TrimSpace(input) == "" {
		return Reply{Ignored: true}, nil
	}

	ctx = tracing.NewTurnContext(ctx, c.store.ID())
	logger := tracing.LoggerFromContext(ctx, c.logger)
	started := time.Now()

	mark := c.store.Len()
	user := session.NewTurn(session.RoleUser, input)
	if err := c.store.Append(user); err != nil {
		return Reply{}, fmt.Errorf("failed to append user turn: %w", err)
	}
	c.renderer.Show(session.RoleUser, input)

	opts := c.settings.ChatOptions()
	fragments, err := c.assembler.Stream(ctx, c.store.All(), opts)
	if err != nil {
		c.store.Truncate(mark)
		c.renderer.Report(err)
		logger.Warn().Err(err).Str("model", opts.Model).Msg("Stream rejected")
		return Reply{Duration: time.Since(started)}, err
	}
	defer fragments.Close()

	c.renderer.Show(session.RoleAssistant, "")

	var buf strings.Builder
	count := 0
	for fragments.Next() {
		buf.WriteString(fragments.Current())
		count++
		c.renderer.Update(buf.String())
	}
	content := buf.String()

	err = fragments.Err()
	if err == nil && strings.TrimSpace(content) == "" {
		model, _ := assembler.LookupModel(opts.Model)
		err = &assembler.StreamError{
			Kind:     assembler.KindMalformedResponse,
			Provider: model.Provider,
			Err:      assembler.ErrEmptyResponse,
		}
	}

	if err != nil {
		committed := c.commitPartial && strings.TrimSpace(content) != ""
		if committed {
			c.commit(mark, user, content)
		} else {
			c.store.Truncate(mark)
		}
		c.renderer.Report(err)

		logger.Warn().
			Err(err).
			Str("kind", string(assembler.KindOf(err))).
			Int("fragments", count).
			Bool("partial_committed", committed).
			Msg("Stream failed")

		return Reply{Content: content, Partial: true, Duration: time.Since(started)}, err
	}

	c.commit(mark, user, content)
	c.renderer.Done(content)

	logger.Debug().
		Int("fragments", count).
		Int("chars", len(content)).
		Int("history", c.store.Len()).
		Msg("Reply committed")

	return Reply{Content: content, Duration: time.Since(started)}, nil
}

// commit stores the assistant turn after an already appended user turn
// and trims the history to the configured number of pairs.
func (c *Conversation) commit(mark int, user session.Turn, content string) {
	if err := c.store.Append(session.NewTurn(session.RoleAssistant, content)); err != nil {
		c.store.Truncate(mark)
		c.logger.Error().Err(err).Msg("Failed to append assistant turn")
		return
	}
	observability.RecordTurn(string(user.Role))
	observability.RecordTurn(string(session.RoleAssistant))

	removed := c.store.Trim(c.maxPairs)
	observability.RecordHistoryTrim(removed)
}

// Clear drops the whole history
func (c *Conversation) Clear() {
	c.store.Clear()
	c.logger.Debug().Msg("History cleared")
}

// History returns the stored turns in order
func (c *Conversation) History() []session.Turn {
	return c.store.All()
}

// SessionID returns the ID of the underlying store
func (c *Conversation) SessionID() string {
	return c.store.ID()
}
