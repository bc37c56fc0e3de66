package cli

import (
	"fmt"

	"github.com/harun/chatclone/internal/config"
	"github.com/harun/chatclone/internal/logger"
	"github.com/harun/chatclone/pkg/assembler"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// runtime is the wiring shared by the chat commands
type runtime struct {
	loader    *config.Loader
	live      *config.Live
	log       *logger.Logger
	assembler *assembler.Assembler
}

// newRuntime loads and validates the config and sets up logging.
// Interactive commands keep the console free of log lines unless
// --log-level is given explicitly.
func newRuntime(cmd *cobra.Command, interactive bool) (*runtime, error) {
	loader := config.NewLoader(cfgFile)
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	levelSet := cmd.Flags().Changed("log-level")
	if levelSet {
		cfg.Logging.Level = logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration (run \"chatclone configure\"): %w", err)
	}

	log, err := logger.New(loggerConfig(cfg.Logging, !interactive || levelSet))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	live := config.NewLive(cfg)
	return &runtime{
		loader: loader,
		live:   live,
		log:    log,
		assembler: assembler.New(assembler.Config{
			Providers: live,
			Logger:    log.GetZerolog(),
		}),
	}, nil
}

// loggerConfig maps the logging section onto the logger package
func loggerConfig(lc config.LoggingConfig, console bool) logger.Config {
	cfg := logger.DefaultConfig()
	cfg.Level = lc.Level
	cfg.File = lc.File
	cfg.Console = console
	cfg.Redaction = lc.Redaction
	cfg.MaxSize = lc.MaxSize
	cfg.MaxAge = lc.MaxAge
	cfg.Compress = lc.Compress
	return cfg
}

func (r *runtime) zlog() zerolog.Logger {
	return r.log.GetZerolog()
}

// newConversation binds a conversation to store using the live settings
func (r *runtime) newConversation(store *session.Store, renderer conversation.Renderer) *conversation.Conversation {
	cfg := r.live.Get()
	return conversation.New(conversation.Config{
		Store:         store,
		Assembler:     r.assembler,
		Renderer:      renderer,
		Settings:      r.live,
		MaxPairs:      cfg.Chat.MaxHistoryPairs,
		CommitPartial: cfg.Chat.CommitPartial,
		Logger:        r.zlog(),
	})
}

func (r *runtime) close() {
	_ = r.log.Close()
}
