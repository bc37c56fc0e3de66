package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/harun/chatclone/internal/config"
	"github.com/harun/chatclone/pkg/gateway"
	"github.com/harun/chatclone/pkg/session"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chat sessions over websocket",
	Long: `Run the websocket gateway. Every connection to /ws gets its own chat
session. /healthz reports liveness and /metrics exposes Prometheus metrics.

The config file is watched; model, temperature and API key changes apply to
the next message without a restart.`,
	RunE: runServe,
}

var (
	serveHost string
	servePort int
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "listen host (overrides server.host)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd, false)
	if err != nil {
		return err
	}
	defer rt.close()

	// copy, the live config is shared
	cfg := *rt.live.Get()
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	logger := rt.zlog()

	manager := session.NewManager(session.ManagerConfig{
		Logger:       logger,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
		ReapSchedule: cfg.Server.ReapSchedule,
	})

	server, err := gateway.NewServer(gateway.Config{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		Manager:       manager,
		Assembler:     rt.assembler,
		Settings:      rt.live,
		MaxPairs:      cfg.Chat.MaxHistoryPairs,
		CommitPartial: cfg.Chat.CommitPartial,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create gateway: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(rt.loader.GetConfigPath()), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	watcher, err := config.NewWatcher(config.WatcherConfig{
		Loader: rt.loader,
		Live:   rt.live,
		OnReload: func(next *config.Config) {
			if !cmd.Flags().Changed("log-level") {
				if err := rt.log.SetLevel(next.Logging.Level); err != nil {
					logger.Warn().Err(err).Msg("Failed to apply reloaded log level")
				}
			}
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.Start(); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	if err := watcher.Start(); err != nil {
		_ = manager.Stop()
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		return watcher.Stop()
	})

	err = g.Wait()
	if stopErr := manager.Stop(); stopErr != nil {
		logger.Warn().Err(stopErr).Msg("Failed to stop session manager")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
