package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harun/chatclone/internal/observability"
	"github.com/harun/chatclone/internal/tracing"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// Server exposes conversations over websocket. Every connection owns one
// session that ends when the connection closes.
type Server struct {
	addr          string
	server        *http.Server
	upgrader      websocket.Upgrader
	clients       *ClientRegistry
	router        *Router
	broadcaster   *EventBroadcaster
	manager       *session.Manager
	assembler     conversation.Streamer
	settings      conversation.SettingsSource
	maxPairs      int
	commitPartial bool
	logger        zerolog.Logger

	shutdownMu     sync.RWMutex
	isShuttingDown bool
	connWG         sync.WaitGroup
}

// Config holds server configuration
type Config struct {
	Host      string
	Port      int
	Manager   *session.Manager
	Assembler conversation.Streamer
	Settings  conversation.SettingsSource

	// MaxPairs caps each session's history; zero means the default
	MaxPairs      int
	CommitPartial bool

	Logger zerolog.Logger
}

// NewServer creates a new gateway server
func NewServer(cfg Config) (*Server, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if cfg.Assembler == nil {
		return nil, fmt.Errorf("assembler is required")
	}
	observability.EnsureRegistered()

	router, err := NewRouter()
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger.With().Str("component", "gateway").Logger()
	clients := NewClientRegistry()

	s := &Server{
		addr:          net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		clients:       clients,
		router:        router,
		broadcaster:   NewEventBroadcaster(clients, logger),
		manager:       cfg.Manager,
		assembler:     cfg.Assembler,
		settings:      cfg.Settings,
		maxPairs:      cfg.MaxPairs,
		commitPartial: cfg.CommitPartial,
		logger:        logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}

	s.registerBuiltinMethods()

	return s, nil
}

// Handler returns the HTTP routes served by the gateway
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status":   "ok",
			"clients":  s.clients.Count(),
			"sessions": s.manager.Len(),
		})
	})
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("Starting gateway server")
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("gateway server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	return s.Stop()
}

// Stop gracefully stops the gateway server
func (s *Server) Stop() error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	s.logger.Info().Msg("Shutting down gateway server")

	s.broadcaster.Broadcast(EventServerShutdown, ErrorData{
		Message: "Server is shutting down",
	})

	// closing the sockets unblocks every read loop
	for _, client := range s.clients.GetAll() {
		client.cancel()
		_ = client.Conn.Close()
	}

	done := make(chan struct{})
	go func() {
		s.connWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		s.logger.Warn().Msg("Shutdown timeout reached, forcing close")
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown server: %w", err)
		}
	}

	s.logger.Info().Msg("Gateway server stopped")
	return nil
}

// handleWebSocket upgrades a connection and starts its session
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	if s.isShuttingDown {
		s.shutdownMu.RUnlock()
		http.Error(w, "Server is shutting down", http.StatusServiceUnavailable)
		return
	}
	s.connWG.Add(1)
	s.shutdownMu.RUnlock()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.connWG.Done()
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}

	clientID, err := gonanoid.New()
	if err != nil {
		clientID = tracing.NewTraceID()
	}

	ctx, cancel := context.WithCancel(withClientID(context.Background(), clientID))
	now := time.Now()
	client := &Client{
		ID:           clientID,
		Conn:         conn,
		ConnectedAt:  now,
		LastActivity: now,
		IPAddress:    r.RemoteAddr,
		ctx:          ctx,
		cancel:       cancel,
	}

	s.clients.Add(client)
	s.startSession(client)

	s.logger.Info().
		Str("clientId", clientID).
		Str("session_id", client.SessionID()).
		Str("ip", r.RemoteAddr).
		Msg("Client connected")

	go s.handleClient(client)
}

// startSession gives the client a fresh store and conversation
func (s *Server) startSession(client *Client) {
	store := s.manager.Create()
	renderer := &socketRenderer{
		client:      client,
		broadcaster: s.broadcaster,
		logger:      s.logger.With().Str("clientId", client.ID).Logger(),
	}

	conv := conversation.New(conversation.Config{
		Store:         store,
		Assembler:     s.assembler,
		Renderer:      renderer,
		Settings:      s.settings,
		MaxPairs:      s.maxPairs,
		CommitPartial: s.commitPartial,
		Logger:        s.logger,
	})
	client.setSession(store, conv, renderer)

	s.send(client, EventMessage{
		Event: EventSessionStarted,
		Data:  map[string]string{"session_id": store.ID()},
	})
}

// ensureSession replaces a session the idle reaper has ended
func (s *Server) ensureSession(client *Client) {
	if _, ok := s.manager.Get(client.SessionID()); ok {
		return
	}

	s.logger.Info().
		Str("clientId", client.ID).
		Str("session_id", client.SessionID()).
		Msg("Session expired, starting a new one")
	s.startSession(client)
}

// maxPendingFrames bounds the frames queued behind a running exchange
const maxPendingFrames = 16

// handleClient owns a connection until it closes. A reader goroutine keeps
// draining the socket so a disconnect cancels the client context at once,
// even mid-stream. A single worker handles queued frames in order, so a
// session never runs two exchanges at once.
func (s *Server) handleClient(client *Client) {
	defer s.connWG.Done()

	frames := make(chan []byte, maxPendingFrames)
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.processFrames(client, frames)
	}()

	s.readFrames(client, frames)
	<-done

	_ = client.Conn.Close()
	s.clients.Remove(client.ID)
	s.manager.End(client.SessionID())
	s.logger.Info().Str("clientId", client.ID).Msg("Client disconnected")
}

// readFrames queues incoming frames until the socket fails, then cancels
// the client context and closes the queue.
func (s *Server) readFrames(client *Client, frames chan<- []byte) {
	defer close(frames)
	defer client.cancel()

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug().Err(err).Str("clientId", client.ID).Msg("WebSocket closed")
			}
			return
		}

		s.clients.UpdateActivity(client.ID)

		select {
		case frames <- message:
		default:
			s.sendProtocolError(client, "", "too many pending frames")
		}
	}
}

// processFrames handles queued frames one at a time. Frames still queued
// when the connection closes are dropped.
func (s *Server) processFrames(client *Client, frames <-chan []byte) {
	for message := range frames {
		if client.ctx.Err() != nil {
			continue
		}
		s.handleMessage(client, message)
	}
}

// handleMessage parses and routes a single frame
func (s *Server) handleMessage(client *Client, message []byte) {
	frame, err := s.router.ParseFrame(message)
	if err != nil {
		s.sendProtocolError(client, "", err.Error())
		return
	}

	s.ensureSession(client)

	if err := s.router.Route(client.ctx, client, frame); err != nil {
		s.sendProtocolError(client, frame.ID, err.Error())
	}
}

func (s *Server) send(client *Client, msg EventMessage) {
	if err := s.broadcaster.Send(client, msg); err != nil {
		s.logger.Warn().
			Err(err).
			Str("clientId", client.ID).
			Str("event", msg.Event).
			Msg("Failed to send event")
	}
}

func (s *Server) sendProtocolError(client *Client, requestID, message string) {
	s.send(client, EventMessage{
		Event: EventProtocolError,
		ID:    requestID,
		Data:  ErrorData{Message: message},
	})
}

// GetConnectedClients returns information about all connected clients
func (s *Server) GetConnectedClients() []ClientInfo {
	return s.clients.GetConnectedClients()
}

// Methods lists the methods clients may call
func (s *Server) Methods() []string {
	return s.router.GetMethods()
}
