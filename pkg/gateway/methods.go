package gateway

import (
	"context"

	"github.com/harun/chatclone/internal/tracing"
	"github.com/harun/chatclone/pkg/session"
)

// registerBuiltinMethods registers the chat methods
func (s *Server) registerBuiltinMethods() {
	_ = s.router.RegisterMethod(MethodChatSend, s.handleChatSend)
	_ = s.router.RegisterMethod(MethodChatClear, s.handleChatClear)
	_ = s.router.RegisterMethod(MethodChatHistory, s.handleChatHistory)
}

// handleChatSend runs one exchange. Output and failures reach the client
// through the session's renderer, so only protocol problems are returned.
func (s *Server) handleChatSend(ctx context.Context, client *Client, frame Frame) error {
	client.renderer.requestID = frame.ID
	defer func() { client.renderer.requestID = "" }()

	logger := tracing.LoggerFromContext(ctx, s.logger).With().
		Str("clientId", clientIDFromContext(ctx)).
		Str("requestId", frame.ID).
		Logger()

	reply, err := client.conv.Send(ctx, frame.Params.Content)
	switch {
	case reply.Ignored:
		logger.Debug().Msg("Ignored blank message")
	case err != nil:
		logger.Warn().Err(err).Bool("partial", reply.Partial).Msg("Exchange failed")
	default:
		logger.Debug().
			Int("chars", len(reply.Content)).
			Dur("duration", reply.Duration).
			Msg("Exchange completed")
	}

	return nil
}

func (s *Server) handleChatClear(_ context.Context, client *Client, frame Frame) error {
	client.conv.Clear()
	s.send(client, EventMessage{Event: EventChatCleared, ID: frame.ID})
	return nil
}

func (s *Server) handleChatHistory(_ context.Context, client *Client, frame Frame) error {
	turns := client.conv.History()
	if turns == nil {
		turns = []session.Turn{}
	}

	s.send(client, EventMessage{
		Event: EventChatHistory,
		ID:    frame.ID,
		Data:  map[string]interface{}{"turns": turns},
	})
	return nil
}
