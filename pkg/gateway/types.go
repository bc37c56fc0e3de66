package gateway

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
)

// Client methods
const (
	MethodChatSend    = "chat.send"
	MethodChatClear   = "chat.clear"
	MethodChatHistory = "chat.history"
)

// Server events
const (
	EventSessionStarted = "session.started"
	EventMessageShow    = "message.show"
	EventMessageUpdate  = "message.update"
	EventMessageDone    = "message.done"
	EventChatError      = "chat.error"
	EventChatCleared    = "chat.cleared"
	EventChatHistory    = "chat.history"
	EventProtocolError  = "protocol.error"
	EventServerShutdown = "server.shutdown"
)

// Frame is a client request
type Frame struct {
	ID     string      `json:"id,omitempty"`
	Method string      `json:"method"`
	Params FrameParams `json:"params,omitempty"`
}

// FrameParams carries method arguments
type FrameParams struct {
	Content string `json:"content,omitempty"`
}

// EventMessage is a server-initiated event
type EventMessage struct {
	Event     string      `json:"event"`
	ID        string      `json:"id,omitempty"`
	Seq       int64       `json:"seq,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
	Session   string      `json:"session_id,omitempty"`
}

// MessageData is the payload of message.* events
type MessageData struct {
	Role    session.Role `json:"role,omitempty"`
	Content string       `json:"content"`
}

// ErrorData is the payload of chat.error and protocol.error
type ErrorData struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

// ClientInfo represents information about a connected client
type ClientInfo struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	ConnectedAt  time.Time `json:"connected_at"`
	LastActivity time.Time `json:"last_activity"`
	IPAddress    string    `json:"ip_address"`
	Idle         bool      `json:"idle"`
}

// Client represents a connected websocket client and the session it owns
type Client struct {
	ID           string
	Conn         *websocket.Conn
	ConnectedAt  time.Time
	LastActivity time.Time
	IPAddress    string

	// ctx is cancelled when the connection closes
	ctx    context.Context
	cancel context.CancelFunc

	writeMu sync.Mutex

	mu       sync.RWMutex
	store    *session.Store
	conv     *conversation.Conversation
	renderer *socketRenderer
}

// WriteJSON serializes writes from the read loop and the broadcaster
func (c *Client) WriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// WriteMessage writes a raw frame
func (c *Client) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// SessionID returns the id of the session the client currently owns
func (c *Client) SessionID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.store == nil {
		return ""
	}
	return c.store.ID()
}

// setSession swaps the session the client owns. Only the frame worker calls it.
func (c *Client) setSession(store *session.Store, conv *conversation.Conversation, renderer *socketRenderer) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = store
	c.conv = conv
	c.renderer = renderer
}
