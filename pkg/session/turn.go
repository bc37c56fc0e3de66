package session

import (
	"errors"
	"strings"
	"time"
)

// Role identifies the speaker of a turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

var (
	// ErrEmptyContent is returned when a turn carries no text
	ErrEmptyContent = errors.New("turn content cannot be empty")

	// ErrInvalidRole is returned when a turn role is neither user nor assistant
	ErrInvalidRole = errors.New("turn role must be user or assistant")
)

// Valid reports whether the role is one a store accepts
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Turn is one message in a chat exchange
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewTurn creates a turn stamped with the current time
func NewTurn(role Role, content string) Turn {
	return Turn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Validate checks the turn can be stored
func (t Turn) Validate() error {
	if !t.Role.Valid() {
		return ErrInvalidRole
	}
	if strings.TrimSpace(t.Content) == "" {
		return ErrEmptyContent
	}
	return nil
}
