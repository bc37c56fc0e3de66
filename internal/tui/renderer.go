package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
)

// Messages forwarded from the conversation into the program loop
type (
	showMsg struct {
		role    session.Role
		content string
	}
	updateMsg struct{ content string }
	doneMsg   struct{ content string }
	reportMsg struct{ err error }

	// replyMsg ends an exchange and re-enables input
	replyMsg struct {
		reply conversation.Reply
		err   error
	}
)

// Sender is satisfied by *tea.Program
type Sender interface {
	Send(msg tea.Msg)
}

// ProgramRenderer forwards renderer calls to a running program as messages
type ProgramRenderer struct {
	mu     sync.RWMutex
	sender Sender
}

var _ conversation.Renderer = (*ProgramRenderer)(nil)

// NewProgramRenderer creates a renderer. Calls before Attach are dropped.
func NewProgramRenderer() *ProgramRenderer {
	return &ProgramRenderer{}
}

// Attach sets the program messages are sent to
func (r *ProgramRenderer) Attach(s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sender = s
}

func (r *ProgramRenderer) send(msg tea.Msg) {
	r.mu.RLock()
	s := r.sender
	r.mu.RUnlock()

	if s != nil {
		s.Send(msg)
	}
}

func (r *ProgramRenderer) Show(role session.Role, content string) {
	r.send(showMsg{role: role, content: content})
}

func (r *ProgramRenderer) Update(content string) {
	r.send(updateMsg{content: content})
}

func (r *ProgramRenderer) Done(content string) {
	r.send(doneMsg{content: content})
}

func (r *ProgramRenderer) Report(err error) {
	r.send(reportMsg{err: err})
}
