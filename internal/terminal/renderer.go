// Package terminal renders a conversation as plain scrolling terminal lines.
package terminal

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
)

// Renderer writes messages line by line. Streaming updates append only the
// text that was not printed yet, so it works on any terminal or pipe.
type Renderer struct {
	mu       sync.Mutex
	out      io.Writer
	echoUser bool
	printed  string
	open     bool

	userStyle      lipgloss.Style
	assistantStyle lipgloss.Style
	errorStyle     lipgloss.Style
}

// Options controls renderer behaviour
type Options struct {
	// EchoUser prints user messages. Interactive terminals already echo input.
	EchoUser bool
}

// NewRenderer creates a renderer writing to out. Colors are only emitted
// when out is a terminal.
func NewRenderer(out io.Writer, opts Options) *Renderer {
	r := lipgloss.NewRenderer(out)

	return &Renderer{
		out:      out,
		echoUser: opts.EchoUser,
		userStyle: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42")),
		assistantStyle: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39")),
		errorStyle: r.NewStyle().
			Foreground(lipgloss.Color("196")),
	}
}

var _ conversation.Renderer = (*Renderer)(nil)

// Show starts a new message
func (r *Renderer) Show(role session.Role, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeOpen()

	switch role {
	case session.RoleUser:
		if r.echoUser {
			fmt.Fprintf(r.out, "%s %s\n", r.userStyle.Render("You:"), content)
		}
	case session.RoleAssistant:
		fmt.Fprintf(r.out, "%s %s", r.assistantStyle.Render("Assistant:"), content)
		r.printed = content
		r.open = true
	}
}

// Update prints the part of content not yet on screen
func (r *Renderer) Update(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.open {
		return
	}

	if strings.HasPrefix(content, r.printed) {
		fmt.Fprint(r.out, content[len(r.printed):])
	} else {
		// the text was rewritten, start a fresh line
		fmt.Fprintf(r.out, "\n%s %s", r.assistantStyle.Render("Assistant:"), content)
	}
	r.printed = content
}

// Done ends the streamed message
func (r *Renderer) Done(content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.open && content != r.printed && strings.HasPrefix(content, r.printed) {
		fmt.Fprint(r.out, content[len(r.printed):])
	}
	r.closeOpen()
}

// Report prints a failure on its own line
func (r *Renderer) Report(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeOpen()
	fmt.Fprintln(r.out, r.errorStyle.Render(conversation.ErrorMessage(err)))
}

// Info prints a status line such as a command result
func (r *Renderer) Info(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeOpen()
	fmt.Fprintf(r.out, format+"\n", args...)
}

// History prints a stored log
func (r *Renderer) History(turns []session.Turn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.closeOpen()
	if len(turns) == 0 {
		fmt.Fprintln(r.out, "(no messages)")
		return
	}
	for _, turn := range turns {
		label := r.assistantStyle.Render("Assistant:")
		if turn.Role == session.RoleUser {
			label = r.userStyle.Render("You:")
		}
		fmt.Fprintf(r.out, "%s %s\n", label, turn.Content)
	}
}

// closeOpen terminates a streamed line that was left open. Caller holds mu.
func (r *Renderer) closeOpen() {
	if r.open {
		fmt.Fprintln(r.out)
		r.open = false
	}
	r.printed = ""
}
