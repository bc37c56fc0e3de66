// Package tui is a full-screen chat interface built on bubbletea.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
)

// Chat is the part of a conversation the interface drives
type Chat interface {
	Send(ctx context.Context, input string) (conversation.Reply, error)
	Clear()
	History() []session.Turn
}

type entry struct {
	role    session.Role
	content string
	failed  bool
	notice  bool
}

// Model is the bubbletea model for one chat session
type Model struct {
	chat     Chat
	title    string
	ctx      context.Context
	input    textinput.Model
	viewport viewport.Model
	entries  []entry
	busy     bool
	cancel   context.CancelFunc
	width    int
	height   int
	ready    bool
}

// NewModel creates a model. The transcript starts from the chat's history.
func NewModel(ctx context.Context, chat Chat, title string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, /clear to reset, /exit to quit"
	ti.CharLimit = 4000
	ti.Prompt = "> "
	ti.Focus()

	m := Model{
		chat:  chat,
		title: title,
		ctx:   ctx,
		input: ti,
	}
	for _, turn := range chat.History() {
		m.entries = append(m.entries, entry{role: turn.Role, content: turn.Content})
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-4, 10)
		vh := max(msg.Height-4, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vh)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vh
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)

	case showMsg:
		// the user turn is already on screen from submit
		if msg.role == session.RoleAssistant {
			m.entries = append(m.entries, entry{role: msg.role, content: msg.content})
			m.refresh()
		}
		return m, nil

	case updateMsg:
		m.setLastAssistant(msg.content)
		return m, nil

	case doneMsg:
		m.setLastAssistant(msg.content)
		return m, nil

	case reportMsg:
		m.entries = append(m.entries, entry{content: conversation.ErrorMessage(msg.err), failed: true})
		m.refresh()
		return m, nil

	case replyMsg:
		m.busy = false
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.input.Focus()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		if m.busy && m.cancel != nil {
			m.cancel()
			m.cancel = nil
			return m, nil
		}
		return m, tea.Quit

	case "esc":
		if !m.busy {
			return m, tea.Quit
		}
		return m, nil

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case "enter":
		if m.busy {
			return m, nil
		}
		return m.submit()
	}

	if m.busy {
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	switch text {
	case "/exit", "/quit":
		return m, tea.Quit
	case "/clear":
		m.chat.Clear()
		m.entries = []entry{{content: "Conversation cleared.", notice: true}}
		m.refresh()
		return m, nil
	}

	m.entries = append(m.entries, entry{role: session.RoleUser, content: text})
	m.refresh()
	m.busy = true
	m.input.Blur()

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	return m, sendCmd(ctx, m.chat, text)
}

func sendCmd(ctx context.Context, chat Chat, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := chat.Send(ctx, text)
		return replyMsg{reply: reply, err: err}
	}
}

// setLastAssistant replaces the content of the message being streamed
func (m *Model) setLastAssistant(content string) {
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.role == session.RoleAssistant && !e.failed && !e.notice {
			m.entries[i].content = content
			break
		}
	}
	m.refresh()
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.entries) == 0 {
		return dimStyle.Render("No messages yet.")
	}

	width := max(m.width-2, 20)
	body := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for i, e := range m.entries {
		if i > 0 {
			b.WriteString("\n")
		}
		switch {
		case e.failed:
			b.WriteString(errorStyle.Render(e.content))
		case e.notice:
			b.WriteString(dimStyle.Render(e.content))
		case e.role == session.RoleUser:
			b.WriteString(userRoleStyle.Render(" You "))
			b.WriteString("\n")
			b.WriteString(body.Render(e.content))
		default:
			b.WriteString(assistantRoleStyle.Render(" Assistant "))
			b.WriteString("\n")
			b.WriteString(body.Render(e.content))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m Model) renderStatus() string {
	if m.busy {
		return statusBarStyle.Render("streaming... ctrl+c to cancel")
	}
	return helpStyle.Render("enter send • pgup/pgdown scroll • /clear reset • esc quit")
}

// Busy reports whether an exchange is in flight
func (m Model) Busy() bool {
	return m.busy
}
