package conversation

import (
	"github.com/harun/chatclone/pkg/assembler"
	"github.com/harun/chatclone/pkg/session"
)

// Renderer is the display surface of a host runtime
type Renderer interface {
	// Show displays a new message
	Show(role session.Role, content string)

	// Update replaces the content of the most recently shown message
	Update(content string)

	// Done marks the most recent message as complete
	Done(content string)

	// Report displays a failure
	Report(err error)
}

// SettingsSource supplies the options for each new stream
type SettingsSource interface {
	ChatOptions() assembler.Options
}

// StaticSettings is a SettingsSource with fixed options
type StaticSettings assembler.Options

// ChatOptions returns the fixed options
func (s StaticSettings) ChatOptions() assembler.Options {
	return assembler.Options(s)
}

// NopRenderer discards everything
type NopRenderer struct{}

func (NopRenderer) Show(session.Role, string) {}
func (NopRenderer) Update(string)             {}
func (NopRenderer) Done(string)               {}
func (NopRenderer) Report(error)              {}
