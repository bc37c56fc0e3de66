package gateway

import (
	"github.com/harun/chatclone/pkg/assembler"
	"github.com/harun/chatclone/pkg/conversation"
	"github.com/harun/chatclone/pkg/session"
	"github.com/rs/zerolog"
)

// socketRenderer turns conversation output into events for one client
type socketRenderer struct {
	client      *Client
	broadcaster *EventBroadcaster
	logger      zerolog.Logger

	// requestID tags events with the frame that caused them
	requestID string
}

var _ conversation.Renderer = (*socketRenderer)(nil)

func (r *socketRenderer) emit(event string, data interface{}) {
	if r.client.ctx.Err() != nil {
		r.logger.Debug().Str("event", event).Msg("Client gone, dropping event")
		return
	}
	msg := EventMessage{Event: event, ID: r.requestID, Data: data}
	if err := r.broadcaster.Send(r.client, msg); err != nil {
		r.logger.Warn().Err(err).Str("event", event).Msg("Failed to send event")
	}
}

func (r *socketRenderer) Show(role session.Role, content string) {
	r.emit(EventMessageShow, MessageData{Role: role, Content: content})
}

func (r *socketRenderer) Update(content string) {
	r.emit(EventMessageUpdate, MessageData{Content: content})
}

func (r *socketRenderer) Done(content string) {
	r.emit(EventMessageDone, MessageData{Role: session.RoleAssistant, Content: content})
}

func (r *socketRenderer) Report(err error) {
	r.emit(EventChatError, ErrorData{
		Kind:    string(assembler.KindOf(err)),
		Message: conversation.ErrorMessage(err),
	})
}
