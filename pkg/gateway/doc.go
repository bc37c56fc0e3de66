// Package gateway serves conversations over websocket.
//
// Each connection to /ws owns exactly one session, created by the session
// Manager on connect and ended when the socket closes. Frames are JSON
// objects validated against FrameSchema:
//
//	{"id":"1","method":"chat.send","params":{"content":"Hi"}}
//	{"method":"chat.clear"}
//	{"method":"chat.history"}
//
// Replies stream back as message.show, message.update and message.done
// events. Provider failures arrive as chat.error with the error kind,
// malformed frames as protocol.error.
//
// Invariants:
//   - Frames from one connection are handled in order, one at a time.
//   - Closing the connection cancels the exchange in flight.
//   - A session ended by the idle reaper is replaced on the next frame and
//     announced with a new session.started event.
package gateway
