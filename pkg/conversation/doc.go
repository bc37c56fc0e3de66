// Package conversation drives one chat exchange from user input to a committed reply.
//
// Invariants:
// - Blank input is ignored and never reaches the store or the renderer.
// - The store only ever gains complete user+assistant pairs.
// - A failed attempt leaves the store as it was, unless partial commits are enabled.
// - The renderer is refreshed after every fragment with the full accumulated text.
//
// Usage:
//
//	conv := conversation.New(conversation.Config{
//		Store:     mgr.Create(),
//		Assembler: asm,
//		Renderer:  renderer,
//		Settings:  live,
//	})
//	reply, err := conv.Send(ctx, "Hi")
package conversation
