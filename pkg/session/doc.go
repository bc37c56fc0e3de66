// Package session holds the in-memory chat log of interactive sessions.
//
// Invariants:
// - A Store is owned by exactly one interactive session and is never shared.
// - Turns are returned in insertion order and are copied out of the store.
// - Trimming keeps the most recent 2*N turns, so complete pairs survive.
// - Stores are created on session start and destroyed on session end or idle reap.
//
// Usage:
//
//	mgr := session.NewManager(session.ManagerConfig{Logger: logger})
//	store := mgr.Create()
//	_ = store.Append(session.NewTurn(session.RoleUser, "hello"))
//	turns := store.All()
//	_ = turns
//	mgr.End(store.ID())
package session
