package assembler

import (
	"context"
	"sync"
)

// ScriptedProvider replays a fixed fragment script. It serves as its own
// ProviderCreator, so it can be handed straight to Config.Providers.
type ScriptedProvider struct {
	// Fragments are yielded in order
	Fragments []string

	// StreamErr, when set, ends the stream after all fragments are yielded
	StreamErr error

	// OpenErr, when set, is returned by Stream before any fragment
	OpenErr error

	mu       sync.Mutex
	requests []Request
}

// Name returns the provider name
func (p *ScriptedProvider) Name() string {
	return "scripted"
}

// NewProvider returns the provider itself for any name
func (p *ScriptedProvider) NewProvider(string) (Provider, error) {
	return p, nil
}

// Stream records the request and returns the scripted fragments
func (p *ScriptedProvider) Stream(_ context.Context, request Request) (Fragments, error) {
	p.mu.Lock()
	p.requests = append(p.requests, request)
	p.mu.Unlock()

	if p.OpenErr != nil {
		return nil, p.OpenErr
	}
	return NewSliceFragments(p.Fragments, p.StreamErr), nil
}

// Requests returns every request received so far
func (p *ScriptedProvider) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Request, len(p.requests))
	copy(out, p.requests)
	return out
}

// SliceFragments yields fragments from a slice, then an optional error
type SliceFragments struct {
	items []string
	err   error
	pos   int
	cur   string
	done  bool
}

// NewSliceFragments creates fragments that end with err after the last item
func NewSliceFragments(items []string, err error) *SliceFragments {
	return &SliceFragments{items: items, err: err}
}

func (f *SliceFragments) Next() bool {
	if f.done {
		return false
	}
	if f.pos < len(f.items) {
		f.cur = f.items[f.pos]
		f.pos++
		return true
	}
	f.done = true
	f.cur = ""
	return false
}

func (f *SliceFragments) Current() string {
	return f.cur
}

// Err reports the scripted error once the items are exhausted
func (f *SliceFragments) Err() error {
	if !f.done {
		return nil
	}
	return f.err
}

func (f *SliceFragments) Close() error {
	f.done = true
	return nil
}
