package assembler

import (
	"time"

	"github.com/harun/chatclone/internal/observability"
)

// eventStream is the shape shared by the SDK server-sent event decoders
type eventStream[T any] interface {
	Next() bool
	Current() T
	Err() error
	Close() error
}

// deltaFragments adapts a provider event stream into text fragments.
// Events carrying no text are skipped.
type deltaFragments[T any] struct {
	stream   eventStream[T]
	extract  func(T) string
	classify func(error) error
	current  string
	err      error
	produced bool
	done     bool
}

func newDeltaFragments[T any](stream eventStream[T], extract func(T) string, classify func(error) error) *deltaFragments[T] {
	return &deltaFragments[T]{
		stream:   stream,
		extract:  extract,
		classify: classify,
	}
}

func (f *deltaFragments[T]) Next() bool {
	if f.done {
		return false
	}

	for f.stream.Next() {
		text := f.extract(f.stream.Current())
		if text == "" {
			continue
		}
		f.current = text
		f.produced = true
		return true
	}

	f.done = true
	f.current = ""
	if err := f.stream.Err(); err != nil {
		f.err = f.classify(err)
	} else if !f.produced {
		f.err = f.classify(ErrEmptyResponse)
	}
	return false
}

func (f *deltaFragments[T]) Current() string {
	return f.current
}

func (f *deltaFragments[T]) Err() error {
	return f.err
}

func (f *deltaFragments[T]) Close() error {
	f.done = true
	return f.stream.Close()
}

// instrumentedFragments records per-fragment and per-stream metrics
type instrumentedFragments struct {
	Fragments
	provider string
	started  time.Time
	recorded bool
}

func instrument(provider string, inner Fragments) *instrumentedFragments {
	return &instrumentedFragments{
		Fragments: inner,
		provider:  provider,
		started:   time.Now(),
	}
}

func (f *instrumentedFragments) Next() bool {
	if f.Fragments.Next() {
		observability.RecordFragment(f.provider)
		return true
	}
	f.record()
	return false
}

func (f *instrumentedFragments) Close() error {
	f.record()
	return f.Fragments.Close()
}

func (f *instrumentedFragments) record() {
	if f.recorded {
		return
	}
	f.recorded = true
	observability.RecordStream(f.provider, time.Since(f.started), string(KindOf(f.Fragments.Err())))
}
