package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// MethodHandler handles one frame. Results are delivered as events.
type MethodHandler func(ctx context.Context, client *Client, frame Frame) error

// Router validates frames and dispatches them by method
type Router struct {
	mu        sync.RWMutex
	methods   map[string]MethodHandler
	validator *FrameValidator
}

// NewRouter creates a router with the frame schema compiled
func NewRouter() (*Router, error) {
	validator, err := NewFrameValidator()
	if err != nil {
		return nil, err
	}

	return &Router{
		methods:   make(map[string]MethodHandler),
		validator: validator,
	}, nil
}

// RegisterMethod registers a method handler
func (r *Router) RegisterMethod(name string, handler MethodHandler) error {
	if handler == nil {
		return fmt.Errorf("handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.methods[name] = handler
	return nil
}

// ParseFrame validates raw data against the frame schema and decodes it
func (r *Router) ParseFrame(data []byte) (Frame, error) {
	if err := r.validator.Validate(data); err != nil {
		return Frame{}, err
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("failed to decode frame: %w", err)
	}
	return frame, nil
}

// Route dispatches a frame to its handler
func (r *Router) Route(ctx context.Context, client *Client, frame Frame) error {
	r.mu.RLock()
	handler, exists := r.methods[frame.Method]
	r.mu.RUnlock()

	if !exists {
		return fmt.Errorf("method not found: %s", frame.Method)
	}
	return handler(ctx, client, frame)
}

// GetMethods returns all registered method names, sorted
func (r *Router) GetMethods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]string, 0, len(r.methods))
	for name := range r.methods {
		methods = append(methods, name)
	}
	sort.Strings(methods)
	return methods
}
