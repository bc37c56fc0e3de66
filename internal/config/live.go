package config

import (
	"sync"

	"github.com/harun/chatclone/pkg/assembler"
)

// Live holds the current configuration and is safe for concurrent use.
// Sessions read their stream options and credentials from it on every send,
// so a reload applies to the next exchange.
type Live struct {
	mu  sync.RWMutex
	cfg *Config
}

// NewLive creates a live config seeded with cfg
func NewLive(cfg *Config) *Live {
	return &Live{cfg: cfg}
}

// Get returns the current config. Callers must not modify it.
func (l *Live) Get() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

// Set replaces the current config
func (l *Live) Set(cfg *Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cfg = cfg
}

// ChatOptions returns the stream options of the current config
func (l *Live) ChatOptions() assembler.Options {
	return l.Get().ChatOptions()
}

// NewProvider creates a provider using the current credentials
func (l *Live) NewProvider(name string) (assembler.Provider, error) {
	return l.Get().ProviderFactory().NewProvider(name)
}
