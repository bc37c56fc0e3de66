package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultIdleTimeout  = 30 * time.Minute
	DefaultReapSchedule = "@every 1m"
)

// Reaper periodically ends idle sessions
type Reaper struct {
	manager     *Manager
	idleTimeout time.Duration
	schedule    string
	cron        *cron.Cron
	running     bool
	mu          sync.Mutex
}

// NewReaper creates a reaper for the given manager
func NewReaper(manager *Manager, idleTimeout time.Duration, schedule string) *Reaper {
	if idleTimeout == 0 {
		idleTimeout = DefaultIdleTimeout
	}
	if schedule == "" {
		schedule = DefaultReapSchedule
	}

	return &Reaper{
		manager:     manager,
		idleTimeout: idleTimeout,
		schedule:    schedule,
	}
}

// Start schedules the reap job
func (r *Reaper) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("reaper is already running")
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, r.reap); err != nil {
		return fmt.Errorf("invalid reap schedule %q: %w", r.schedule, err)
	}
	c.Start()

	r.cron = c
	r.running = true

	r.manager.logger.Info().
		Str("schedule", r.schedule).
		Dur("idle_timeout", r.idleTimeout).
		Msg("Session reaper started")

	return nil
}

// Stop halts the schedule and waits for a running job to finish
func (r *Reaper) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return nil
	}

	<-r.cron.Stop().Done()
	r.running = false

	r.manager.logger.Info().Msg("Session reaper stopped")
	return nil
}

func (r *Reaper) reap() {
	r.manager.ReapIdle(r.idleTimeout)
}
