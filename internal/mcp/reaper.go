package mcp

import (
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Reaper periodically sweeps the session store so that disconnected or
// long-idle sessions cannot accumulate.
type Reaper struct {
	scheduler *gocron.Scheduler
	store     *SessionStore
	idleTTL   time.Duration
	logger    *slog.Logger
}

// NewReaper creates a Reaper sweeping with the given idle TTL (0 = only
// sweep sessions that are already closed).
func NewReaper(store *SessionStore, idleTTL time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{
		scheduler: gocron.NewScheduler(time.UTC),
		store:     store,
		idleTTL:   idleTTL,
		logger:    logger.With("component", "mcp.reaper"),
	}
}

// Start schedules the sweep and starts the underlying scheduler.
func (r *Reaper) Start() error {
	_, err := r.scheduler.Every(1).Minute().Do(func() {
		if removed := r.store.Sweep(r.idleTTL); removed > 0 {
			r.logger.Info("swept stale sessions", "removed", removed, "remaining", r.store.Len())
		}
	})
	if err != nil {
		return err
	}
	r.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future sweeps.
func (r *Reaper) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
