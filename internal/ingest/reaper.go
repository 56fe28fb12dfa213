package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ragforge-labs/ragforge/internal/cycle"
	"github.com/ragforge-labs/ragforge/internal/store"
)

const reapMessage = "task exceeded its lease without a heartbeat; worker presumed dead"

// Reaper force-fails running tasks whose heartbeat lease expired and rejects
// their cycles, so a crashed worker cannot leave a task running and a cycle
// pending forever.
type Reaper struct {
	store  *store.Store
	cycles *cycle.Manager
	lease  time.Duration
	logger *slog.Logger
}

func NewReaper(s *store.Store, cycles *cycle.Manager, lease time.Duration, logger *slog.Logger) *Reaper {
	return &Reaper{store: s, cycles: cycles, lease: lease, logger: logger}
}

// Run reaps on every tick until the context is cancelled.
func (r *Reaper) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.ReapOnce(ctx); err != nil {
				r.logger.Error("reap pass failed", "error", err.Error())
			}
		}
	}
}

// ReapOnce fails every running task that missed its lease and rejects the
// cycle each one was feeding. The guarded task update means a worker that
// finishes concurrently keeps its result; the reaper only ever wins against
// silence.
func (r *Reaper) ReapOnce(ctx context.Context) error {
	cutoff := time.Now().Add(-r.lease)

	stuck, err := r.store.ReapStuckTasks(ctx, cutoff, reapMessage)
	if err != nil {
		return fmt.Errorf("reap stuck tasks: %w", err)
	}

	for _, s := range stuck {
		r.logger.Warn("reaped stuck task", "task_id", s.TaskID)
		if s.CycleID == nil {
			continue
		}
		if err := r.cycles.MarkFailed(ctx, *s.CycleID); err != nil {
			r.logger.Error("reject cycle for reaped task",
				"task_id", s.TaskID,
				"cycle_id", s.CycleID.String(),
				"error", err.Error())
		}
	}
	return nil
}
