// Package task tracks ingestion work items through their lifecycle.
// Legal transitions: pending -> running -> succeeded or failed, plus
// pending -> failed when a task dies before a worker picks it up.
// Terminal tasks never change again.
package task

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

// TypeIngestion is the only task type today. The column exists so that
// future maintenance work (reindex, compaction) can share the ledger.
const TypeIngestion = "ingestion"

var (
	// ErrNotFound means no task exists under the given id.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidState means the task exists but the requested transition
	// is not legal from its current status.
	ErrInvalidState = errors.New("task is not in a valid state for this transition")
)

type Ledger struct {
	store *store.Store
}

func NewLedger(s *store.Store) *Ledger {
	return &Ledger{store: s}
}

func (l *Ledger) Get(ctx context.Context, id uuid.UUID) (postgres.Task, error) {
	t, err := l.store.GetTask(ctx, id)
	if err != nil {
		if apierr.IsNotFound(err) {
			return postgres.Task{}, ErrNotFound
		}
		return postgres.Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (l *Ledger) ListByRag(ctx context.Context, ragID uuid.UUID, limit, offset int32) ([]postgres.Task, error) {
	tasks, err := l.store.ListTasksByRag(ctx, postgres.ListTasksByRagParams{
		RagID:  ragID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Start claims a pending task for execution. Exactly one concurrent caller
// wins; the rest get ErrInvalidState.
func (l *Ledger) Start(ctx context.Context, id uuid.UUID) error {
	n, err := l.store.StartTask(ctx, id)
	if err != nil {
		return fmt.Errorf("start task: %w", err)
	}
	return l.checkTransition(ctx, id, n)
}

// Complete marks a running task as succeeded.
func (l *Ledger) Complete(ctx context.Context, id uuid.UUID) error {
	n, err := l.store.CompleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return l.checkTransition(ctx, id, n)
}

// Fail marks a pending or running task as failed with a diagnostic message.
// Failing an already terminal task returns ErrInvalidState, so a worker
// racing the reaper cannot overwrite the recorded cause.
func (l *Ledger) Fail(ctx context.Context, id uuid.UUID, msg string) error {
	n, err := l.store.FailTask(ctx, id, msg)
	if err != nil {
		return fmt.Errorf("fail task: %w", err)
	}
	return l.checkTransition(ctx, id, n)
}

// Heartbeat refreshes the lease on a running task. Returns ErrInvalidState
// once the task has left running, so a worker whose task was force-failed by
// the reaper aborts instead of staging chunks for an already rejected cycle.
func (l *Ledger) Heartbeat(ctx context.Context, id uuid.UUID) error {
	n, err := l.store.TouchTask(ctx, id)
	if err != nil {
		return fmt.Errorf("touch task: %w", err)
	}
	return l.checkTransition(ctx, id, n)
}

// checkTransition turns a zero-row guarded update into ErrNotFound or
// ErrInvalidState depending on whether the task exists.
func (l *Ledger) checkTransition(ctx context.Context, id uuid.UUID, rows int64) error {
	if rows > 0 {
		return nil
	}
	if _, err := l.store.GetTask(ctx, id); err != nil {
		if apierr.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get task: %w", err)
	}
	return ErrInvalidState
}
