// Package cycle manages review cycles: the staged ingestion results that a
// human approves or rejects before they become visible to retrieval. A RAG
// has at most one cycle in pending_review at any time; the database enforces
// this with the cycles_one_pending partial unique index.
package cycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	"github.com/ragforge-labs/ragforge/internal/task"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

var (
	// ErrAlreadyPending means the RAG already has a cycle awaiting review.
	ErrAlreadyPending = errors.New("a cycle is already pending review for this rag")
	// ErrNotFound means no cycle exists under the given id.
	ErrNotFound = errors.New("cycle not found")
	// ErrNotPending means the cycle has already been approved or rejected.
	ErrNotPending = errors.New("cycle is not pending review")
)

type Manager struct {
	store *store.Store
}

func NewManager(s *store.Store) *Manager {
	return &Manager{store: s}
}

type BeginParams struct {
	CycleID    uuid.UUID
	Rag        postgres.Rag
	ObjectName string
}

// Begin opens a new review cycle: one transaction creates the ingestion task,
// the pending_review cycle, and the link between them. The caller supplies
// the cycle id because the uploaded object is keyed by it before the rows
// exist. Returns ErrAlreadyPending when the RAG's pending slot is taken.
func (m *Manager) Begin(ctx context.Context, p BeginParams) (postgres.Cycle, postgres.Task, error) {
	var (
		c postgres.Cycle
		t postgres.Task
	)
	err := m.store.WithTx(ctx, func(q *postgres.Queries) error {
		var err error
		t, err = q.CreateTask(ctx, postgres.CreateTaskParams{
			ID:    uuid.New(),
			RagID: p.Rag.ID,
			Type:  task.TypeIngestion,
		})
		if err != nil {
			return fmt.Errorf("create task: %w", err)
		}

		c, err = q.CreateCycle(ctx, postgres.CreateCycleParams{
			ID:         p.CycleID,
			RagID:      p.Rag.ID,
			CycleN:     p.Rag.CycleCount + 1,
			TaskID:     t.ID,
			ObjectName: p.ObjectName,
		})
		if err != nil {
			if apierr.IsUniqueViolation(err, "cycles_one_pending") {
				return ErrAlreadyPending
			}
			return fmt.Errorf("create cycle: %w", err)
		}

		if err := q.SetTaskCycle(ctx, t.ID, c.ID); err != nil {
			return fmt.Errorf("link task to cycle: %w", err)
		}
		t.CycleID = &c.ID
		return nil
	})
	if err != nil {
		return postgres.Cycle{}, postgres.Task{}, err
	}
	return c, t, nil
}

func (m *Manager) Get(ctx context.Context, id uuid.UUID) (postgres.Cycle, error) {
	c, err := m.store.GetCycle(ctx, id)
	if err != nil {
		if apierr.IsNotFound(err) {
			return postgres.Cycle{}, ErrNotFound
		}
		return postgres.Cycle{}, fmt.Errorf("get cycle: %w", err)
	}
	return c, nil
}

// CurrentPending returns the RAG's cycle awaiting review, or false when the
// pending slot is free.
func (m *Manager) CurrentPending(ctx context.Context, ragID uuid.UUID) (postgres.Cycle, bool, error) {
	c, err := m.store.GetPendingCycle(ctx, ragID)
	if err != nil {
		if apierr.IsNotFound(err) {
			return postgres.Cycle{}, false, nil
		}
		return postgres.Cycle{}, false, fmt.Errorf("get pending cycle: %w", err)
	}
	return c, true, nil
}

// Approve moves a pending cycle to approved and bumps the RAG's cycle count
// in the same transaction, making the cycle's chunks visible to retrieval.
func (m *Manager) Approve(ctx context.Context, id uuid.UUID) (postgres.Cycle, error) {
	var approved postgres.Cycle
	err := m.store.WithTx(ctx, func(q *postgres.Queries) error {
		n, err := q.ApproveCycle(ctx, id)
		if err != nil {
			return fmt.Errorf("approve cycle: %w", err)
		}
		if n == 0 {
			if _, err := q.GetCycle(ctx, id); err != nil {
				if apierr.IsNotFound(err) {
					return ErrNotFound
				}
				return fmt.Errorf("get cycle: %w", err)
			}
			return ErrNotPending
		}

		approved, err = q.GetCycle(ctx, id)
		if err != nil {
			return fmt.Errorf("get cycle: %w", err)
		}
		return q.IncrementRagCycleCount(ctx, approved.RagID)
	})
	if err != nil {
		return postgres.Cycle{}, err
	}
	return approved, nil
}

// MarkFailed rejects a pending cycle after its ingestion task failed and
// discards any chunks the worker managed to stage. If the cycle already left
// pending_review the call is a no-op, so a late worker cannot clobber an
// approval.
func (m *Manager) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return m.store.WithTx(ctx, func(q *postgres.Queries) error {
		n, err := q.RejectCycle(ctx, id)
		if err != nil {
			return fmt.Errorf("reject cycle: %w", err)
		}
		if n == 0 {
			return nil
		}
		if err := q.DeleteChunksByCycle(ctx, id); err != nil {
			return fmt.Errorf("delete staged chunks: %w", err)
		}
		return nil
	})
}
