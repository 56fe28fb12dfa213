package postgres

import (
	"context"

	"github.com/google/uuid"
)

const cycleColumns = `id, rag_id, cycle_n, status, task_id, object_name, created_at, approved_at`

func scanCycle(row interface{ Scan(...any) error }) (Cycle, error) {
	var c Cycle
	err := row.Scan(&c.ID, &c.RagID, &c.CycleN, &c.Status, &c.TaskID, &c.ObjectName, &c.CreatedAt, &c.ApprovedAt)
	return c, err
}

type CreateCycleParams struct {
	ID         uuid.UUID
	RagID      uuid.UUID
	CycleN     int32
	TaskID     uuid.UUID
	ObjectName string
}

// CreateCycle inserts a cycle in pending_review. The cycles_one_pending
// partial unique index makes this the atomic check-and-create for the
// one-pending-cycle-per-RAG invariant: a concurrent insert for the same RAG
// fails with a 23505 unique violation.
func (q *Queries) CreateCycle(ctx context.Context, arg CreateCycleParams) (Cycle, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO cycles (id, rag_id, cycle_n, task_id, object_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+cycleColumns,
		arg.ID, arg.RagID, arg.CycleN, arg.TaskID, arg.ObjectName)
	return scanCycle(row)
}

func (q *Queries) GetCycle(ctx context.Context, id uuid.UUID) (Cycle, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+cycleColumns+` FROM cycles WHERE id = $1`, id)
	return scanCycle(row)
}

// GetPendingCycle returns the RAG's cycle awaiting review, if any.
func (q *Queries) GetPendingCycle(ctx context.Context, ragID uuid.UUID) (Cycle, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+cycleColumns+` FROM cycles
		 WHERE rag_id = $1 AND status = 'pending_review'`, ragID)
	return scanCycle(row)
}

// RejectCycle moves pending_review -> rejected, freeing the pending slot.
// Returns the number of rows transitioned (0 if the cycle was not pending).
func (q *Queries) RejectCycle(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE cycles SET status = 'rejected' WHERE id = $1 AND status = 'pending_review'`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ApproveCycle moves pending_review -> approved and stamps approved_at.
// Callers must run this inside the approve transaction together with
// IncrementRagCycleCount.
func (q *Queries) ApproveCycle(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE cycles SET status = 'approved', approved_at = now()
		 WHERE id = $1 AND status = 'pending_review'`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
