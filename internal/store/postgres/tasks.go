package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const taskColumns = `id, rag_id, cycle_id, type, status, error, created_at, updated_at`

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.RagID, &t.CycleID, &t.Type, &t.Status, &t.Error, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

type CreateTaskParams struct {
	ID    uuid.UUID
	RagID uuid.UUID
	Type  string
}

func (q *Queries) CreateTask(ctx context.Context, arg CreateTaskParams) (Task, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO tasks (id, rag_id, type)
		 VALUES ($1, $2, $3)
		 RETURNING `+taskColumns,
		arg.ID, arg.RagID, arg.Type)
	return scanTask(row)
}

func (q *Queries) GetTask(ctx context.Context, id uuid.UUID) (Task, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

type ListTasksByRagParams struct {
	RagID  uuid.UUID
	Limit  int32
	Offset int32
}

func (q *Queries) ListTasksByRag(ctx context.Context, arg ListTasksByRagParams) ([]Task, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE rag_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		arg.RagID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// SetTaskCycle links the cycle produced by a task. Done once, right after
// both rows are created in the upload transaction.
func (q *Queries) SetTaskCycle(ctx context.Context, taskID, cycleID uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE tasks SET cycle_id = $2, updated_at = now() WHERE id = $1`,
		taskID, cycleID)
	return err
}

// The transition queries below are guarded UPDATEs: the WHERE clause names
// the states the transition is legal from, and the returned count tells the
// caller whether it won the transition. Concurrent attempts have exactly one
// winner.

// StartTask moves pending -> running.
func (q *Queries) StartTask(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE tasks SET status = 'running', updated_at = now()
		 WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CompleteTask moves running -> succeeded.
func (q *Queries) CompleteTask(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE tasks SET status = 'succeeded', error = NULL, updated_at = now()
		 WHERE id = $1 AND status = 'running'`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// FailTask moves pending or running -> failed, recording the error message.
func (q *Queries) FailTask(ctx context.Context, id uuid.UUID, errMsg string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE tasks SET status = 'failed', error = $2, updated_at = now()
		 WHERE id = $1 AND status IN ('pending', 'running')`, id, errMsg)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// TouchTask refreshes updated_at on a running task. Workers call this
// between pipeline stages as a heartbeat so the reaper can distinguish a
// slow task from a dead one. Zero rows means the task is no longer running.
func (q *Queries) TouchTask(ctx context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE tasks SET updated_at = now() WHERE id = $1 AND status = 'running'`, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// StuckTask identifies a running task whose heartbeat lease has expired.
type StuckTask struct {
	TaskID  uuid.UUID
	CycleID *uuid.UUID
}

// ReapStuckTasks force-fails running tasks not updated since the cutoff and
// returns them so the caller can reject their cycles.
func (q *Queries) ReapStuckTasks(ctx context.Context, cutoff time.Time, errMsg string) ([]StuckTask, error) {
	rows, err := q.db.Query(ctx,
		`UPDATE tasks SET status = 'failed', error = $2, updated_at = now()
		 WHERE status = 'running' AND updated_at < $1
		 RETURNING id, cycle_id`,
		cutoff, errMsg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StuckTask
	for rows.Next() {
		var i StuckTask
		if err := rows.Scan(&i.TaskID, &i.CycleID); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}
