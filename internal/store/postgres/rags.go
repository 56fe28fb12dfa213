package postgres

import (
	"context"

	"github.com/google/uuid"
)

const ragColumns = `id, owner_id, name, description, index_name, cycle_count, created_at`

func scanRag(row interface{ Scan(...any) error }) (Rag, error) {
	var r Rag
	err := row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Description, &r.IndexName, &r.CycleCount, &r.CreatedAt)
	return r, err
}

type CreateRagParams struct {
	ID          uuid.UUID
	OwnerID     uuid.UUID
	Name        string
	Description *string
	IndexName   string
}

func (q *Queries) CreateRag(ctx context.Context, arg CreateRagParams) (Rag, error) {
	row := q.db.QueryRow(ctx,
		`INSERT INTO rags (id, owner_id, name, description, index_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+ragColumns,
		arg.ID, arg.OwnerID, arg.Name, arg.Description, arg.IndexName)
	return scanRag(row)
}

func (q *Queries) GetRag(ctx context.Context, id uuid.UUID) (Rag, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+ragColumns+` FROM rags WHERE id = $1`, id)
	return scanRag(row)
}

// ListVisibleRags returns RAGs the user owns or is a member of.
func (q *Queries) ListVisibleRags(ctx context.Context, userID uuid.UUID) ([]Rag, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+ragColumns+` FROM rags WHERE owner_id = $1
		 UNION
		 SELECT r.id, r.owner_id, r.name, r.description, r.index_name, r.cycle_count, r.created_at
		 FROM rags r JOIN rag_members m ON m.rag_id = r.id
		 WHERE m.user_id = $1
		 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Rag
	for rows.Next() {
		r, err := scanRag(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (q *Queries) DeleteRag(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `DELETE FROM rags WHERE id = $1`, id)
	return err
}

// IncrementRagCycleCount bumps cycle_count; called inside the approve
// transaction only.
func (q *Queries) IncrementRagCycleCount(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx,
		`UPDATE rags SET cycle_count = cycle_count + 1 WHERE id = $1`, id)
	return err
}

// CountActiveTasks counts tasks still pending or running for a RAG. Used by
// the delete guard.
func (q *Queries) CountActiveTasks(ctx context.Context, ragID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx,
		`SELECT count(*) FROM tasks WHERE rag_id = $1 AND status IN ('pending', 'running')`,
		ragID).Scan(&n)
	return n, err
}
