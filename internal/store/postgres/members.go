package postgres

import (
	"context"

	"github.com/google/uuid"
)

type AddMemberParams struct {
	RagID  uuid.UUID
	UserID uuid.UUID
	Role   string
}

func (q *Queries) AddMember(ctx context.Context, arg AddMemberParams) (RagMember, error) {
	var m RagMember
	err := q.db.QueryRow(ctx,
		`INSERT INTO rag_members (rag_id, user_id, role)
		 VALUES ($1, $2, $3)
		 RETURNING rag_id, user_id, role`,
		arg.RagID, arg.UserID, arg.Role).Scan(&m.RagID, &m.UserID, &m.Role)
	return m, err
}

func (q *Queries) GetMember(ctx context.Context, ragID, userID uuid.UUID) (RagMember, error) {
	var m RagMember
	err := q.db.QueryRow(ctx,
		`SELECT rag_id, user_id, role FROM rag_members WHERE rag_id = $1 AND user_id = $2`,
		ragID, userID).Scan(&m.RagID, &m.UserID, &m.Role)
	return m, err
}

// MemberListRow is a membership joined with the user's identity, as shown in
// the members list.
type MemberListRow struct {
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	Role        string    `json:"role"`
}

func (q *Queries) ListMembers(ctx context.Context, ragID uuid.UUID) ([]MemberListRow, error) {
	rows, err := q.db.Query(ctx,
		`SELECT u.id, u.email, u.display_name, m.role
		 FROM rag_members m JOIN users u ON u.id = m.user_id
		 WHERE m.rag_id = $1
		 ORDER BY u.email`,
		ragID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MemberListRow
	for rows.Next() {
		var i MemberListRow
		if err := rows.Scan(&i.UserID, &i.Email, &i.DisplayName, &i.Role); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// DeleteMember removes a membership and reports whether a row was deleted.
func (q *Queries) DeleteMember(ctx context.Context, ragID, userID uuid.UUID) (bool, error) {
	tag, err := q.db.Exec(ctx,
		`DELETE FROM rag_members WHERE rag_id = $1 AND user_id = $2`,
		ragID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
