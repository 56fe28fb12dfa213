// Package access resolves caller roles against a RAG and authorizes
// membership mutations. All mutating entry points of the orchestration
// service consult this guard before touching anything else.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ragforge-labs/ragforge/internal/store"
	"github.com/ragforge-labs/ragforge/internal/store/postgres"
	"github.com/ragforge-labs/ragforge/pkg/apierr"
)

var (
	// ErrNotMember means the user has no role on the RAG at all.
	ErrNotMember = errors.New("not a member of this rag")
	// ErrOwnerRequired means the operation is reserved for the owner.
	ErrOwnerRequired = errors.New("owner role required")
	// ErrWriteForbidden means the operation needs editor or owner.
	ErrWriteForbidden = errors.New("editor or owner role required")
	// ErrAlreadyMember means the target user already has a membership row.
	ErrAlreadyMember = errors.New("user is already a member")
	// ErrUserNotFound means the target email resolved to no user.
	ErrUserNotFound = errors.New("no user with that email")
	// ErrMemberNotFound means the removal target has no membership row.
	ErrMemberNotFound = errors.New("user is not a member")
	// ErrOwnerImmutable means the owner was targeted for removal.
	ErrOwnerImmutable = errors.New("owner cannot be removed")
	// ErrInvalidRole means the requested role is not viewer or editor.
	ErrInvalidRole = errors.New("role must be viewer or editor")
)

type Guard struct {
	store *store.Store
}

func NewGuard(s *store.Store) *Guard {
	return &Guard{store: s}
}

// RoleOf resolves the user's role on the rag: owner from the rag record
// itself, otherwise the membership row. Returns ErrNotMember when neither
// applies.
func (g *Guard) RoleOf(ctx context.Context, rag postgres.Rag, userID uuid.UUID) (Role, error) {
	if rag.OwnerID == userID {
		return RoleOwner, nil
	}

	member, err := g.store.GetMember(ctx, rag.ID, userID)
	if err != nil {
		if apierr.IsNotFound(err) {
			return "", ErrNotMember
		}
		return "", fmt.Errorf("get member: %w", err)
	}
	return Role(member.Role), nil
}

// ListMembers returns the rag's membership rows. Any member (or the owner)
// may list.
func (g *Guard) ListMembers(ctx context.Context, rag postgres.Rag, requesterID uuid.UUID) ([]postgres.MemberListRow, error) {
	if _, err := g.RoleOf(ctx, rag, requesterID); err != nil {
		return nil, err
	}

	members, err := g.store.ListMembers(ctx, rag.ID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return members, nil
}

// AddMember grants role to the user registered under email. Owner only.
// The owner cannot be added as a member; their privilege is implicit.
func (g *Guard) AddMember(ctx context.Context, rag postgres.Rag, requesterID uuid.UUID, email, role string) (postgres.MemberListRow, error) {
	requesterRole, err := g.RoleOf(ctx, rag, requesterID)
	if err != nil {
		return postgres.MemberListRow{}, err
	}
	if !requesterRole.CanManage() {
		return postgres.MemberListRow{}, ErrOwnerRequired
	}
	if !ValidMemberRole(role) {
		return postgres.MemberListRow{}, ErrInvalidRole
	}

	target, err := g.store.GetUserByEmail(ctx, email)
	if err != nil {
		if apierr.IsNotFound(err) {
			return postgres.MemberListRow{}, ErrUserNotFound
		}
		return postgres.MemberListRow{}, fmt.Errorf("resolve email: %w", err)
	}
	if target.ID == rag.OwnerID {
		return postgres.MemberListRow{}, ErrAlreadyMember
	}

	member, err := g.store.AddMember(ctx, postgres.AddMemberParams{
		RagID:  rag.ID,
		UserID: target.ID,
		Role:   role,
	})
	if err != nil {
		if apierr.IsUniqueViolation(err, "") {
			return postgres.MemberListRow{}, ErrAlreadyMember
		}
		return postgres.MemberListRow{}, fmt.Errorf("add member: %w", err)
	}

	return postgres.MemberListRow{
		UserID:      member.UserID,
		Email:       target.Email,
		DisplayName: target.DisplayName,
		Role:        member.Role,
	}, nil
}

// RemoveMember revokes the target's membership. Owner only. Removing the
// owner fails with ErrOwnerImmutable; removing a user who is not currently
// a member fails with ErrMemberNotFound, so retried deletes surface to the
// client rather than silently no-opping.
func (g *Guard) RemoveMember(ctx context.Context, rag postgres.Rag, requesterID, targetID uuid.UUID) error {
	requesterRole, err := g.RoleOf(ctx, rag, requesterID)
	if err != nil {
		return err
	}
	if !requesterRole.CanManage() {
		return ErrOwnerRequired
	}
	if targetID == rag.OwnerID {
		return ErrOwnerImmutable
	}

	deleted, err := g.store.DeleteMember(ctx, rag.ID, targetID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if !deleted {
		return ErrMemberNotFound
	}
	return nil
}
