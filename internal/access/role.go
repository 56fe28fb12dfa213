package access

// Role is a caller's resolved privilege on a RAG. The owner is derived from
// rags.owner_id and never stored as a membership row; viewer and editor come
// from the rag_members table.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// CanWrite reports whether the role may upload documents and approve cycles.
func (r Role) CanWrite() bool {
	return r == RoleOwner || r == RoleEditor
}

// CanManage reports whether the role may manage membership and delete the RAG.
func (r Role) CanManage() bool {
	return r == RoleOwner
}

// ValidMemberRole reports whether s is a role assignable to a member.
// Ownership is not assignable; it transfers only with the RAG itself.
func ValidMemberRole(s string) bool {
	return s == string(RoleViewer) || s == string(RoleEditor)
}
