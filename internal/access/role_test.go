package access

import "testing"

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role      Role
		canWrite  bool
		canManage bool
	}{
		{RoleOwner, true, true},
		{RoleEditor, true, false},
		{RoleViewer, false, false},
		{Role(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.CanWrite(); got != tt.canWrite {
				t.Errorf("CanWrite() = %v, want %v", got, tt.canWrite)
			}
			if got := tt.role.CanManage(); got != tt.canManage {
				t.Errorf("CanManage() = %v, want %v", got, tt.canManage)
			}
		})
	}
}

func TestValidMemberRole(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"viewer", true},
		{"editor", true},
		{"owner", false},
		{"admin", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := ValidMemberRole(tt.role); got != tt.want {
			t.Errorf("ValidMemberRole(%q) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
