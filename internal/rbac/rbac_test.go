package rbac

import "testing"

func TestHasPermission(t *testing.T) {
	tests := []struct {
		role       string
		permission string
		expected   bool
	}{
		{RoleAdmin, PermApproveCompany, true},
		{RoleAdmin, PermViewAudit, true},
		{RoleAdmin, PermEvaluateBid, false},
		{RoleSuperuser, PermEvaluateBid, true},
		{RoleOfficer, PermCreateTender, true},
		{RoleOfficer, PermApproveCompany, false},
		{RoleEvaluator, PermEvaluateBid, true},
		{RoleEvaluator, PermCreateTender, false},
		{RoleBidder, PermSubmitBid, true},
		{RoleBidder, PermViewAudit, false},
		{RoleAdmin, PermLockAccount, true},
		{RoleSuperuser, PermLockAccount, true},
		{RoleOfficer, PermLockAccount, false},
		{RoleBidder, PermLockAccount, false},
		{"unknown", PermSubmitBid, false},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+tt.permission, func(t *testing.T) {
			if got := HasPermission(tt.role, tt.permission); got != tt.expected {
				t.Errorf("HasPermission(%s, %s) = %v, want %v", tt.role, tt.permission, got, tt.expected)
			}
		})
	}
}

func TestIsElevated(t *testing.T) {
	for role, want := range map[string]bool{
		RoleAdmin:     true,
		RoleSuperuser: true,
		RoleOfficer:   false,
		RoleEvaluator: false,
		RoleBidder:    false,
	} {
		if got := IsElevated(role); got != want {
			t.Errorf("IsElevated(%s) = %v, want %v", role, got, want)
		}
	}
}
