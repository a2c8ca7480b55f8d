package rbac

// Role constants
const (
	RoleAdmin     = "admin"
	RoleSuperuser = "superuser"
	RoleOfficer   = "procurement_officer"
	RoleEvaluator = "evaluator"
	RoleBidder    = "bidder"
)

// Permission constants
const (
	PermApproveCompany   = "approve_company"
	PermBlacklistCompany = "blacklist_company"
	PermCreateTender     = "create_tender"
	PermPublishTender    = "publish_tender"
	PermAwardTender      = "award_tender"
	PermSubmitBid        = "submit_bid"
	PermWithdrawBid      = "withdraw_bid"
	PermEvaluateBid      = "evaluate_bid"
	PermViewAudit        = "view_audit"
	PermExportData       = "export_data"
	PermSignContract     = "sign_contract"
	PermLockAccount      = "lock_account"
)

// RolePermissions defines what each role can do.
var RolePermissions = map[string][]string{
	RoleSuperuser: {
		PermApproveCompany, PermBlacklistCompany, PermCreateTender, PermPublishTender,
		PermAwardTender, PermEvaluateBid, PermViewAudit, PermExportData, PermSignContract,
		PermLockAccount,
	},
	RoleAdmin: {
		PermApproveCompany, PermBlacklistCompany, PermCreateTender, PermPublishTender,
		PermAwardTender, PermViewAudit, PermExportData, PermSignContract,
		PermLockAccount,
	},
	RoleOfficer: {
		PermCreateTender, PermPublishTender, PermAwardTender, PermSignContract,
	},
	RoleEvaluator: {
		PermEvaluateBid,
	},
	RoleBidder: {
		PermSubmitBid, PermWithdrawBid,
	},
}

// HasPermission checks if a role has a specific permission.
func HasPermission(role, permission string) bool {
	perms, ok := RolePermissions[role]
	if !ok {
		return false
	}
	for _, p := range perms {
		if p == permission {
			return true
		}
	}
	return false
}

// IsElevated reports whether a role carries platform-wide powers. Elevated
// actors score higher on the audit risk scale.
func IsElevated(role string) bool {
	return role == RoleAdmin || role == RoleSuperuser
}
