// internal/app/system/authz/permissions.go
package authz

import "github.com/mwalimuhub/unionhub/internal/domain/models"

// Permission is the closed set of permission strings. Stored on users as
// plain strings (override lists) and derived from roles via rolePermissions.
type Permission string

const (
	PermViewAllMembers     Permission = "view_all_members"
	PermManageMembers      Permission = "manage_members"
	PermApproveMembers     Permission = "approve_members"
	PermApprovePayments    Permission = "approve_payments"
	PermViewFinance        Permission = "view_finance"
	PermManagePayouts      Permission = "manage_payouts"
	PermAssignRegions      Permission = "assign_regions"
	PermManageUsers        Permission = "manage_users"
	PermManageSystem       Permission = "manage_system"
	PermReviewApplications Permission = "review_applications"
)

// AllPermissions lists every known permission, for the override editor and
// exhaustiveness tests.
var AllPermissions = []Permission{
	PermViewAllMembers,
	PermManageMembers,
	PermApproveMembers,
	PermApprovePayments,
	PermViewFinance,
	PermManagePayouts,
	PermAssignRegions,
	PermManageUsers,
	PermManageSystem,
	PermReviewApplications,
}

// ParsePermission reports whether s names a known permission.
func ParsePermission(s string) (Permission, bool) {
	for _, p := range AllPermissions {
		if Permission(s) == p {
			return p, true
		}
	}
	return "", false
}

// rolePermissions maps each role to its default permission set. Overrides on
// the user are additive on top of this table, never subtractive.
var rolePermissions = map[Role][]Permission{
	RolePresident: {
		PermViewAllMembers, PermManageMembers, PermApproveMembers,
		PermApprovePayments, PermViewFinance, PermManagePayouts,
		PermAssignRegions, PermManageUsers, PermManageSystem,
		PermReviewApplications,
	},
	RoleVicePresident: {
		PermViewAllMembers, PermManageMembers, PermApproveMembers,
		PermApprovePayments, PermViewFinance, PermManagePayouts,
		PermAssignRegions, PermManageUsers, PermReviewApplications,
	},
	RoleFinance: {
		PermViewFinance, PermApprovePayments, PermManagePayouts,
	},
	RoleOperations: {
		PermManageMembers, PermApproveMembers, PermReviewApplications,
	},
	RoleRegionalAdmin: {
		PermManageMembers, PermReviewApplications,
	},
	RoleTeacher: {},
}

// RolePermissions returns the default permission list for a role. The
// returned slice is a copy; callers may not mutate the table through it.
func RolePermissions(r Role) []Permission {
	defaults := rolePermissions[r]
	out := make([]Permission, len(defaults))
	copy(out, defaults)
	return out
}

// HasPermission reports whether the user holds the given permission, either
// through an explicit override or through their role's defaults. Overrides
// are checked first and always win. A missing or unknown role means no
// role-derived permissions; this never errors.
func HasPermission(u *models.User, p Permission) bool {
	if u == nil {
		return false
	}
	for _, o := range u.Permissions {
		if Permission(o) == p {
			return true
		}
	}
	role, ok := ParseRole(u.Role)
	if !ok {
		return false
	}
	for _, d := range rolePermissions[role] {
		if d == p {
			return true
		}
	}
	return false
}

// CanViewRegion reports whether the user may see members in the given
// region. Holders of view_all_members see everything; otherwise the region
// must appear in the user's assigned list.
func CanViewRegion(u *models.User, region string) bool {
	if u == nil {
		return false
	}
	if HasPermission(u, PermViewAllMembers) {
		return true
	}
	for _, r := range u.AssignedRegions {
		if r == region {
			return true
		}
	}
	return false
}
