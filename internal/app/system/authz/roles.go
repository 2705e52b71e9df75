// internal/app/system/authz/roles.go
package authz

import "strings"

// Role is the closed set of roles a user may hold. Adding a role here forces
// the permission table and every role switch to be revisited.
type Role string

const (
	RolePresident     Role = "president"
	RoleVicePresident Role = "vice_president"
	RoleFinance       Role = "finance"
	RoleOperations    Role = "operations"
	RoleRegionalAdmin Role = "regional_admin"
	RoleTeacher       Role = "teacher"
)

// AllRoles lists every valid role, in seniority order. Used by the
// system-user forms and by exhaustiveness tests.
var AllRoles = []Role{
	RolePresident,
	RoleVicePresident,
	RoleFinance,
	RoleOperations,
	RoleRegionalAdmin,
	RoleTeacher,
}

// ParseRole normalizes a stored role string. Unknown or blank values come
// back as ok=false; callers treat that as "no access", not an error.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RolePresident, RoleVicePresident, RoleFinance, RoleOperations, RoleRegionalAdmin, RoleTeacher:
		return r, true
	default:
		return "", false
	}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := ParseRole(string(r))
	return ok
}

// Label returns a human-readable role name for templates.
func (r Role) Label() string {
	switch r {
	case RolePresident:
		return "President"
	case RoleVicePresident:
		return "Vice President"
	case RoleFinance:
		return "Finance Officer"
	case RoleOperations:
		return "Operations"
	case RoleRegionalAdmin:
		return "Regional Admin"
	case RoleTeacher:
		return "Teacher"
	}
	return string(r)
}
