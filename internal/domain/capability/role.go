// Package capability defines the static role-to-capability policy table.
// Policies are immutable, looked up by role, and never persisted per actor.
package capability

// Role represents the platform role of an authenticated actor.
type Role string

const (
	RolePlatformAdmin  Role = "platform_admin"
	RoleDeveloper      Role = "developer"
	RoleCompanyAdmin   Role = "company_admin"
	RoleProjectManager Role = "project_manager"
	RoleViewer         Role = "viewer"
)

// IsValid checks if the role belongs to the known closed set.
func (r Role) IsValid() bool {
	switch r {
	case RolePlatformAdmin, RoleDeveloper, RoleCompanyAdmin, RoleProjectManager, RoleViewer:
		return true
	default:
		return false
	}
}

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}
