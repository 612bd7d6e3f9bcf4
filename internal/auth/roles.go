package auth

import "errors"

// Role is a dashboard user role.
type Role string

const (
	// RoleViewer reads dashboards and reports.
	RoleViewer Role = "viewer"
	// RoleAnalyst runs ad-hoc calculations.
	RoleAnalyst Role = "analyst"
	// RoleAdmin generates, freezes and exports reports.
	RoleAdmin Role = "admin"
)

var (
	// ErrTenantMismatch indicates the resource belongs to a different tenant.
	ErrTenantMismatch = errors.New("auth: tenant mismatch")
	// ErrNotFound indicates the resource does not exist.
	ErrNotFound = errors.New("auth: resource not found")
)

// NormalizeRole validates a role claim.
func NormalizeRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleViewer, RoleAnalyst, RoleAdmin:
		return Role(value), true
	default:
		return "", false
	}
}

// RoleAtLeast returns true when role satisfies required.
func RoleAtLeast(role, required Role) bool {
	return roleRank(role) >= roleRank(required)
}

func roleRank(role Role) int {
	switch role {
	case RoleViewer:
		return 1
	case RoleAnalyst:
		return 2
	case RoleAdmin:
		return 3
	default:
		return 0
	}
}
