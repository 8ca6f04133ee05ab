package models

// User roles. SUPER_ADMIN is a strict superset of ADMIN; route deletion is
// the one operation gated on SUPER_ADMIN alone.
const (
	RoleDriver     = "DRIVER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPER_ADMIN"
)

// Route lifecycle statuses.
const (
	RoutePending    = "PENDING"
	RouteInProgress = "IN_PROGRESS"
	RouteCompleted  = "COMPLETED"
	RouteCancelled  = "CANCELLED"
)

// Stop delivery statuses.
const (
	StopPending   = "PENDING"
	StopOnTheWay  = "ON_THE_WAY"
	StopArrived   = "ARRIVED"
	StopCompleted = "COMPLETED"
	StopFailed    = "FAILED"
)

// ValidRole reports whether r is one of the three known roles.
func ValidRole(r string) bool {
	switch r {
	case RoleDriver, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
