package domain

// =============================================================================
// Roles
// =============================================================================

// Role is a user's system role. Roles form a ladder: user < moderator <
// senior < owner < admin. Admin passes every role check in the system.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleSenior    Role = "senior"
	RoleOwner     Role = "owner"
	RoleAdmin     Role = "admin"
)

// ParseRole maps a stored role string to a Role, defaulting to RoleUser.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleModerator, RoleSenior, RoleOwner, RoleAdmin:
		return Role(s)
	default:
		return RoleUser
	}
}

// IsManager reports whether the role may drive review-workflow transitions.
func (r Role) IsManager() bool {
	switch r {
	case RoleModerator, RoleSenior, RoleOwner, RoleAdmin:
		return true
	}
	return false
}

// IsElevated reports whether the role may perform destructive operations
// such as cancelling contracts and linked requests.
func (r Role) IsElevated() bool {
	return r == RoleOwner || r == RoleAdmin
}

// =============================================================================
// User
// =============================================================================

// User is a system account. PasswordHash is a bcrypt hash; it is only
// consulted when an operation requires the password to be re-entered.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	PasswordHash string `json:"-"`
}
