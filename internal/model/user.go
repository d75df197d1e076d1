package model

import "time"

// Role is the closed set of user roles as stored by the backend.
// The wire format is the backend's integer enum.
type Role int

const (
	RoleDev     Role = 1
	RoleAnalyst Role = 2
	RoleAdmin   Role = 3
)

// String returns the backend's English label for the role.
func (r Role) String() string {
	switch r {
	case RoleDev:
		return "Developer"
	case RoleAnalyst:
		return "Security Analyst"
	case RoleAdmin:
		return "Administrator"
	default:
		return "Unknown"
	}
}

// Valid reports whether r is one of the three defined roles.
func (r Role) Valid() bool {
	return r >= RoleDev && r <= RoleAdmin
}

// ParseRole maps a CLI argument like "admin" or "analyst" to a Role.
func ParseRole(s string) (Role, bool) {
	switch s {
	case "dev", "developer":
		return RoleDev, true
	case "analyst":
		return RoleAnalyst, true
	case "admin", "administrator":
		return RoleAdmin, true
	}
	return 0, false
}

// UserStatus mirrors the backend's account status enum.
type UserStatus int

const (
	UserStatusActive     UserStatus = 1
	UserStatusDisabled   UserStatus = 2
	UserStatusBanned     UserStatus = 3
	UserStatusSoftDelete UserStatus = 4
)

func (s UserStatus) String() string {
	switch s {
	case UserStatusActive:
		return "Active"
	case UserStatusDisabled:
		return "Disabled"
	case UserStatusBanned:
		return "Banned"
	case UserStatusSoftDelete:
		return "Deleted"
	default:
		return "Unknown"
	}
}

// User is the current-user profile returned by /api/users/me and the
// entries of the admin user listing.
type User struct {
	ID        int        `json:"id"`
	Username  string     `json:"username"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UserBrief is the embedded owner reference carried by scan payloads.
type UserBrief struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
