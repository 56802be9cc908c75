package domain

import "strings"

// Role is the authorization role the backend assigns to an account.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
	RoleUser  Role = "USER"
)

// ParseRole normalises a role string. Unknown values are returned as-is so
// callers can still see what the server sent.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether r is one of the three roles the portal knows about.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleUser:
		return true
	}
	return false
}

// Identity models the authenticated actor as returned by the backend on
// login or 2-step verification.
type Identity struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	FullName string `json:"fullName,omitempty"`
}

// DisplayName is the name shown in the top bar.
func (i Identity) DisplayName() string {
	if i.FullName != "" {
		return i.FullName
	}
	return i.Username
}
