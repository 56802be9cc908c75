package domain

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrUserExists          = errors.New("user already exists")
)

// Session is the pair (credential, identity) held by the session store.
// Identity may be nil while Token is set: a token survived a reload but the
// stored profile was missing.
type Session struct {
	Token    string    `json:"-"`
	Identity *Identity `json:"user,omitempty"`
}

// Authenticated is derived from the credential alone.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Role returns the identity's role, or "" when no identity is loaded.
func (s Session) Role() Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}
