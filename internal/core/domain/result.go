package domain

// LoginKind discriminates the expected outcomes of a login or verification call.
type LoginKind string

const (
	LoginAuthenticated LoginKind = "authenticated"
	LoginChallenge     LoginKind = "challenge"
	LoginRejected      LoginKind = "rejected"
)

// LoginResult is returned by every credential exchange with the backend.
// A wrong password or OTP is LoginRejected, not an error.
type LoginResult struct {
	Kind     LoginKind `json:"kind"`
	Token    string    `json:"-"`
	Identity *Identity `json:"user,omitempty"`
	// UserID identifies the pending 2-step verification when Kind is LoginChallenge.
	UserID  int64  `json:"userId,omitempty"`
	Message string `json:"message,omitempty"`
}

// ActionResult is the outcome of a fire-and-confirm call (resend code,
// password reset, signup).
type ActionResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}
