package ports

import (
	"context"

	"github.com/parksphere/portal/internal/core/domain"
)

// SignupInput carries the account registration form.
type SignupInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
	Phone           string
	Role            domain.Role
}

// AuthService runs the credential flows and keeps the session store in sync
// with their outcome.
type AuthService interface {
	Login(ctx context.Context, username, password string) (domain.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, userID int64, code string) (domain.LoginResult, error)
	ResendTwoFactor(ctx context.Context, userID int64) (domain.ActionResult, error)
	ForgotPassword(ctx context.Context, email string) (domain.ActionResult, error)
	ResetPassword(ctx context.Context, email, otp, newPassword string) (domain.ActionResult, error)
	Signup(ctx context.Context, in SignupInput) (domain.ActionResult, error)
	Logout(ctx context.Context) error
}
