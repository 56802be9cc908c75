package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// SessionWriter is the write side of the session store.
type SessionWriter interface {
	Login(ctx context.Context, token string, id domain.Identity) error
	Logout(ctx context.Context) error
}

// AuthService runs the login, 2-step verification, password reset and
// signup flows against the backend and records successful logins in the
// session store.
type AuthService struct {
	backend  ports.Backend
	sessions SessionWriter
	log      zerolog.Logger
}

func NewAuthService(backend ports.Backend, sessions SessionWriter, log zerolog.Logger) *AuthService {
	return &AuthService{
		backend:  backend,
		sessions: sessions,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return domain.LoginResult{}, domain.ErrInvalidInput
	}

	res, err := s.backend.Login(ctx, username, password)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("login request failed")
		return domain.LoginResult{}, fmt.Errorf("login: %w", err)
	}

	switch res.Kind {
	case domain.LoginChallenge:
		s.log.Info().Int64("user_id", res.UserID).Msg("2-step verification required")
		return res, nil
	case domain.LoginAuthenticated:
		return s.establish(ctx, res), nil
	default:
		return res, nil
	}
}

func (s *AuthService) VerifyTwoFactor(ctx context.Context, userID int64, code string) (domain.LoginResult, error) {
	if userID <= 0 || strings.TrimSpace(code) == "" {
		return domain.LoginResult{}, domain.ErrInvalidInput
	}

	res, err := s.backend.VerifyTwoFactor(ctx, userID, code)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("2fa verification request failed")
		return domain.LoginResult{}, fmt.Errorf("verify 2fa: %w", err)
	}
	if res.Kind != domain.LoginAuthenticated {
		return res, nil
	}
	return s.establish(ctx, res), nil
}

// establish turns an authenticated result into a live session. A result
// missing either half of the session is treated as a rejection.
func (s *AuthService) establish(ctx context.Context, res domain.LoginResult) domain.LoginResult {
	if res.Token == "" || res.Identity == nil {
		s.log.Warn().Msg("backend returned an incomplete authentication response")
		return domain.LoginResult{Kind: domain.LoginRejected, Message: "Invalid response from server"}
	}
	if err := s.sessions.Login(ctx, res.Token, *res.Identity); err != nil {
		// The in-memory session is already live; only persistence failed.
		s.log.Error().Err(err).Msg("session could not be persisted")
	}
	return res
}

func (s *AuthService) ResendTwoFactor(ctx context.Context, userID int64) (domain.ActionResult, error) {
	if userID <= 0 {
		return domain.ActionResult{}, domain.ErrInvalidInput
	}
	res, err := s.backend.ResendTwoFactor(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).Msg("resend 2fa request failed")
		return domain.ActionResult{}, fmt.Errorf("resend 2fa: %w", err)
	}
	return res, nil
}

func (s *AuthService) ForgotPassword(ctx context.Context, email string) (domain.ActionResult, error) {
	if strings.TrimSpace(email) == "" {
		return domain.ActionResult{}, domain.ErrInvalidInput
	}
	res, err := s.backend.ForgotPassword(ctx, email)
	if err != nil {
		s.log.Error().Err(err).Msg("forgot password request failed")
		return domain.ActionResult{}, fmt.Errorf("forgot password: %w", err)
	}
	return res, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) (domain.ActionResult, error) {
	if email == "" || otp == "" || newPassword == "" {
		return domain.ActionResult{}, domain.ErrInvalidInput
	}
	res, err := s.backend.ResetPassword(ctx, email, otp, newPassword)
	if err != nil {
		s.log.Error().Err(err).Msg("reset password request failed")
		return domain.ActionResult{}, fmt.Errorf("reset password: %w", err)
	}
	return res, nil
}

// Signup registers an account. A password/confirmation mismatch is answered
// locally without calling the backend.
func (s *AuthService) Signup(ctx context.Context, in ports.SignupInput) (domain.ActionResult, error) {
	if in.Username == "" || in.Email == "" || in.Password == "" {
		return domain.ActionResult{}, domain.ErrInvalidInput
	}
	if in.Password != in.ConfirmPassword {
		return domain.ActionResult{OK: false, Message: "Passwords do not match"}, nil
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}

	res, err := s.backend.Signup(ctx, ports.SignupRequest{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Phone:    in.Phone,
		Role:     string(role),
	})
	if err != nil {
		s.log.Error().Err(err).Str("username", in.Username).Msg("signup request failed")
		return domain.ActionResult{}, fmt.Errorf("signup: %w", err)
	}
	return res, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.sessions.Logout(ctx)
}
