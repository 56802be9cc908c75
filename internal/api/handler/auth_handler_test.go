package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

type stubAuthService struct {
	loginFn  func(ctx context.Context, username, password string) (domain.LoginResult, error)
	verifyFn func(ctx context.Context, userID int64, code string) (domain.LoginResult, error)
	resendFn func(ctx context.Context, userID int64) (domain.ActionResult, error)
	forgotFn func(ctx context.Context, email string) (domain.ActionResult, error)
	resetFn  func(ctx context.Context, email, otp, newPassword string) (domain.ActionResult, error)
	signupFn func(ctx context.Context, in ports.SignupInput) (domain.ActionResult, error)
	logoutFn func(ctx context.Context) error
}

func (s *stubAuthService) Login(ctx context.Context, username, password string) (domain.LoginResult, error) {
	return s.loginFn(ctx, username, password)
}

func (s *stubAuthService) VerifyTwoFactor(ctx context.Context, userID int64, code string) (domain.LoginResult, error) {
	return s.verifyFn(ctx, userID, code)
}

func (s *stubAuthService) ResendTwoFactor(ctx context.Context, userID int64) (domain.ActionResult, error) {
	return s.resendFn(ctx, userID)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) (domain.ActionResult, error) {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, email, otp, newPassword string) (domain.ActionResult, error) {
	return s.resetFn(ctx, email, otp, newPassword)
}

func (s *stubAuthService) Signup(ctx context.Context, in ports.SignupInput) (domain.ActionResult, error) {
	return s.signupFn(ctx, in)
}

func (s *stubAuthService) Logout(ctx context.Context) error {
	return s.logoutFn(ctx)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeForm(t *testing.T, rec *httptest.ResponseRecorder) formResponse {
	t.Helper()
	var resp formResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Login_Authenticated(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			if username != "alice" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return domain.LoginResult{
				Kind:     domain.LoginAuthenticated,
				Token:    "tok",
				Identity: &domain.Identity{UserID: 1, Username: "alice", Role: domain.RoleStaff},
			}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodPost, "/login", `{"username":"alice","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	resp := decodeForm(t, rec)
	if !resp.OK || resp.Redirect != "/staff/dashboard" || resp.User == nil || resp.User.Username != "alice" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "tok") {
		t.Fatalf("token leaked into response: %s", rec.Body.String())
	}
}

func TestAuthHandler_Login_Challenge(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			return domain.LoginResult{Kind: domain.LoginChallenge, UserID: 42, Message: "Code sent"}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodPost, "/login", `{"username":"alice","password":"secret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decodeForm(t, rec)
	if rec.Code != http.StatusOK || resp.Kind != domain.LoginChallenge || resp.Redirect != "/verify-2fa?userId=42" {
		t.Fatalf("unexpected response %d %+v", rec.Code, resp)
	}
}

func TestAuthHandler_Login_Rejected(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			return domain.LoginResult{Kind: domain.LoginRejected, Message: "Invalid credentials"}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodPost, "/login", `{"username":"alice","password":"bad"}`)
	_ = h.Login(c)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decodeForm(t, rec); resp.Error != "Invalid credentials" {
		t.Fatalf("unexpected error message %q", resp.Error)
	}
}

func TestAuthHandler_Login_UpstreamError(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			return domain.LoginResult{}, domain.ErrUpstreamUnavailable
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, _ := jsonContext(e, http.MethodPost, "/login", `{"username":"alice","password":"secret"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidPayload(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, username, password string) (domain.LoginResult, error) {
			t.Fatalf("should not be called")
			return domain.LoginResult{}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodPost, "/login", "{")
	_ = h.Login(c)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	c, _ = jsonContext(e, http.MethodPost, "/login", `{"username":"alice"}`)
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Verify_RejectsShortCode(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		verifyFn: func(ctx context.Context, userID int64, code string) (domain.LoginResult, error) {
			t.Fatalf("should not be called")
			return domain.LoginResult{}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, _ := jsonContext(e, http.MethodPost, "/verify-2fa", `{"userId":42,"code":"12a"}`)
	if err := h.VerifyTwoFactor(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Verify_Authenticated(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		verifyFn: func(ctx context.Context, userID int64, code string) (domain.LoginResult, error) {
			if userID != 42 || code != "123456" {
				t.Fatalf("unexpected args: %d %s", userID, code)
			}
			return domain.LoginResult{
				Kind:     domain.LoginAuthenticated,
				Token:    "tok",
				Identity: &domain.Identity{UserID: 42, Username: "root", Role: domain.RoleAdmin},
			}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodPost, "/verify-2fa", `{"userId":42,"code":"123456"}`)
	if err := h.VerifyTwoFactor(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeForm(t, rec); resp.Redirect != "/admin/dashboard" {
		t.Fatalf("unexpected redirect %q", resp.Redirect)
	}
}

func TestAuthHandler_Resend_ReadsQuery(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resendFn: func(ctx context.Context, userID int64) (domain.ActionResult, error) {
			if userID != 42 {
				t.Fatalf("unexpected user %d", userID)
			}
			return domain.ActionResult{OK: true, Message: "Code resent"}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/verify-2fa/resend?userId=42", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ResendTwoFactor(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeForm(t, rec); !resp.OK || resp.Message != "Code resent" {
		t.Fatalf("unexpected payload %+v", resp)
	}
}

func TestAuthHandler_Forgot_RedirectsToReset(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		forgotFn: func(ctx context.Context, email string) (domain.ActionResult, error) {
			return domain.ActionResult{OK: true, Message: "Reset code sent"}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	c, rec := jsonContext(e, http.MethodPost, "/forgot-password", `{"email":"a+b@x.io"}`)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if resp := decodeForm(t, rec); resp.Redirect != "/reset-password?email=a%2Bb%40x.io" {
		t.Fatalf("unexpected redirect %q", resp.Redirect)
	}
}

func TestAuthHandler_Reset_MismatchIsValidationError(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		resetFn: func(ctx context.Context, email, otp, newPassword string) (domain.ActionResult, error) {
			t.Fatalf("should not be called")
			return domain.ActionResult{}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	body := `{"email":"a@x.io","otp":"111111","newPassword":"one","confirmPassword":"two"}`
	c, _ := jsonContext(e, http.MethodPost, "/reset-password", body)
	if err := h.ResetPassword(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAuthHandler_Signup_NotOK(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		signupFn: func(ctx context.Context, in ports.SignupInput) (domain.ActionResult, error) {
			if in.Role != domain.RoleStaff || in.Username != "bob" {
				t.Fatalf("unexpected input %+v", in)
			}
			return domain.ActionResult{OK: false, Message: "Username already taken"}, nil
		},
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	body := `{"username":"bob","email":"b@x.io","password":"p","confirmPassword":"p","role":"STAFF"}`
	c, rec := jsonContext(e, http.MethodPost, "/signup", body)
	if err := h.Signup(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if resp := decodeForm(t, rec); resp.Error != "Username already taken" {
		t.Fatalf("unexpected error %q", resp.Error)
	}
}

func TestAuthHandler_Logout_RedirectsEvenOnStorageError(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context) error { return errors.New("redis down") },
	}
	h := NewAuthHandler(stub, zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()
	if err := h.Logout(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}
