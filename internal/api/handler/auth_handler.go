package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/api/metrics"
	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, log: log}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type verifyRequest struct {
	UserID int64  `json:"userId" validate:"required,gt=0"`
	Code   string `json:"code"   validate:"required,len=6,numeric"`
}

type resendRequest struct {
	UserID int64 `json:"userId" query:"userId" validate:"required,gt=0"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" query:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"           validate:"required,email"`
	OTP             string `json:"otp"             validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type signupRequest struct {
	Username        string `json:"username"        validate:"required"`
	Email           string `json:"email"           validate:"required,email"`
	Password        string `json:"password"        validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
	Phone           string `json:"phone"`
	Role            string `json:"role"            validate:"omitempty,oneof=ADMIN STAFF USER"`
}

// formResponse is the outcome of a submitted form. Redirect tells the shell
// which view to show next.
type formResponse struct {
	OK       bool             `json:"ok"`
	Kind     domain.LoginKind `json:"kind,omitempty"`
	Message  string           `json:"message,omitempty"`
	Error    string           `json:"error,omitempty"`
	UserID   int64            `json:"userId,omitempty"`
	User     *domain.Identity `json:"user,omitempty"`
	Redirect string           `json:"redirect,omitempty"`
}

// Login submits the login form.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  formResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  formResponse
// @Failure      502   {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("login", "error").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("login", string(res.Kind)).Inc()
	return loginOutcome(c, res)
}

// VerifyTwoFactor submits the 6-digit verification code.
//
// @Summary      Verify 2-step code
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      verifyRequest  true  "Pending user and code"
// @Success      200   {object}  formResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  formResponse
// @Router       /verify-2fa [post]
func (h *AuthHandler) VerifyTwoFactor(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.VerifyTwoFactor(c.Request().Context(), req.UserID, req.Code)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("verify_2fa", "error").Inc()
		return err
	}
	metrics.LoginsTotal.WithLabelValues("verify_2fa", string(res.Kind)).Inc()
	return loginOutcome(c, res)
}

func loginOutcome(c echo.Context, res domain.LoginResult) error {
	switch res.Kind {
	case domain.LoginAuthenticated:
		role := domain.Role("")
		if res.Identity != nil {
			role = res.Identity.Role
		}
		return c.JSON(http.StatusOK, formResponse{
			OK:       true,
			Kind:     res.Kind,
			User:     res.Identity,
			Redirect: domain.DefaultRouteFor(role),
		})
	case domain.LoginChallenge:
		return c.JSON(http.StatusOK, formResponse{
			OK:       true,
			Kind:     res.Kind,
			UserID:   res.UserID,
			Message:  res.Message,
			Redirect: fmt.Sprintf("%s?userId=%d", domain.PathVerify2FA, res.UserID),
		})
	default:
		return c.JSON(http.StatusUnauthorized, formResponse{Kind: domain.LoginRejected, Error: res.Message})
	}
}

// ResendTwoFactor asks the backend for a fresh verification code.
//
// @Summary      Resend 2-step code
// @Tags         auth
// @Produce      json
// @Param        userId  query     int  true  "Pending user"
// @Success      200     {object}  formResponse
// @Failure      400     {object}  formResponse
// @Router       /verify-2fa/resend [post]
func (h *AuthHandler) ResendTwoFactor(c echo.Context) error {
	var req resendRequest
	if err := bindQueryAndBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.ResendTwoFactor(c.Request().Context(), req.UserID)
	if err != nil {
		return err
	}
	return actionOutcome(c, res, "")
}

// ForgotPassword requests a password reset code by email.
//
// @Summary      Forgot password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  formResponse
// @Failure      400   {object}  formResponse
// @Router       /forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := bindQueryAndBody(c, &req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.ForgotPassword(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}
	next := domain.PathResetPassword + "?" + url.Values{"email": {req.Email}}.Encode()
	return actionOutcome(c, res, next)
}

// ResetPassword sets a new password using the emailed code.
//
// @Summary      Reset password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      resetPasswordRequest  true  "Email, code and new password"
// @Success      200   {object}  formResponse
// @Failure      400   {object}  formResponse
// @Router       /reset-password [post]
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.ResetPassword(c.Request().Context(), req.Email, req.OTP, req.NewPassword)
	if err != nil {
		return err
	}
	return actionOutcome(c, res, domain.PathLogin)
}

// Signup registers a new account.
//
// @Summary      Sign up
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      signupRequest  true  "Account details"
// @Success      200   {object}  formResponse
// @Failure      400   {object}  formResponse
// @Router       /signup [post]
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Signup(c.Request().Context(), ports.SignupInput{
		Username:        req.Username,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Phone:           req.Phone,
		Role:            domain.ParseRole(req.Role),
	})
	if err != nil {
		return err
	}
	return actionOutcome(c, res, domain.PathLogin)
}

// Logout ends the session.
//
// @Summary      Logout
// @Tags         auth
// @Success      302
// @Router       /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context()); err != nil {
		// The in-memory session is gone; only storage cleanup failed.
		h.log.Error().Err(err).Msg("session storage was not cleared")
	}
	return c.Redirect(http.StatusFound, domain.PathLogin)
}

// bindQueryAndBody accepts the fields from either the query string or a JSON
// body. echo only binds query parameters for GET, DELETE and HEAD.
func bindQueryAndBody(c echo.Context, req any) error {
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, req); err != nil {
		return err
	}
	return c.Bind(req)
}

func actionOutcome(c echo.Context, res domain.ActionResult, next string) error {
	if !res.OK {
		return c.JSON(http.StatusBadRequest, formResponse{Error: res.Message})
	}
	return c.JSON(http.StatusOK, formResponse{OK: true, Message: res.Message, Redirect: next})
}
