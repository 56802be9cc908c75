package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/parksphere/portal/internal/core/domain"
)

// ViewHandler renders view models for the public forms and the role
// subtrees, and performs the router's redirects.
type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

type formField struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Label    string   `json:"label"`
	Required bool     `json:"required"`
	Value    string   `json:"value,omitempty"`
	Options  []string `json:"options,omitempty"`
}

type formView struct {
	View   string           `json:"view"`
	Title  string           `json:"title"`
	Submit string           `json:"submit"`
	Fields []formField      `json:"fields"`
	Links  []domain.NavLink `json:"links,omitempty"`
}

type topBar struct {
	DisplayName string      `json:"displayName"`
	Role        domain.Role `json:"role"`
}

type shell struct {
	Sidebar []domain.NavLink `json:"sidebar"`
	TopBar  topBar           `json:"topbar"`
	Search  bool             `json:"search"`
}

// pageView is a page inside a role subtree together with its navigation shell.
type pageView struct {
	View  string `json:"view"`
	Title string `json:"title"`
	Path  string `json:"path"`
	Shell shell  `json:"shell"`
}

// Login renders the login form.
//
// @Summary      Login form
// @Tags         views
// @Produce      json
// @Success      200  {object}  formView
// @Router       /login [get]
func (h *ViewHandler) Login(c echo.Context) error {
	return c.JSON(http.StatusOK, formView{
		View:   "login",
		Title:  "Sign in to ParkSphere",
		Submit: domain.PathLogin,
		Fields: []formField{
			{Name: "username", Type: "text", Label: "Username", Required: true},
			{Name: "password", Type: "password", Label: "Password", Required: true},
		},
		Links: []domain.NavLink{
			{Label: "Forgot password?", Path: domain.PathForgotPassword},
			{Label: "Create an account", Path: domain.PathSignup},
		},
	})
}

// Signup renders the registration form.
//
// @Summary      Signup form
// @Tags         views
// @Produce      json
// @Success      200  {object}  formView
// @Router       /signup [get]
func (h *ViewHandler) Signup(c echo.Context) error {
	return c.JSON(http.StatusOK, formView{
		View:   "signup",
		Title:  "Create your account",
		Submit: domain.PathSignup,
		Fields: []formField{
			{Name: "username", Type: "text", Label: "Username", Required: true},
			{Name: "email", Type: "email", Label: "Email", Required: true},
			{Name: "phone", Type: "tel", Label: "Phone"},
			{Name: "password", Type: "password", Label: "Password", Required: true},
			{Name: "confirmPassword", Type: "password", Label: "Confirm password", Required: true},
			{Name: "role", Type: "select", Label: "Role", Value: string(domain.RoleUser),
				Options: []string{string(domain.RoleUser), string(domain.RoleStaff), string(domain.RoleAdmin)}},
		},
		Links: []domain.NavLink{{Label: "Already have an account?", Path: domain.PathLogin}},
	})
}

// ForgotPassword renders the reset request form.
//
// @Summary      Forgot password form
// @Tags         views
// @Produce      json
// @Success      200  {object}  formView
// @Router       /forgot-password [get]
func (h *ViewHandler) ForgotPassword(c echo.Context) error {
	return c.JSON(http.StatusOK, formView{
		View:   "forgot-password",
		Title:  "Forgot your password?",
		Submit: domain.PathForgotPassword,
		Fields: []formField{
			{Name: "email", Type: "email", Label: "Email", Required: true},
		},
		Links: []domain.NavLink{{Label: "Back to login", Path: domain.PathLogin}},
	})
}

// ResetPassword renders the new-password form, prefilled from ?email=.
//
// @Summary      Reset password form
// @Tags         views
// @Produce      json
// @Param        email  query     string  false  "Account email"
// @Success      200    {object}  formView
// @Router       /reset-password [get]
func (h *ViewHandler) ResetPassword(c echo.Context) error {
	return c.JSON(http.StatusOK, formView{
		View:   "reset-password",
		Title:  "Reset your password",
		Submit: domain.PathResetPassword,
		Fields: []formField{
			{Name: "email", Type: "email", Label: "Email", Required: true, Value: c.QueryParam("email")},
			{Name: "otp", Type: "text", Label: "Reset code", Required: true},
			{Name: "newPassword", Type: "password", Label: "New password", Required: true},
			{Name: "confirmPassword", Type: "password", Label: "Confirm password", Required: true},
		},
		Links: []domain.NavLink{{Label: "Back to login", Path: domain.PathLogin}},
	})
}

// VerifyTwoFactor renders the code entry form for a pending ?userId=.
//
// @Summary      2-step verification form
// @Tags         views
// @Produce      json
// @Param        userId  query     int  true  "Pending user"
// @Success      200     {object}  formView
// @Router       /verify-2fa [get]
func (h *ViewHandler) VerifyTwoFactor(c echo.Context) error {
	userID := c.QueryParam("userId")
	if userID == "" {
		return c.Redirect(http.StatusFound, domain.PathLogin)
	}
	return c.JSON(http.StatusOK, formView{
		View:   "verify-2fa",
		Title:  "Enter your verification code",
		Submit: domain.PathVerify2FA,
		Fields: []formField{
			{Name: "userId", Type: "hidden", Value: userID, Required: true},
			{Name: "code", Type: "text", Label: "6-digit code", Required: true},
		},
		Links: []domain.NavLink{
			{Label: "Resend code", Path: domain.PathVerify2FA + "/resend?userId=" + userID},
			{Label: "Back to login", Path: domain.PathLogin},
		},
	})
}

// Root sends an authenticated session to its role's dashboard.
//
// @Summary      Role dispatch
// @Tags         views
// @Success      302
// @Router       / [get]
func (h *ViewHandler) Root(c echo.Context) error {
	s, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, domain.DefaultRouteFor(s.Role()))
}

// Subtree renders the pages of one role. Unknown paths inside the subtree
// land on its dashboard.
func (h *ViewHandler) Subtree(capability domain.Capability) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := ctxSession(c)
		if err != nil {
			return err
		}

		slug := strings.Trim(c.Param("*"), "/")
		page, ok := capability.Page(slug)
		if !ok || c.Request().Method != http.MethodGet {
			return c.Redirect(http.StatusFound, capability.DefaultRoute())
		}

		bar := topBar{Role: s.Role()}
		if s.Identity != nil {
			bar.DisplayName = s.Identity.DisplayName()
		}
		return c.JSON(http.StatusOK, pageView{
			View:  page.Slug,
			Title: page.Title,
			Path:  capability.PagePath(page.Slug),
			Shell: shell{
				Sidebar: capability.Sidebar,
				TopBar:  bar,
				Search:  capability.Search != domain.SearchNone,
			},
		})
	}
}

// CatchAll sends any unknown path to the login view, whatever the session.
func (h *ViewHandler) CatchAll(c echo.Context) error {
	return c.Redirect(http.StatusFound, domain.PathLogin)
}
