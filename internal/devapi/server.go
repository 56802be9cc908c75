package devapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/parksphere/portal/internal/api/handler"
	"github.com/parksphere/portal/internal/api/middleware"
	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// Options configures a Server. Zero values select production defaults.
type Options struct {
	JWTSecret string
	TokenTTL  time.Duration
	// BcryptCost lowers hashing cost in tests.
	BcryptCost int
	// Now and Code fix the clock and one-time codes in tests.
	Now  func() time.Time
	Code func() string
}

// Server is the stand-in backend.
type Server struct {
	e      *echo.Echo
	dir    *Directory
	lot    *Lot
	hub    *Hub
	tokens tokenIssuer
	log    zerolog.Logger
}

// New seeds the backend and registers its routes.
func New(opts Options, log zerolog.Logger) (*Server, error) {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}

	s := &Server{
		dir:    newDirectory(opts.BcryptCost, opts.Now, opts.Code),
		lot:    newLot(),
		hub:    newHub(log),
		tokens: tokenIssuer{secret: []byte(opts.JWTSecret), ttl: opts.TokenTTL, now: time.Now},
		log:    log,
	}
	s.lot.onChange = s.hub.Broadcast

	if err := seed(s.dir, s.lot); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())

	e.POST("/auth/login", s.login)
	e.POST("/auth/verify-2fa", s.verifyTwoFactor)
	e.POST("/auth/resend-2fa", s.resendTwoFactor)
	e.POST("/auth/forgot-password", s.forgotPassword)
	e.POST("/auth/reset-password", s.resetPassword)
	e.POST("/auth/signup", s.signup)

	authMiddleware := middleware.Auth(opts.JWTSecret)
	e.GET("/admin/search/global", s.searchGlobal, authMiddleware, middleware.RBAC(domain.RoleAdmin))
	e.GET("/staff/spots/search", s.searchSpots, authMiddleware, middleware.RBAC(domain.RoleStaff))
	e.GET("/users/search", s.searchAccount, authMiddleware, middleware.RBAC(domain.RoleUser))

	e.GET("/ws", s.push, authMiddleware)

	s.e = e
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.e }

// Start serves on addr until Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.e.Shutdown(ctx)
}

// RunFeed changes a random spot every interval until ctx is done.
func (s *Server) RunFeed(ctx context.Context, interval time.Duration) {
	runFeed(ctx, s.lot, interval)
}

// SetSpotStatus changes a spot and broadcasts the update.
func (s *Server) SetSpotStatus(spotID int64, status domain.SpotStatus) bool {
	return s.lot.SetStatus(spotID, status)
}

// PushClients is the number of connected push clients.
func (s *Server) PushClients() int {
	return s.hub.Clients()
}

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

type authBody struct {
	Token string           `json:"token"`
	User  *domain.Identity `json:"user"`
}

type challengeBody struct {
	Require2FA bool   `json:"require2FA"`
	UserID     int64  `json:"userId"`
	Message    string `json:"message"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Username and password are required"})
	}

	acc, err := s.dir.Authenticate(req.Username, req.Password)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "Invalid credentials"})
	}

	if acc.TwoFactor {
		code, err := s.dir.IssueTwoFactor(acc.ID)
		if err != nil {
			return err
		}
		s.log.Info().Int64("user_id", acc.ID).Str("code", code).Msg("2-step verification code issued")
		return c.JSON(http.StatusOK, challengeBody{
			Require2FA: true,
			UserID:     acc.ID,
			Message:    "Verification code sent to " + acc.Email,
		})
	}
	return s.authenticated(c, acc)
}

type verifyRequest struct {
	UserID int64  `json:"userId" validate:"required"`
	Code   string `json:"code"   validate:"required"`
}

func (s *Server) verifyTwoFactor(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "userId and code are required"})
	}

	acc, err := s.dir.VerifyTwoFactor(req.UserID, req.Code)
	switch {
	case errors.Is(err, errCodeExpired):
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Verification code expired"})
	case err != nil:
		return c.JSON(http.StatusUnauthorized, errorBody{Error: "Invalid verification code"})
	}
	return s.authenticated(c, acc)
}

func (s *Server) authenticated(c echo.Context, acc *Account) error {
	token, err := s.tokens.issue(acc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authBody{Token: token, User: acc.identity()})
}

type resendRequest struct {
	UserID int64 `query:"userId"`
}

func (s *Server) resendTwoFactor(c echo.Context) error {
	var req resendRequest
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil || req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "userId is required"})
	}

	code, err := s.dir.IssueTwoFactor(req.UserID)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: "User not found"})
	}
	s.log.Info().Int64("user_id", req.UserID).Str("code", code).Msg("2-step verification code reissued")
	return c.JSON(http.StatusOK, messageBody{Message: "Verification code resent"})
}

func (s *Server) forgotPassword(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "email is required"})
	}

	code, err := s.dir.IssueReset(email)
	if err != nil {
		return c.JSON(http.StatusNotFound, errorBody{Error: "User not found"})
	}
	s.log.Info().Str("email", email).Str("code", code).Msg("password reset code issued")
	return c.JSON(http.StatusOK, messageBody{Message: "Reset code sent to " + email})
}

type resetRequest struct {
	Email       string `json:"email"       validate:"required,email"`
	OTP         string `json:"otp"         validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

func (s *Server) resetPassword(c echo.Context) error {
	var req resetRequest
	if err := c.Bind(&req); err != nil || c.Validate(&req) != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "email, otp and newPassword are required"})
	}

	switch err := s.dir.ResetPassword(req.Email, req.OTP, req.NewPassword); {
	case errors.Is(err, errCodeExpired):
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Reset code expired"})
	case errors.Is(err, errCodeInvalid), errors.Is(err, domain.ErrUserNotFound):
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Invalid reset code"})
	case err != nil:
		return err
	}
	return c.JSON(http.StatusOK, messageBody{Message: "Password reset successfully"})
}

type signupRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone"`
	Role     string `json:"role"`
}

func (s *Server) signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: err.Error()})
	}

	role := domain.ParseRole(req.Role)
	if !role.Valid() {
		role = domain.RoleUser
	}

	_, err := s.dir.Register(req.Username, req.Email, req.Phone, req.Password, role, false)
	switch {
	case errors.Is(err, errUsernameTaken):
		return c.JSON(http.StatusConflict, errorBody{Error: "Username already taken"})
	case errors.Is(err, errEmailTaken):
		return c.JSON(http.StatusConflict, errorBody{Error: "Email already registered"})
	case err != nil:
		return err
	}
	return c.JSON(http.StatusCreated, messageBody{Message: "Account created"})
}

func (s *Server) searchGlobal(c echo.Context) error {
	q := c.QueryParam("q")
	users := []ports.UserItem{}
	for _, a := range s.dir.Accounts() {
		if contains(q, a.Username, a.Email) {
			users = append(users, ports.UserItem{UserID: a.ID, Username: a.Username, Email: a.Email, Role: string(a.Role)})
		}
	}
	return c.JSON(http.StatusOK, ports.GlobalSearchResponse{
		Users:        users,
		Spots:        s.lot.SearchSpots(q),
		Reservations: s.lot.SearchReservations(q, 0),
	})
}

func (s *Server) searchSpots(c echo.Context) error {
	return c.JSON(http.StatusOK, s.lot.SearchSpots(c.QueryParam("q")))
}

func (s *Server) searchAccount(c echo.Context) error {
	q := c.QueryParam("q")
	userID, _ := c.Get(middleware.CtxUserID).(int64)
	return c.JSON(http.StatusOK, ports.AccountSearchResponse{
		Vehicles:      s.lot.SearchVehicles(q, userID),
		Reservations:  s.lot.SearchReservations(q, userID),
		FavoriteSpots: s.lot.SearchFavorites(q, userID),
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

func (s *Server) push(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		s.log.Warn().Err(err).Msg("push upgrade failed")
		return nil
	}
	userID, _ := c.Get(middleware.CtxUserID).(int64)
	s.hub.register(conn, userID)
	return nil
}
