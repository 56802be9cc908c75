package api

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/parksphere/portal/internal/api/handler"
	"github.com/parksphere/portal/internal/api/middleware"
	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
)

// Deps is everything the portal routes are served from.
type Deps struct {
	Sessions ports.SessionReader
	Auth     ports.AuthService
	Search   ports.SearchPanel
	Live     ports.LiveFeed
	// Pingers are checked by the readiness probe, keyed by name.
	Pingers map[string]handler.Pinger
	Log     zerolog.Logger
	// Registry receives the HTTP metrics; nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	e.Use(prometheusMiddleware(d.Registry))

	// --- Ops ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Pingers, d.Sessions.Hydrated)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", metricsHandler(d.Registry))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// --- Public views ---
	views := handler.NewViewHandler()
	authHandler := handler.NewAuthHandler(d.Auth, d.Log)

	e.GET(domain.PathLogin, views.Login)
	e.POST(domain.PathLogin, authHandler.Login)
	e.GET(domain.PathSignup, views.Signup)
	e.POST(domain.PathSignup, authHandler.Signup)
	e.GET(domain.PathForgotPassword, views.ForgotPassword)
	e.POST(domain.PathForgotPassword, authHandler.ForgotPassword)
	e.GET(domain.PathResetPassword, views.ResetPassword)
	e.POST(domain.PathResetPassword, authHandler.ResetPassword)
	e.GET(domain.PathVerify2FA, views.VerifyTwoFactor)
	e.POST(domain.PathVerify2FA, authHandler.VerifyTwoFactor)
	e.POST(domain.PathVerify2FA+"/resend", authHandler.ResendTwoFactor)
	e.POST("/logout", authHandler.Logout)

	// --- Protected views ---
	e.GET(domain.PathRoot, views.Root, middleware.Guard(d.Sessions, "root"))

	for _, capability := range domain.Capabilities() {
		guard := middleware.Guard(d.Sessions, strings.TrimPrefix(capability.Prefix, "/"), capability.Role)
		subtree := views.Subtree(capability)
		e.Any(capability.Prefix, subtree, guard)
		e.Any(capability.Prefix+"/*", subtree, guard)
	}

	// --- Search panel and live channel ---
	searchHandler := handler.NewSearchHandler(d.Search)
	searchGuard := middleware.Guard(d.Sessions, "search")
	e.GET("/search/panel", searchHandler.State, searchGuard)
	e.POST("/search/panel/open", searchHandler.Open, searchGuard)
	e.POST("/search/panel/close", searchHandler.Close, searchGuard)
	e.POST("/search/panel/query", searchHandler.Query, searchGuard)
	e.POST("/search/panel/key", searchHandler.Key, searchGuard)

	liveHandler := handler.NewLiveHandler(d.Live)
	liveGuard := middleware.Guard(d.Sessions, "live")
	e.GET("/live", liveHandler.Status, liveGuard)
	e.POST("/live/send", liveHandler.Send, liveGuard)

	// Anything else lands on the login view.
	e.RouteNotFound("/*", views.CatchAll)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

func prometheusMiddleware(reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{
		Subsystem: "portal",
		Skipper: func(c echo.Context) bool {
			p := c.Path()
			return p == "/metrics" || strings.HasPrefix(p, "/health")
		},
	}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

func metricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
