package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/parksphere/portal/internal/api/metrics"
	"github.com/parksphere/portal/internal/core/domain"
	"github.com/parksphere/portal/internal/core/ports"
	"github.com/parksphere/portal/internal/core/service"
)

// CtxSession holds the domain.Session a guarded handler runs with.
const CtxSession = "session"

// loadingView is rendered while the session store is still hydrating.
type loadingView struct {
	View string `json:"view"`
}

// Guard gates a protected view on the session store. subtree only labels
// metrics. With no roles any authenticated session passes.
func Guard(sessions ports.SessionReader, subtree string, roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := sessions.Snapshot()
			d := service.Guard(sessions.Hydrated(), s, roles...)
			metrics.GuardDecisionsTotal.WithLabelValues(subtree, string(d.Outcome)).Inc()

			switch d.Outcome {
			case domain.GuardLoading:
				return c.JSON(http.StatusOK, loadingView{View: "loading"})
			case domain.GuardRedirectLogin, domain.GuardRedirectRoot:
				return c.Redirect(http.StatusFound, d.Location)
			}

			c.Set(CtxSession, s)
			return next(c)
		}
	}
}
