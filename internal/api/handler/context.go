package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/parksphere/portal/internal/api/middleware"
	"github.com/parksphere/portal/internal/core/domain"
)

// ctxSession returns the session injected by the Guard middleware. Its
// absence means the route was mounted without a guard.
func ctxSession(c echo.Context) (domain.Session, error) {
	s, ok := c.Get(middleware.CtxSession).(domain.Session)
	if !ok || !s.Authenticated() {
		return domain.Session{}, domain.ErrNotAuthenticated
	}
	return s, nil
}
