package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"proshop/internal/logging"
)

func (g *Guard) RequireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		l := logging.FromContext(c.Request().Context()).With("mw", "require_login")

		raw := extractToken(c)
		if raw == "" {
			l.Warn("auth_failed", "status", 401, "reason", "no token in cookie or header")
			return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, no token")
		}

		id, err := g.Tokens.Verify(raw)
		if err != nil {
			l.Warn("auth_failed", "status", 401, "reason", "token rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "not authorized, token failed")
		}

		setUserContext(c, id)
		return next(c)
	}
}
