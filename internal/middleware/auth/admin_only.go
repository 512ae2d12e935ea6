package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"proshop/internal/logging"
)

func (g *Guard) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return g.RequireLogin(func(c echo.Context) error {
		if !IsAdmin(c) {
			l := logging.FromContext(c.Request().Context()).With("mw", "admin_only")
			l.Warn("auth_failed", "status", 403, "reason", "not an admin", "userID", UserID(c))
			return echo.NewHTTPError(http.StatusForbidden, "not authorized as admin")
		}
		return next(c)
	})
}
