package auth

import (
	"strings"

	"github.com/labstack/echo/v4"

	"proshop/internal/service"
)

const CookieName = "jwt"

// Guard resolves the request credential and annotates the echo context with
// the caller's identity.
type Guard struct {
	Tokens *service.TokenService
}

// extractToken looks in the jwt cookie first, then the Authorization header.
func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(CookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func setUserContext(c echo.Context, id *service.Identity) {
	c.Set("userID", id.UserID)
	c.Set("isAdmin", id.IsAdmin)
}

func UserID(c echo.Context) string {
	if v, ok := c.Get("userID").(string); ok {
		return v
	}
	return ""
}

func IsAdmin(c echo.Context) bool {
	if v, ok := c.Get("isAdmin").(bool); ok {
		return v
	}
	return false
}
