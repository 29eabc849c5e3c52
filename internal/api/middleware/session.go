package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// SessionCookie is the cookie carrying the session credential.
const SessionCookie = "session"

// Credential extracts the raw credential from the session cookie, falling
// back to an Authorization bearer token.
func Credential(r *http.Request) string {
	if ck, err := r.Cookie(SessionCookie); err == nil && ck.Value != "" {
		return ck.Value
	}
	parts := strings.SplitN(r.Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Session resolves the viewer once per request and stores it on the
// context. It never rejects a request; gating is left to Gate and the
// Require* guards.
func Session(resolver ports.ViewerResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := resolver.Resolve(c.Request().Context(), Credential(c.Request()))
			SetViewer(c, v)
			return next(c)
		}
	}
}
