package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// The guards below protect /api routes, which the gate treats as public.
// They return domain errors so the central error handler renders them.

// RequireAuthenticated rejects anonymous callers with 401.
func RequireAuthenticated() echo.MiddlewareFunc {
	return guard(func(v domain.Viewer) error {
		if !v.IsAuthenticated() {
			return domain.ErrUnauthenticated
		}
		return nil
	})
}

// RequireAdminMode needs a granted admin currently operating as admin.
func RequireAdminMode() echo.MiddlewareFunc {
	return guard(func(v domain.Viewer) error {
		if !v.IsAuthenticated() {
			return domain.ErrUnauthenticated
		}
		if !v.InAdminMode() {
			return domain.ErrForbidden
		}
		return nil
	})
}

// RequireUserMode needs a loaded profile whose active role is user.
func RequireUserMode() echo.MiddlewareFunc {
	return guard(func(v domain.Viewer) error {
		if !v.IsAuthenticated() {
			return domain.ErrUnauthenticated
		}
		if !v.InUserMode() {
			return domain.ErrForbidden
		}
		return nil
	})
}

func guard(check func(domain.Viewer) error) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := check(ViewerFrom(c)); err != nil {
				return err
			}
			return next(c)
		}
	}
}
