package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/middleware"
	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// viewer returns the identity resolved by the session middleware.
func viewer(c echo.Context) domain.Viewer {
	return middleware.ViewerFrom(c)
}

// bind decodes and validates the request body. Both failures render as 400.
func bind(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return domain.InvalidInput("invalid payload")
	}
	return c.Validate(req)
}

// pageQuery reads the optional page and limit query parameters. Bounds are
// checked by the services.
func pageQuery(c echo.Context) (page, limit int, err error) {
	err = echo.QueryParamsBinder(c).
		Int("page", &page).
		Int("limit", &limit).
		BindError()
	if err != nil {
		return 0, 0, domain.InvalidInput("page and limit must be integers")
	}
	return page, limit, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates. Empty yields the
// zero time so services apply their defaults.
func queryTime(c echo.Context, name string) (time.Time, error) {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.InvalidInput("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp", name)
}

// homeFor is where a viewer lands after login or a role switch.
func homeFor(roles domain.RolePair) string {
	if roles.Active() == domain.RoleAdmin {
		return domain.PathAdmin
	}
	return domain.PathAccount
}
