package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

const viewerKey = "viewer"

// SetViewer stores the resolved viewer on the request context.
func SetViewer(c echo.Context, v domain.Viewer) {
	c.Set(viewerKey, v)
}

// ViewerFrom returns the viewer resolved by Session, or an anonymous viewer
// when the middleware did not run.
func ViewerFrom(c echo.Context) domain.Viewer {
	if v, ok := c.Get(viewerKey).(domain.Viewer); ok {
		return v
	}
	return domain.Anonymous()
}
