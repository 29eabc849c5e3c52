package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// Gate classifies the request path and either lets the request through or
// redirects it. It must run after Session.
func Gate(log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			category := domain.ClassifyRoute(req.URL.Path)
			viewer := ViewerFrom(c)
			decision := domain.Decide(category, viewer)

			metrics.AccessDecisionsTotal.WithLabelValues(string(category), string(decision.Outcome)).Inc()
			if decision.Allowed() {
				return next(c)
			}

			target := redirectTarget(decision.Target, req.URL)
			log.Debug().
				Str("path", req.URL.Path).
				Str("category", string(category)).
				Str("state", string(viewer.State())).
				Str("target", target).
				Msg("access redirect")

			return c.Redirect(redirectStatus(req.Method), target)
		}
	}
}

// redirectTarget appends the original location to login redirects so the
// login page can send the user back afterwards.
func redirectTarget(target string, from *url.URL) string {
	if target != domain.PathLogin {
		return target
	}
	back := from.Path
	if from.RawQuery != "" {
		back += "?" + from.RawQuery
	}
	return target + "?" + url.Values{"redirect": {back}}.Encode()
}

// A redirected form POST must be followed with a GET.
func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusFound
	}
	return http.StatusSeeOther
}

// SafeRedirect returns target when it is a local absolute path, fallback
// otherwise.
func SafeRedirect(target, fallback string) string {
	if !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return fallback
	}
	if u, err := url.Parse(target); err != nil || u.Host != "" || u.Scheme != "" {
		return fallback
	}
	return target
}
