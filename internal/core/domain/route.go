package domain

import "strings"

// RouteCategory is the access-control class of a request path.
type RouteCategory string

const (
	RoutePublic    RouteCategory = "public"
	RouteUserArea  RouteCategory = "user-area"
	RouteAdminArea RouteCategory = "admin-area"
	RouteAuthArea  RouteCategory = "auth-area"
)

const (
	PathLogin    = "/connexion"
	PathRegister = "/inscription"
	PathAccount  = "/compte"
	PathAdmin    = "/admin"
)

// ClassifyRoute maps every path to exactly one category. First match wins.
func ClassifyRoute(path string) RouteCategory {
	switch {
	case strings.HasPrefix(path, PathAdmin):
		return RouteAdminArea
	case strings.HasPrefix(path, PathAccount):
		return RouteUserArea
	case path == PathLogin || path == PathRegister:
		return RouteAuthArea
	default:
		return RoutePublic
	}
}
