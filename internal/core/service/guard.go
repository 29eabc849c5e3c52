package service

import (
	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// requireProfile admits any viewer whose role pair was loaded.
func requireProfile(v domain.Viewer) error {
	if !v.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if _, ok := v.Roles(); !ok {
		return domain.ErrForbidden
	}
	return nil
}

// requireAdminMode re-checks the role pair on every admin operation; the
// route gate is not the only line of defence for API calls.
func requireAdminMode(v domain.Viewer) error {
	if !v.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if !v.InAdminMode() {
		return domain.ErrForbidden
	}
	return nil
}

func requireUserMode(v domain.Viewer) error {
	if !v.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	if !v.InUserMode() {
		return domain.ErrForbidden
	}
	return nil
}

func pageBounds(page, limit, defLimit, maxLimit int) (int, int, error) {
	if page < 0 || limit < 0 {
		return 0, 0, domain.InvalidInput("page and limit must be positive")
	}
	if page == 0 {
		page = 1
	}
	if limit == 0 {
		limit = defLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit, nil
}

func paginate(page, limit int, total int64) ports.Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return ports.Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
