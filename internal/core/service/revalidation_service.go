package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const maxRevalidateTags = 50

// RevalidationService purges catalog cache entries by tag. Callers prove
// themselves with the shared secret or an admin-mode session.
type RevalidationService struct {
	cache  ports.CatalogCache
	secret string
	log    zerolog.Logger
}

func NewRevalidationService(cache ports.CatalogCache, secret string, log zerolog.Logger) *RevalidationService {
	return &RevalidationService{cache: cache, secret: secret, log: log}
}

func (s *RevalidationService) Revalidate(ctx context.Context, viewer domain.Viewer, secret string, tags []string) (*ports.RevalidateResult, error) {
	if err := s.authorize(viewer, secret); err != nil {
		return nil, err
	}

	clean := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		clean = append(clean, t)
	}
	if len(clean) == 0 {
		return nil, domain.InvalidInput("tags must contain at least one non-empty tag")
	}
	if len(clean) > maxRevalidateTags {
		return nil, domain.InvalidInput("at most %d tags per request", maxRevalidateTags)
	}

	purged, err := s.cache.InvalidateTags(ctx, clean...)
	if err != nil {
		return nil, fmt.Errorf("revalidate: %w: %v", domain.ErrUpstream, err)
	}
	s.log.Info().Strs("tags", clean).Int64("purged", purged).Msg("catalog revalidated")
	return &ports.RevalidateResult{Tags: clean, Purged: purged}, nil
}

func (s *RevalidationService) authorize(viewer domain.Viewer, secret string) error {
	if secret != "" && s.secret != "" && subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) == 1 {
		return nil
	}
	if viewer.InAdminMode() {
		return nil
	}
	if secret != "" || !viewer.IsAuthenticated() {
		return domain.ErrUnauthenticated
	}
	return domain.ErrForbidden
}
