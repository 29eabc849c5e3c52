package ports

import (
	"context"
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// AnalyticsRepository stores storefront events and aggregates them.
type AnalyticsRepository interface {
	Insert(ctx context.Context, event *domain.AnalyticsEvent) error
	Summarize(ctx context.Context, from, to time.Time, topN int) (*domain.AnalyticsSummary, error)
}
