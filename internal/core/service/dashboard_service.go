package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const dashboardRecentNotifications = 5

// DashboardService assembles the /admin landing page.
type DashboardService struct {
	notifications ports.NotificationRepository
	products      ports.ProductRepository
	orders        ports.OrderRepository
	analytics     ports.AnalyticsRepository
	threshold     int
	log           zerolog.Logger
}

func NewDashboardService(
	notifications ports.NotificationRepository,
	products ports.ProductRepository,
	orders ports.OrderRepository,
	analytics ports.AnalyticsRepository,
	lowStockThreshold int,
	log zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		notifications: notifications,
		products:      products,
		orders:        orders,
		analytics:     analytics,
		threshold:     lowStockThreshold,
		log:           log,
	}
}

func (s *DashboardService) Overview(ctx context.Context, viewer domain.Viewer) (*ports.DashboardOverview, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	out := &ports.DashboardOverview{}

	var err error
	if out.UnreadNotifications, err = s.notifications.CountUnread(ctx); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if out.RecentNotifications, err = s.notifications.List(ctx, ports.NotificationFilter{Limit: dashboardRecentNotifications}); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if out.OrdersToShip, err = s.orders.CountByStatus(ctx, domain.OrderPaid); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	if out.PendingOrders, err = s.orders.CountByStatus(ctx, domain.OrderPending); err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}

	products, err := s.products.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("dashboard: %w", err)
	}
	for _, p := range products {
		if p.IsLowStock(s.threshold) {
			out.LowStockCount++
		}
	}

	// Analytics live in a separate store; the dashboard still renders without them.
	to := time.Now().UTC()
	summary, err := s.analytics.Summarize(ctx, to.Add(-24*time.Hour), to, 0)
	if err != nil {
		s.log.Warn().Err(err).Msg("dashboard analytics unavailable")
	} else {
		out.EventsLast24h = summary.Total
	}
	return out, nil
}
