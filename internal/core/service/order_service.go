package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const (
	defaultOrderLimit = 20
	maxOrderLimit     = 100
)

type OrderService struct {
	orders ports.OrderRepository
	log    zerolog.Logger
}

func NewOrderService(orders ports.OrderRepository, log zerolog.Logger) *OrderService {
	return &OrderService{orders: orders, log: log}
}

// List returns every customer's orders for the back office.
func (s *OrderService) List(ctx context.Context, viewer domain.Viewer, q ports.OrderQuery) (*ports.OrderPage, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	return s.list(ctx, "", q)
}

// History returns the viewer's own orders.
func (s *OrderService) History(ctx context.Context, viewer domain.Viewer, q ports.OrderQuery) (*ports.OrderPage, error) {
	if err := requireProfile(viewer); err != nil {
		return nil, err
	}
	return s.list(ctx, viewer.UserID, q)
}

func (s *OrderService) list(ctx context.Context, userID string, q ports.OrderQuery) (*ports.OrderPage, error) {
	filter := ports.OrderFilter{UserID: userID}
	if q.Status != "" {
		st, err := domain.ParseOrderStatus(q.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = st
	}
	page, limit, err := pageBounds(q.Page, q.Limit, defaultOrderLimit, maxOrderLimit)
	if err != nil {
		return nil, err
	}
	filter.Page, filter.Limit = page, limit

	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return &ports.OrderPage{Data: orders, Pagination: paginate(page, limit, total)}, nil
}

func (s *OrderService) UpdateStatus(ctx context.Context, viewer domain.Viewer, id, status string) (*domain.Order, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	next, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, order.Status, next)
	}

	now := time.Now().UTC()
	if err := s.orders.TransitionStatus(ctx, order.ID, order.Status, next, now); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	s.log.Info().Str("order_id", order.ID).Str("from", string(order.Status)).Str("to", string(next)).Msg("order status changed")

	order.Status = next
	order.UpdatedAt = now
	return order, nil
}
