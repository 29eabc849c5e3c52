package ports

import (
	"context"
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// OrderFilter carries the admin order listing query.
type OrderFilter struct {
	UserID string // empty = every customer
	Status domain.OrderStatus
	Page   int
	Limit  int
}

// OrderRepository defines persistence operations for the commandes table.
type OrderRepository interface {
	Create(ctx context.Context, o *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	FindByCheckoutSession(ctx context.Context, sessionID string) (*domain.Order, error)
	CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error)
	List(ctx context.Context, filter OrderFilter) ([]domain.Order, int64, error)
	// TransitionStatus moves the order from one status to another only if it
	// is still in from; otherwise it returns domain.ErrOrderStatusChanged.
	TransitionStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error
}
