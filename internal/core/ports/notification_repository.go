package ports

import (
	"context"
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// NotificationFilter narrows a notification listing.
type NotificationFilter struct {
	UnreadOnly bool
	Limit      int
}

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	List(ctx context.Context, filter NotificationFilter) ([]domain.Notification, error)
	CountUnread(ctx context.Context) (int64, error)
	// MarkRead sets read=true and updated_at=at, returning the updated row.
	// It succeeds on rows that are already read.
	MarkRead(ctx context.Context, id string, at time.Time) (*domain.Notification, error)
	// MarkAllRead flips every unread row and returns how many changed.
	MarkAllRead(ctx context.Context, at time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}
