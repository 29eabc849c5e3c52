package ports

import (
	"context"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// AddressRepository scopes every operation to the owning user. Create and
// Update with IsDefault set unset the user's other default atomically.
type AddressRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Address, error)
	Create(ctx context.Context, a *domain.Address) error
	Update(ctx context.Context, a *domain.Address) error
	Delete(ctx context.Context, userID, id string) error
}
