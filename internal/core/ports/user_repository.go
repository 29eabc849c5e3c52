package ports

import (
	"context"
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// UserRepository defines persistence operations for storefront accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id, name, phone string, at time.Time) (*domain.User, error)
	// UpdateActiveRole persists only active_role. The caller is responsible for
	// having validated the pair through RolePair.SwitchActiveRole.
	UpdateActiveRole(ctx context.Context, id string, active domain.Role, at time.Time) error
}

// RoleLookup fetches the persisted role pair for a user.
type RoleLookup interface {
	FindRoles(ctx context.Context, userID string) (domain.RolePair, error)
}
