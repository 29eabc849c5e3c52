package ports

import (
	"context"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// Mailer sends transactional email and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg domain.Email) (string, error)
}
