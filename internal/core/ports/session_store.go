package ports

import (
	"context"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// SessionStore keeps server-side session records. Get returns
// domain.ErrSessionNotFound for unknown or expired sessions.
type SessionStore interface {
	Create(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, sessionID string) (*domain.Session, error)
	Delete(ctx context.Context, sessionID string) error
}
