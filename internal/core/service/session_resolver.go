package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// SessionResolver turns a request credential into a Viewer. It is called
// once per request and holds no per-viewer state.
type SessionResolver struct {
	tokens   *TokenManager
	sessions ports.SessionStore
	roles    ports.RoleLookup
	now      func() time.Time
	log      zerolog.Logger
}

func NewSessionResolver(tokens *TokenManager, sessions ports.SessionStore, roles ports.RoleLookup, log zerolog.Logger) *SessionResolver {
	return &SessionResolver{tokens: tokens, sessions: sessions, roles: roles, now: time.Now, log: log}
}

// Resolve never returns an error. A credential that cannot be verified is
// anonymous; a verified session whose roles cannot be loaded has no profile.
func (r *SessionResolver) Resolve(ctx context.Context, credential string) domain.Viewer {
	if credential == "" {
		return domain.Anonymous()
	}

	userID, sessionID, err := r.tokens.Parse(credential)
	if err != nil {
		r.log.Debug().Err(err).Msg("credential rejected")
		return domain.Anonymous()
	}

	session, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		r.log.Debug().Err(err).Str("session_id", sessionID).Msg("session lookup failed")
		return domain.Anonymous()
	}
	if session.UserID != userID || session.Expired(r.now()) {
		return domain.Anonymous()
	}

	roles, err := r.roles.FindRoles(ctx, userID)
	if err != nil {
		r.log.Warn().Err(err).Str("user_id", userID).Msg("role lookup failed")
		return domain.ProfileMissing(userID, sessionID)
	}
	return domain.Authenticated(userID, sessionID, roles)
}
