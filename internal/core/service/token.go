package service

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

const tokenIssuer = "storefront"

// TokenManager signs and verifies session credentials. The token only
// carries the session id and user id; the session record stays authoritative.
type TokenManager struct {
	secret []byte
}

func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret)}
}

// Issue returns an HS256 token bound to s.
func (m *TokenManager) Issue(s domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   s.UserID,
		ID:        s.ID,
		IssuedAt:  jwt.NewNumericDate(s.CreatedAt),
		ExpiresAt: jwt.NewNumericDate(s.ExpiresAt),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(m.secret)
}

// Parse verifies signature, issuer and expiry and returns the user and
// session ids the token was issued for.
func (m *TokenManager) Parse(token string) (userID, sessionID string, err error) {
	if token == "" {
		return "", "", domain.ErrUnauthenticated
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", "", fmt.Errorf("parse token: %w", errors.Join(domain.ErrUnauthenticated, err))
	}
	if claims.Subject == "" || claims.ID == "" {
		return "", "", fmt.Errorf("parse token: %w: missing subject or id", domain.ErrUnauthenticated)
	}
	return claims.Subject, claims.ID, nil
}
