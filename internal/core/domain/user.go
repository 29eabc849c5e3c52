package domain

import "time"

// User is a storefront account. Roles is always a validated pair.
type User struct {
	ID           string
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Roles        RolePair
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session ties an opaque credential to a user until ExpiresAt.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
