package domain

import (
	"errors"
	"fmt"
)

// Base error kinds. Every error a service returns wraps one of these so the
// transport layer can map it to a status code with errors.Is.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("resource not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUpstream        = errors.New("upstream failure")
	ErrConflict        = errors.New("conflict")
)

var (
	ErrUserNotFound         = fmt.Errorf("user: %w", ErrNotFound)
	ErrNotificationNotFound = fmt.Errorf("notification: %w", ErrNotFound)
	ErrProductNotFound      = fmt.Errorf("product: %w", ErrNotFound)
	ErrOrderNotFound        = fmt.Errorf("order: %w", ErrNotFound)
	ErrAddressNotFound      = fmt.Errorf("address: %w", ErrNotFound)
	ErrSessionNotFound      = fmt.Errorf("session: %w", ErrNotFound)
)

var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrInvalidRole           = fmt.Errorf("%w: unknown role", ErrInvalidInput)
	ErrInvalidRoleTransition = fmt.Errorf("%w: active role not granted", ErrForbidden)
	ErrInvalidTransition     = fmt.Errorf("%w: invalid order status transition", ErrInvalidInput)
	ErrInsufficientStock     = fmt.Errorf("%w: insufficient stock", ErrInvalidInput)
	ErrInvalidPromotionCode  = fmt.Errorf("%w: unknown or inactive promotion code", ErrInvalidInput)

	// ErrOrderStatusChanged means the order left the expected status between
	// the read and the write.
	ErrOrderStatusChanged = fmt.Errorf("order status changed concurrently: %w", ErrConflict)
)

// InvalidInput builds a client-safe validation error.
func InvalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
