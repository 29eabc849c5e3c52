package domain

import "time"

type NotificationKind string

const (
	NotificationOrder    NotificationKind = "order"
	NotificationLowStock NotificationKind = "low_stock"
	NotificationSystem   NotificationKind = "system"
)

// Notification is a back-office message shown on the admin dashboard.
type Notification struct {
	ID        string           `json:"id"`
	Kind      NotificationKind `json:"kind"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Link      string           `json:"link,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
