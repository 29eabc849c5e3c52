package domain

import "time"

// OrderStatus represents the lifecycle state of an order (commande).
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
	OrderRefunded  OrderStatus = "refunded"
)

var validOrderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending: {OrderPaid, OrderCancelled},
	OrderPaid:    {OrderShipped, OrderRefunded},
	OrderShipped: {OrderDelivered},
}

// ParseOrderStatus rejects unknown statuses.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case OrderPending, OrderPaid, OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded:
		return OrderStatus(s), nil
	default:
		return "", InvalidInput("unknown order status %q", s)
	}
}

// CanTransitionTo reports whether moving from s to next is allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validOrderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type OrderItem struct {
	ProductID      string `json:"product_id"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
}

// Order is a row of the commandes table.
type Order struct {
	ID                string      `json:"id"`
	UserID            string      `json:"user_id"`
	Email             string      `json:"email"`
	Status            OrderStatus `json:"status"`
	Items             []OrderItem `json:"items"`
	TotalCents        int64       `json:"total_cents"`
	Currency          string      `json:"currency"`
	PromotionCode     string      `json:"promotion_code,omitempty"`
	CheckoutSessionID string      `json:"checkout_session_id,omitempty"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// Subtotal sums the line items before any discount.
func (o Order) Subtotal() int64 {
	var total int64
	for _, it := range o.Items {
		total += it.UnitPriceCents * int64(it.Quantity)
	}
	return total
}
