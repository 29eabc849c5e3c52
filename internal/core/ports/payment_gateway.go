package ports

import "context"

type CheckoutLine struct {
	Name           string
	UnitPriceCents int64
	Quantity       int
}

// CheckoutSessionInput is everything the hosted payment page needs.
type CheckoutSessionInput struct {
	OrderID         string
	CustomerEmail   string
	Currency        string
	Lines           []CheckoutLine
	PromotionCodeID string
}

type CheckoutSession struct {
	ID  string
	URL string
}

// PromotionCode is a customer-facing code backed by a coupon.
type PromotionCode struct {
	ID             string  `json:"id"`
	Code           string  `json:"code"`
	CouponID       string  `json:"coupon_id"`
	PercentOff     float64 `json:"percent_off,omitempty"`
	AmountOffCents int64   `json:"amount_off_cents,omitempty"`
}

type CouponInput struct {
	Code           string
	PercentOff     float64
	Duration       string
	MaxRedemptions int64
}

// PaymentEvent is a verified webhook delivery.
type PaymentEvent struct {
	ID                string
	Type              string
	CheckoutSessionID string
	OrderID           string
	AmountTotalCents  int64
}

const PaymentEventCheckoutCompleted = "checkout.session.completed"

// PaymentGateway abstracts the hosted payment API.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (*CheckoutSession, error)
	// FindPromotionCode returns domain.ErrInvalidPromotionCode when the code
	// is unknown or inactive.
	FindPromotionCode(ctx context.Context, code string) (*PromotionCode, error)
	CreateCoupon(ctx context.Context, in CouponInput) (*PromotionCode, error)
	ParseWebhook(payload []byte, signature string) (*PaymentEvent, error)
}
