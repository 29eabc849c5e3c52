package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// Config holds the Stripe credentials and the hosted page redirect targets.
type Config struct {
	SecretKey     string
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
}

// Stripe implements ports.PaymentGateway on top of the Stripe API.
type Stripe struct {
	api           *client.API
	webhookSecret string
	successURL    string
	cancelURL     string
}

var _ ports.PaymentGateway = (*Stripe)(nil)

func NewStripe(cfg Config) *Stripe {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	return &Stripe{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, in ports.CheckoutSessionInput) (*ports.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(in.OrderID),
	}
	params.Context = ctx
	params.AddMetadata("order_id", in.OrderID)
	if in.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(in.CustomerEmail)
	}
	for _, line := range in.Lines {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(line.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(in.Currency),
				UnitAmount: stripe.Int64(line.UnitPriceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(line.Name),
				},
			},
		})
	}
	if in.PromotionCodeID != "" {
		params.Discounts = []*stripe.CheckoutSessionDiscountParams{
			{PromotionCode: stripe.String(in.PromotionCodeID)},
		}
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, upstream("create checkout session", err)
	}
	return &ports.CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) FindPromotionCode(ctx context.Context, code string) (*ports.PromotionCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, domain.ErrInvalidPromotionCode
	}

	params := &stripe.PromotionCodeListParams{
		Code:   stripe.String(code),
		Active: stripe.Bool(true),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	it := s.api.PromotionCodes.List(params)
	for it.Next() {
		return promotionCode(it.PromotionCode()), nil
	}
	if err := it.Err(); err != nil {
		return nil, upstream("list promotion codes", err)
	}
	return nil, domain.ErrInvalidPromotionCode
}

// CreateCoupon creates a percent-off coupon and exposes it under the
// requested customer-facing code.
func (s *Stripe) CreateCoupon(ctx context.Context, in ports.CouponInput) (*ports.PromotionCode, error) {
	cp := &stripe.CouponParams{
		PercentOff: stripe.Float64(in.PercentOff),
		Duration:   stripe.String(in.Duration),
		Name:       stripe.String(in.Code),
	}
	cp.Context = ctx
	if in.MaxRedemptions > 0 {
		cp.MaxRedemptions = stripe.Int64(in.MaxRedemptions)
	}
	coupon, err := s.api.Coupons.New(cp)
	if err != nil {
		return nil, upstream("create coupon", err)
	}

	pp := &stripe.PromotionCodeParams{
		Coupon: stripe.String(coupon.ID),
		Code:   stripe.String(in.Code),
	}
	pp.Context = ctx
	pc, err := s.api.PromotionCodes.New(pp)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Code == stripe.ErrorCodeResourceAlreadyExists {
			return nil, domain.InvalidInput("promotion code %q already exists", in.Code)
		}
		return nil, upstream("create promotion code", err)
	}
	return promotionCode(pc), nil
}

// ParseWebhook verifies the signature header and decodes checkout events.
// Events of other types come back with only ID and Type set.
func (s *Stripe) ParseWebhook(payload []byte, signature string) (*ports.PaymentEvent, error) {
	if s.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", domain.ErrUpstream)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, domain.InvalidInput("webhook signature: %v", err)
	}

	out := &ports.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted || event.Data == nil {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		return nil, domain.InvalidInput("webhook payload: %v", err)
	}
	out.CheckoutSessionID = sess.ID
	out.AmountTotalCents = sess.AmountTotal
	out.OrderID = sess.Metadata["order_id"]
	if out.OrderID == "" {
		out.OrderID = sess.ClientReferenceID
	}
	return out, nil
}

func promotionCode(pc *stripe.PromotionCode) *ports.PromotionCode {
	out := &ports.PromotionCode{ID: pc.ID, Code: pc.Code}
	if pc.Coupon != nil {
		out.CouponID = pc.Coupon.ID
		out.PercentOff = pc.Coupon.PercentOff
		out.AmountOffCents = pc.Coupon.AmountOff
	}
	return out
}

func upstream(op string, err error) error {
	return fmt.Errorf("%w: stripe %s: %v", domain.ErrUpstream, op, err)
}
