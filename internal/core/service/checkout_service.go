package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const (
	maxCheckoutLines    = 50
	maxQuantityPerLine  = 99
	defaultCheckoutCurr = "eur"
)

type stockKeeper interface {
	ApplySale(ctx context.Context, items []domain.OrderItem) error
}

type orderMailer interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error
}

// CheckoutService creates hosted checkout sessions and settles them when the
// payment provider confirms.
type CheckoutService struct {
	products ports.ProductRepository
	orders   ports.OrderRepository
	users    ports.UserRepository
	payments ports.PaymentGateway
	stock    stockKeeper
	notifier Notifier
	mailer   orderMailer
	currency string
	log      zerolog.Logger
}

func NewCheckoutService(
	products ports.ProductRepository,
	orders ports.OrderRepository,
	users ports.UserRepository,
	payments ports.PaymentGateway,
	stock stockKeeper,
	notifier Notifier,
	mailer orderMailer,
	currency string,
	log zerolog.Logger,
) *CheckoutService {
	if currency == "" {
		currency = defaultCheckoutCurr
	}
	return &CheckoutService{
		products: products,
		orders:   orders,
		users:    users,
		payments: payments,
		stock:    stock,
		notifier: notifier,
		mailer:   mailer,
		currency: strings.ToLower(currency),
		log:      log,
	}
}

// CreateSession validates the cart against the catalog, resolves the
// promotion code and records a pending order for the new session.
func (s *CheckoutService) CreateSession(ctx context.Context, viewer domain.Viewer, in ports.CheckoutInput) (*ports.CheckoutResult, error) {
	if err := requireUserMode(viewer); err != nil {
		return nil, err
	}
	lines, err := mergeCheckoutItems(in.Items)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ProductID)
	}
	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checkout: load products: %w", err)
	}
	byID := make(map[string]domain.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	items := make([]domain.OrderItem, 0, len(lines))
	checkoutLines := make([]ports.CheckoutLine, 0, len(lines))
	for _, l := range lines {
		p, ok := byID[l.ProductID]
		if !ok || !p.Active {
			return nil, domain.InvalidInput("product %s is not available", l.ProductID)
		}
		if p.Stock < l.Quantity {
			return nil, fmt.Errorf("%w: %s has %d left", domain.ErrInsufficientStock, p.Name, p.Stock)
		}
		items = append(items, domain.OrderItem{ProductID: p.ID, Name: p.Name, UnitPriceCents: p.PriceCents, Quantity: l.Quantity})
		checkoutLines = append(checkoutLines, ports.CheckoutLine{Name: p.Name, UnitPriceCents: p.PriceCents, Quantity: l.Quantity})
	}

	var promo *ports.PromotionCode
	if code := strings.TrimSpace(in.PromoCode); code != "" {
		promo, err = s.payments.FindPromotionCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("checkout: %w", err)
		}
	}

	user, err := s.users.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	order := &domain.Order{
		ID:       uuid.NewString(),
		UserID:   user.ID,
		Email:    user.Email,
		Status:   domain.OrderPending,
		Items:    items,
		Currency: s.currency,
	}
	order.TotalCents = order.Subtotal()

	sessionIn := ports.CheckoutSessionInput{
		OrderID:       order.ID,
		CustomerEmail: user.Email,
		Currency:      s.currency,
		Lines:         checkoutLines,
	}
	if promo != nil {
		sessionIn.PromotionCodeID = promo.ID
		order.PromotionCode = promo.Code
	}
	session, err := s.payments.CreateCheckoutSession(ctx, sessionIn)
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	now := time.Now().UTC()
	order.CheckoutSessionID = session.ID
	order.CreatedAt = now
	order.UpdatedAt = now
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("checkout: record order: %w", err)
	}

	s.log.Info().Str("order_id", order.ID).Str("checkout_session", session.ID).Int64("subtotal", order.TotalCents).Msg("checkout session created")
	return &ports.CheckoutResult{OrderID: order.ID, SessionID: session.ID, URL: session.URL}, nil
}

// HandleWebhook settles a completed checkout. Replayed deliveries for an
// order that is no longer pending are acknowledged without side effects.
func (s *CheckoutService) HandleWebhook(ctx context.Context, payload []byte, signature string) (string, error) {
	event, err := s.payments.ParseWebhook(payload, signature)
	if err != nil {
		return "", err
	}
	if event.Type != ports.PaymentEventCheckoutCompleted {
		s.log.Debug().Str("event_id", event.ID).Str("type", event.Type).Msg("payment event ignored")
		return event.Type, nil
	}

	order, err := s.orders.FindByCheckoutSession(ctx, event.CheckoutSessionID)
	if errors.Is(err, domain.ErrOrderNotFound) && event.OrderID != "" {
		order, err = s.orders.FindByID(ctx, event.OrderID)
	}
	if err != nil {
		return event.Type, fmt.Errorf("webhook %s: %w", event.ID, err)
	}

	if order.Status != domain.OrderPending {
		s.log.Info().Str("order_id", order.ID).Str("status", string(order.Status)).Msg("webhook replay ignored")
		return event.Type, nil
	}
	// Only the delivery that wins the pending -> paid write applies the sale.
	err = s.orders.TransitionStatus(ctx, order.ID, domain.OrderPending, domain.OrderPaid, time.Now().UTC())
	if errors.Is(err, domain.ErrOrderStatusChanged) {
		s.log.Info().Str("order_id", order.ID).Str("event_id", event.ID).Msg("concurrent webhook delivery ignored")
		return event.Type, nil
	}
	if err != nil {
		return event.Type, fmt.Errorf("webhook %s: mark paid: %w", event.ID, err)
	}
	order.Status = domain.OrderPaid
	if event.AmountTotalCents > 0 {
		order.TotalCents = event.AmountTotalCents
	}
	s.log.Info().Str("order_id", order.ID).Str("event_id", event.ID).Msg("order paid")

	// Payment is captured; everything below is best effort.
	if err := s.stock.ApplySale(ctx, order.Items); err != nil {
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("stock not fully applied")
	}
	title := "Nouvelle commande"
	msg := fmt.Sprintf("Commande %s payée par %s (%s).", shortID(order.ID), order.Email, formatAmount(order.TotalCents, order.Currency))
	if err := s.notifier.Notify(ctx, domain.NotificationOrder, title, msg, "/admin/commandes"); err != nil {
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("order notification failed")
	}
	if err := s.mailer.SendOrderConfirmation(ctx, order); err != nil {
		s.log.Error().Err(err).Str("order_id", order.ID).Msg("confirmation email failed")
	}
	return event.Type, nil
}

// CreateCoupon creates a coupon and its customer-facing promotion code.
func (s *CheckoutService) CreateCoupon(ctx context.Context, viewer domain.Viewer, in ports.CouponInput) (*ports.PromotionCode, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	in.Code = strings.ToUpper(strings.TrimSpace(in.Code))
	if in.Code == "" {
		return nil, domain.InvalidInput("code is required")
	}
	if in.PercentOff <= 0 || in.PercentOff > 100 {
		return nil, domain.InvalidInput("percent_off must be in (0, 100]")
	}
	switch in.Duration {
	case "":
		in.Duration = "once"
	case "once", "forever":
	default:
		return nil, domain.InvalidInput("duration must be once or forever")
	}

	promo, err := s.payments.CreateCoupon(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("create coupon: %w", err)
	}
	s.log.Info().Str("code", promo.Code).Str("user_id", viewer.UserID).Msg("promotion code created")
	return promo, nil
}

func mergeCheckoutItems(items []ports.CheckoutItem) ([]ports.CheckoutItem, error) {
	if len(items) == 0 {
		return nil, domain.InvalidInput("cart is empty")
	}
	if len(items) > maxCheckoutLines {
		return nil, domain.InvalidInput("cart has more than %d lines", maxCheckoutLines)
	}

	index := make(map[string]int, len(items))
	out := make([]ports.CheckoutItem, 0, len(items))
	for _, it := range items {
		if it.ProductID == "" {
			return nil, domain.InvalidInput("product_id is required")
		}
		if it.Quantity < 1 {
			return nil, domain.InvalidInput("quantity must be at least 1")
		}
		// Both operands stay within maxQuantityPerLine, so the sum cannot wrap.
		if it.Quantity > maxQuantityPerLine {
			return nil, domain.InvalidInput("quantity for %s exceeds %d", it.ProductID, maxQuantityPerLine)
		}
		i, ok := index[it.ProductID]
		if !ok {
			index[it.ProductID] = len(out)
			out = append(out, it)
			continue
		}
		out[i].Quantity += it.Quantity
		if out[i].Quantity > maxQuantityPerLine {
			return nil, domain.InvalidInput("quantity for %s exceeds %d", it.ProductID, maxQuantityPerLine)
		}
	}
	return out, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatAmount(cents int64, currency string) string {
	return fmt.Sprintf("%d.%02d %s", cents/100, cents%100, strings.ToUpper(currency))
}
