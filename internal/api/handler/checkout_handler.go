package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// Webhook bodies above this size are rejected before signature checks.
const maxWebhookBody = 64 << 10

type CheckoutHandler struct {
	service ports.CheckoutService
}

func NewCheckoutHandler(service ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

type checkoutItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type checkoutRequest struct {
	Items     []checkoutItemRequest `json:"items" validate:"required,min=1,dive"`
	PromoCode string                `json:"promo_code,omitempty" validate:"omitempty,max=64"`
}

type checkoutResponse struct {
	ID      string `json:"id"`
	URL     string `json:"url"`
	OrderID string `json:"order_id"`
}

type webhookResponse struct {
	Received bool   `json:"received"`
	Type     string `json:"type"`
}

type couponRequest struct {
	Code           string  `json:"code" validate:"required,min=3,max=40"`
	PercentOff     float64 `json:"percent_off" validate:"required,gt=0,lte=100"`
	Duration       string  `json:"duration,omitempty" validate:"omitempty,oneof=once forever"`
	MaxRedemptions int64   `json:"max_redemptions,omitempty" validate:"omitempty,min=1"`
}

// Create handles POST /api/checkout.
//
// @Summary      Start a hosted checkout
// @Description  Checks stock, resolves the promotion code and records a pending order.
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      checkoutRequest  true  "Cart"
// @Success      201   {object}  checkoutResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/checkout [post]
func (h *CheckoutHandler) Create(c echo.Context) error {
	var req checkoutRequest
	if err := bind(c, &req); err != nil {
		metrics.CheckoutSessionsTotal.WithLabelValues("rejected").Inc()
		return err
	}

	in := ports.CheckoutInput{PromoCode: req.PromoCode}
	for _, it := range req.Items {
		in.Items = append(in.Items, ports.CheckoutItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	res, err := h.service.CreateSession(c.Request().Context(), viewer(c), in)
	if err != nil {
		result := "failed"
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrForbidden) || errors.Is(err, domain.ErrUnauthenticated) {
			result = "rejected"
		}
		metrics.CheckoutSessionsTotal.WithLabelValues(result).Inc()
		return err
	}

	metrics.CheckoutSessionsTotal.WithLabelValues("created").Inc()
	return c.JSON(http.StatusCreated, checkoutResponse{ID: res.SessionID, URL: res.URL, OrderID: res.OrderID})
}

// Webhook handles POST /api/webhooks/stripe. The raw body is needed for
// the signature check, so it is read directly instead of bound.
//
// @Summary      Payment provider webhook
// @Tags         checkout
// @Accept       json
// @Produce      json
// @Param        Stripe-Signature  header    string  true  "Webhook signature"
// @Success      200               {object}  webhookResponse
// @Failure      400               {object}  map[string]string
// @Router       /api/webhooks/stripe [post]
func (h *CheckoutHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		metrics.PaymentWebhooksTotal.WithLabelValues("invalid", "error").Inc()
		return domain.InvalidInput("unreadable webhook body")
	}

	eventType, err := h.service.HandleWebhook(c.Request().Context(), body, c.Request().Header.Get("Stripe-Signature"))
	if err != nil {
		label := eventType
		if label == "" {
			label = "invalid"
		}
		metrics.PaymentWebhooksTotal.WithLabelValues(label, "error").Inc()
		return err
	}

	metrics.PaymentWebhooksTotal.WithLabelValues(eventType, "ok").Inc()
	return c.JSON(http.StatusOK, webhookResponse{Received: true, Type: eventType})
}

// CreateCoupon handles POST /api/admin/coupons.
//
// @Summary      Create a percent-off coupon and its promotion code
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      couponRequest  true  "Coupon"
// @Success      201   {object}  ports.PromotionCode
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/admin/coupons [post]
func (h *CheckoutHandler) CreateCoupon(c echo.Context) error {
	var req couponRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pc, err := h.service.CreateCoupon(c.Request().Context(), viewer(c), ports.CouponInput{
		Code:           req.Code,
		PercentOff:     req.PercentOff,
		Duration:       req.Duration,
		MaxRedemptions: req.MaxRedemptions,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, pc)
}
