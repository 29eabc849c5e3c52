package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type OrderHandler struct {
	service ports.OrderService
}

func NewOrderHandler(service ports.OrderService) *OrderHandler {
	return &OrderHandler{service: service}
}

type orderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// List handles GET /admin/commandes.
//
// @Summary      Back-office order list
// @Tags         admin
// @Produce      json
// @Security     SessionCookie
// @Param        status  query     string  false  "pending, paid, shipped, delivered, cancelled, refunded"
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  paginatedResponse[domain.Order]
// @Failure      302     "Redirected by the route gate"
// @Router       /admin/commandes [get]
func (h *OrderHandler) List(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	res, err := h.service.List(c.Request().Context(), viewer(c), ports.OrderQuery{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginatedResponse[domain.Order]{Data: nonNil(res.Data), Pagination: res.Pagination})
}

// UpdateStatus handles PATCH /api/admin/commandes/:id/status.
//
// @Summary      Move an order along its lifecycle
// @Description  pending→paid|cancelled, paid→shipped|refunded, shipped→delivered. Anything else is 400.
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string              true  "Order id"
// @Param        body  body      orderStatusRequest  true  "Target status"
// @Success      200   {object}  domain.Order
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/admin/commandes/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req orderStatusRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	o, err := h.service.UpdateStatus(c.Request().Context(), viewer(c), c.Param("id"), req.Status)
	if err != nil {
		return err
	}
	metrics.OrderStatusChangesTotal.WithLabelValues(string(o.Status)).Inc()
	return c.JSON(http.StatusOK, o)
}
