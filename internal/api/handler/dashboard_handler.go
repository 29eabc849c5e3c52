package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type DashboardHandler struct {
	service ports.DashboardService
}

func NewDashboardHandler(service ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

type dashboardResponse struct {
	UnreadNotifications int64                 `json:"unread_notifications"`
	RecentNotifications []domain.Notification `json:"recent_notifications"`
	LowStockCount       int                   `json:"low_stock_count"`
	OrdersToShip        int64                 `json:"orders_to_ship"`
	PendingOrders       int64                 `json:"pending_orders"`
	EventsLast24h       int64                 `json:"events_last_24h"`
}

// Overview handles GET /admin.
//
// @Summary      Back-office dashboard counters
// @Tags         admin
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  dashboardResponse
// @Failure      302  "Redirected by the route gate"
// @Router       /admin [get]
func (h *DashboardHandler) Overview(c echo.Context) error {
	ov, err := h.service.Overview(c.Request().Context(), viewer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dashboardResponse{
		UnreadNotifications: ov.UnreadNotifications,
		RecentNotifications: nonNil(ov.RecentNotifications),
		LowStockCount:       ov.LowStockCount,
		OrdersToShip:        ov.OrdersToShip,
		PendingOrders:       ov.PendingOrders,
		EventsLast24h:       ov.EventsLast24h,
	})
}
