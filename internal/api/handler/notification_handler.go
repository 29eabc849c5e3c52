package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type NotificationHandler struct {
	service ports.NotificationService
}

func NewNotificationHandler(service ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

type notificationListResponse struct {
	Data        []domain.Notification `json:"data"`
	UnreadCount int64                 `json:"unread_count"`
}

type markAllReadResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}

// List handles GET /api/notifications.
//
// @Summary      List back-office notifications
// @Tags         notifications
// @Produce      json
// @Security     SessionCookie
// @Param        unread  query     bool  false  "Only unread notifications"
// @Param        limit   query     int   false  "Maximum items (default 50, max 200)"
// @Success      200     {object}  notificationListResponse
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	filter := ports.NotificationFilter{}
	if raw := c.QueryParam("unread"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return domain.InvalidInput("unread must be a boolean")
		}
		filter.UnreadOnly = unread
	}
	_, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	filter.Limit = limit

	res, err := h.service.List(c.Request().Context(), viewer(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, notificationListResponse{Data: nonNil(res.Items), UnreadCount: res.Unread})
}

// MarkRead handles PATCH /api/notifications/:id/read. Marking an already
// read notification succeeds.
//
// @Summary      Mark a notification as read
// @Tags         notifications
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "Notification id"
// @Success      200  {object}  domain.Notification
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id}/read [patch]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	n, err := h.service.MarkRead(c.Request().Context(), viewer(c), c.Param("id"))
	if err != nil {
		return err
	}
	metrics.NotificationsUpdatedTotal.WithLabelValues("read").Inc()
	return c.JSON(http.StatusOK, n)
}

// MarkAllRead handles PATCH /api/notifications/read-all.
//
// @Summary      Mark every unread notification as read
// @Tags         notifications
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  markAllReadResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/notifications/read-all [patch]
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	n, err := h.service.MarkAllRead(c.Request().Context(), viewer(c))
	if err != nil {
		return err
	}
	metrics.NotificationsUpdatedTotal.WithLabelValues("read").Add(float64(n))
	return c.JSON(http.StatusOK, markAllReadResponse{UpdatedCount: n})
}

// Delete handles DELETE /api/notifications/:id.
//
// @Summary      Delete a notification
// @Tags         notifications
// @Security     SessionCookie
// @Param        id  path  string  true  "Notification id"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/notifications/{id} [delete]
func (h *NotificationHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), viewer(c), c.Param("id")); err != nil {
		return err
	}
	metrics.NotificationsUpdatedTotal.WithLabelValues("delete").Inc()
	return c.NoContent(http.StatusNoContent)
}
