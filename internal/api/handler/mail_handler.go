package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type MailHandler struct {
	service ports.MailService
}

func NewMailHandler(service ports.MailService) *MailHandler {
	return &MailHandler{service: service}
}

type mailTestRequest struct {
	To string `json:"to,omitempty" validate:"omitempty,email"`
}

type mailTestResponse struct {
	ID string   `json:"id"`
	To []string `json:"to"`
}

// SendTest handles POST /api/email/test.
//
// @Summary      Send a diagnostic email
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      mailTestRequest  false  "Recipient, defaults to the admin address"
// @Success      200   {object}  mailTestResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/email/test [post]
func (h *MailHandler) SendTest(c echo.Context) error {
	var req mailTestRequest
	if c.Request().ContentLength != 0 {
		if err := bind(c, &req); err != nil {
			return err
		}
	}
	res, err := h.service.SendTest(c.Request().Context(), viewer(c), req.To)
	metrics.MailSentTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, mailTestResponse{ID: res.ID, To: res.To})
}
