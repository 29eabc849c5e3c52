package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// RevalidateSecretHeader authorizes revalidation from build hooks without a
// session.
const RevalidateSecretHeader = "X-Revalidate-Secret"

type RevalidateHandler struct {
	service ports.RevalidationService
}

func NewRevalidateHandler(service ports.RevalidationService) *RevalidateHandler {
	return &RevalidateHandler{service: service}
}

type revalidateRequest struct {
	Tags []string `json:"tags"`
}

type revalidateResponse struct {
	Revalidated []string `json:"revalidated"`
	Purged      int64    `json:"purged"`
}

// Revalidate handles POST /api/revalidate.
//
// @Summary      Purge catalog cache entries by tag
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Param        X-Revalidate-Secret  header    string             false  "Shared secret (alternative to an admin session)"
// @Param        body                 body      revalidateRequest  true   "Tags to purge"
// @Success      200                  {object}  revalidateResponse
// @Failure      400                  {object}  map[string]string
// @Failure      401                  {object}  map[string]string
// @Failure      403                  {object}  map[string]string
// @Router       /api/revalidate [post]
func (h *RevalidateHandler) Revalidate(c echo.Context) error {
	var req revalidateRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	res, err := h.service.Revalidate(c.Request().Context(), viewer(c), c.Request().Header.Get(RevalidateSecretHeader), req.Tags)
	metrics.CacheRevalidationsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	metrics.CachePurgedEntriesTotal.Add(float64(res.Purged))
	return c.JSON(http.StatusOK, revalidateResponse{Revalidated: res.Tags, Purged: res.Purged})
}
