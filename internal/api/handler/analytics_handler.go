package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type AnalyticsHandler struct {
	service ports.AnalyticsService
}

func NewAnalyticsHandler(service ports.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

type trackRequest struct {
	Event      string         `json:"event" validate:"required"`
	Path       string         `json:"path" validate:"required,max=512"`
	SessionID  string         `json:"session_id,omitempty" validate:"omitempty,max=128"`
	Referrer   string         `json:"referrer,omitempty" validate:"omitempty,max=512"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Track handles POST /api/analytics.
//
// @Summary      Record a storefront event
// @Tags         analytics
// @Accept       json
// @Produce      json
// @Param        body  body      trackRequest  true  "Event"
// @Success      202   {object}  map[string]bool
// @Failure      400   {object}  map[string]string
// @Router       /api/analytics [post]
func (h *AnalyticsHandler) Track(c echo.Context) error {
	var req trackRequest
	if err := bind(c, &req); err != nil {
		metrics.AnalyticsEventsTotal.WithLabelValues("invalid").Inc()
		return err
	}

	referrer := req.Referrer
	if referrer == "" {
		referrer = c.Request().Referer()
	}
	err := h.service.Track(c.Request().Context(), viewer(c), ports.TrackInput{
		Event:      req.Event,
		Path:       req.Path,
		SessionID:  req.SessionID,
		Referrer:   referrer,
		UserAgent:  c.Request().UserAgent(),
		Properties: req.Properties,
	})
	metrics.AnalyticsEventsTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		return err
	}
	return c.JSON(http.StatusAccepted, map[string]bool{"accepted": true})
}

// Summary handles GET /admin/analytics.
//
// @Summary      Event counts and top paths
// @Tags         admin
// @Produce      json
// @Security     SessionCookie
// @Param        from  query     string  false  "Start (YYYY-MM-DD or RFC 3339), default 7 days ago"
// @Param        to    query     string  false  "End, exclusive, default now"
// @Success      200   {object}  domain.AnalyticsSummary
// @Failure      400   {object}  map[string]string
// @Router       /admin/analytics [get]
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	from, err := queryTime(c, "from")
	if err != nil {
		return err
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return err
	}
	summary, err := h.service.Summary(c.Request().Context(), viewer(c), from, to)
	if err != nil {
		return err
	}
	summary.ByEvent = nonNil(summary.ByEvent)
	summary.TopPaths = nonNil(summary.TopPaths)
	return c.JSON(http.StatusOK, summary)
}
