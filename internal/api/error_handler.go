package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain error kinds to their HTTP status codes.
//   - Logs unexpected and upstream errors without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if he.Code >= http.StatusInternalServerError {
			logUnexpected(log, c, err)
		}
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized, "authentication required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, kindMessage(err, domain.ErrInvalidRoleTransition, domain.ErrForbidden)
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, kindMessage(err, notFoundKinds...)
	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, kindMessage(err, domain.ErrOrderStatusChanged, domain.ErrConflict)
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, kindMessage(err, domain.ErrInvalidInput)
	}

	// Upstream failures and anything unexpected: log the real cause and
	// return a generic message.
	logUnexpected(log, c, err)
	return http.StatusInternalServerError, "internal server error"
}

var notFoundKinds = []error{
	domain.ErrUserNotFound,
	domain.ErrNotificationNotFound,
	domain.ErrProductNotFound,
	domain.ErrOrderNotFound,
	domain.ErrAddressNotFound,
	domain.ErrSessionNotFound,
	domain.ErrNotFound,
}

// kindMessage drops the operation prefixes services add when wrapping and
// keeps the message from the first matching kind onwards.
func kindMessage(err error, kinds ...error) string {
	msg := err.Error()
	for _, kind := range kinds {
		if !errors.Is(err, kind) {
			continue
		}
		if i := strings.Index(msg, kind.Error()); i >= 0 {
			return msg[i:]
		}
		return kind.Error()
	}
	return msg
}

func logUnexpected(log zerolog.Logger, c echo.Context, err error) {
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Bool("upstream", errors.Is(err, domain.ErrUpstream)).
		Msg("unhandled error")
}
