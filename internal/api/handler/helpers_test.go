package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/middleware"
	"github.com/atelier-boutique/storefront/internal/core/domain"
)

func newTestContext(method, target, body string, v domain.Viewer) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.SetViewer(c, v)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d (%s)", want, rec.Code, rec.Body.String())
	}
}

func mustRoles(t *testing.T, granted, active domain.Role) domain.RolePair {
	t.Helper()
	p, err := domain.NewRolePair(granted, active)
	if err != nil {
		t.Fatalf("NewRolePair: %v", err)
	}
	return p
}

func adminViewer(t *testing.T) domain.Viewer {
	return domain.Authenticated("admin-1", "s-admin", mustRoles(t, domain.RoleAdmin, domain.RoleAdmin))
}

func userViewer(t *testing.T) domain.Viewer {
	return domain.Authenticated("user-1", "s-user", mustRoles(t, domain.RoleUser, domain.RoleUser))
}

func cookieNamed(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
