package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/atelier-boutique/storefront/internal/api/middleware"
	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, email, password string) (*ports.LoginResult, error)
	logoutFn   func(ctx context.Context, credential string) error
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Logout(ctx context.Context, credential string) error {
	return s.logoutFn(ctx, credential)
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Email != "alice@example.com" || in.Name != "Alice" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Email: in.Email, Name: in.Name, Roles: domain.UserRoles()}, nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPost, "/inscription",
		`{"email":"alice@example.com","password":"longenough","name":"Alice"}`, domain.Anonymous())
	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusCreated)

	var resp registerResponse
	decode(t, rec, &resp)
	if resp.User.Role != "user" || resp.User.ActiveRole != "user" || resp.Redirect != "/connexion" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	h := NewAuthHandler(stub, false)

	c, _ := newTestContext(http.MethodPost, "/inscription",
		`{"email":"bob@example.com","password":"longenough","name":"Bob"}`, domain.Anonymous())
	if err := h.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	c, _ = newTestContext(http.MethodPost, "/inscription", `{"email":"not-an-email","password":"x"}`, domain.Anonymous())
	if err := h.Register(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	c, _ = newTestContext(http.MethodPost, "/inscription", `not-json`, domain.Anonymous())
	if err := h.Register(c); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for malformed body, got %v", err)
	}
}

func TestAuthHandler_Login_SetsCookieAndRedirect(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	admin := &domain.User{ID: "a1", Email: "admin@example.com", Roles: mustRoles(t, domain.RoleAdmin, domain.RoleAdmin)}
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "admin@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{Token: "tok", ExpiresAt: expires, User: admin}, nil
		},
	}
	h := NewAuthHandler(stub, true)

	tests := []struct {
		target, body, want string
	}{
		{"/connexion", `{"email":"admin@example.com","password":"secret"}`, "/admin"},
		{"/connexion?redirect=%2Fadmin%2Fstocks", `{"email":"admin@example.com","password":"secret"}`, "/admin/stocks"},
		{"/connexion", `{"email":"admin@example.com","password":"secret","redirect":"https://evil.test"}`, "/admin"},
	}
	for _, tt := range tests {
		c, rec := newTestContext(http.MethodPost, tt.target, tt.body, domain.Anonymous())
		if err := h.Login(c); err != nil {
			t.Fatalf("handler error: %v", err)
		}
		expectStatus(t, rec, http.StatusOK)

		var resp loginResponse
		decode(t, rec, &resp)
		if resp.Redirect != tt.want {
			t.Fatalf("%s: expected redirect %q, got %q", tt.target, tt.want, resp.Redirect)
		}

		ck := cookieNamed(rec, middleware.SessionCookie)
		if ck == nil || ck.Value != "tok" || !ck.HttpOnly || !ck.Secure || ck.SameSite != http.SameSiteLaxMode {
			t.Fatalf("unexpected session cookie: %+v", ck)
		}
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPost, "/connexion", `{"email":"a@example.com","password":"wrong"}`, domain.Anonymous())
	if err := h.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if cookieNamed(rec, middleware.SessionCookie) != nil {
		t.Fatalf("no cookie must be set on failure")
	}
}

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	var got string
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, credential string) error {
			got = credential
			return nil
		},
	}
	h := NewAuthHandler(stub, false)

	c, rec := newTestContext(http.MethodPost, "/api/auth/deconnexion", "", domain.Anonymous())
	c.Request().AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: "tok"})
	if err := h.Logout(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	expectStatus(t, rec, http.StatusNoContent)
	if got != "tok" {
		t.Fatalf("expected credential to be forwarded, got %q", got)
	}
	ck := cookieNamed(rec, middleware.SessionCookie)
	if ck == nil || ck.Value != "" || ck.MaxAge >= 0 {
		t.Fatalf("expected cleared cookie, got %+v", ck)
	}
}

func TestAuthHandler_LoginPage(t *testing.T) {
	h := NewAuthHandler(&stubAuthService{}, false)

	c, rec := newTestContext(http.MethodGet, "/connexion?redirect=%2F%2Fevil.test", "", domain.Anonymous())
	if err := h.LoginPage(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var view formView
	decode(t, rec, &view)
	if view.Page != "login" || view.Redirect != "" {
		t.Fatalf("unexpected view: %+v", view)
	}
}
