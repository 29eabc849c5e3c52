package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/api/metrics"
	"github.com/atelier-boutique/storefront/internal/api/middleware"
	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

type AuthHandler struct {
	authService  ports.AuthService
	secureCookie bool
}

func NewAuthHandler(authService ports.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

type registerRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" form:"name" validate:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	Redirect string `json:"redirect,omitempty" form:"redirect"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
	Redirect  string       `json:"redirect"`
}

type registerResponse struct {
	User     userResponse `json:"user"`
	Redirect string       `json:"redirect"`
}

// formView is the view-model returned by the auth pages.
type formView struct {
	Page     string   `json:"page"`
	Action   string   `json:"action"`
	Fields   []string `json:"fields"`
	Redirect string   `json:"redirect,omitempty"`
}

// LoginPage handles GET /connexion.
//
// @Summary      Login form view-model
// @Tags         auth
// @Produce      json
// @Param        redirect  query     string  false  "Local path to return to after login"
// @Success      200       {object}  formView
// @Failure      302       "Already authenticated"
// @Router       /connexion [get]
func (h *AuthHandler) LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, formView{
		Page:     "login",
		Action:   domain.PathLogin,
		Fields:   []string{"email", "password"},
		Redirect: middleware.SafeRedirect(c.QueryParam("redirect"), ""),
	})
}

// RegisterPage handles GET /inscription.
//
// @Summary      Registration form view-model
// @Tags         auth
// @Produce      json
// @Success      200  {object}  formView
// @Failure      302  "Already authenticated"
// @Router       /inscription [get]
func (h *AuthHandler) RegisterPage(c echo.Context) error {
	return c.JSON(http.StatusOK, formView{
		Page:   "register",
		Action: domain.PathRegister,
		Fields: []string{"email", "password", "name"},
	})
}

// Register creates a new account with the user role.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /inscription [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := bind(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", "invalid").Inc()
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("register", authFailure(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("register", "ok").Inc()
	return c.JSON(http.StatusCreated, registerResponse{User: toUserResponse(user), Redirect: domain.PathLogin})
}

// Login authenticates a user, opens a session and sets the session cookie.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /connexion [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "invalid").Inc()
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", authFailure(err)).Inc()
		return err
	}

	c.SetCookie(h.cookie(res.Token, res.ExpiresAt))
	metrics.AuthAttemptsTotal.WithLabelValues("login", "ok").Inc()

	redirect := req.Redirect
	if redirect == "" {
		redirect = c.QueryParam("redirect")
	}
	return c.JSON(http.StatusOK, loginResponse{
		Token:     res.Token,
		ExpiresAt: res.ExpiresAt,
		User:      toUserResponse(res.User),
		Redirect:  middleware.SafeRedirect(redirect, homeFor(res.User.Roles)),
	})
}

// Logout destroys the session and clears the cookie. Always 204.
//
// @Summary      Logout
// @Tags         auth
// @Success      204
// @Failure      500  {object}  map[string]string
// @Router       /api/auth/deconnexion [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := h.authService.Logout(c.Request().Context(), middleware.Credential(c.Request())); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("logout", "error").Inc()
		return err
	}
	c.SetCookie(h.cookie("", time.Unix(0, 0)))
	metrics.AuthAttemptsTotal.WithLabelValues("logout", "ok").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) cookie(value string, expires time.Time) *http.Cookie {
	ck := &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		ck.MaxAge = -1
	}
	return ck
}

func authFailure(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrUserExists):
		return "exists"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid"
	default:
		return "error"
	}
}
