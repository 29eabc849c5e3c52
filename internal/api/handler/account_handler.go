package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// AccountHandler serves the user area: profile, role mode, addresses and
// order history.
type AccountHandler struct {
	accounts ports.AccountService
	orders   ports.OrderService
}

func NewAccountHandler(accounts ports.AccountService, orders ports.OrderService) *AccountHandler {
	return &AccountHandler{accounts: accounts, orders: orders}
}

type accountResponse struct {
	User           userResponse   `json:"user"`
	RecentOrders   []domain.Order `json:"recent_orders"`
	AddressesCount int            `json:"addresses_count"`
}

type profileRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Phone string `json:"phone" validate:"omitempty,max=32"`
}

type switchRoleRequest struct {
	ActiveRole string `json:"active_role" validate:"required,oneof=user admin"`
}

type switchRoleResponse struct {
	Role       string `json:"role"`
	ActiveRole string `json:"active_role"`
	Redirect   string `json:"redirect"`
}

type addressRequest struct {
	Label      string `json:"label" validate:"max=50"`
	FullName   string `json:"full_name" validate:"required,max=100"`
	Line1      string `json:"line1" validate:"required,max=200"`
	Line2      string `json:"line2" validate:"max=200"`
	PostalCode string `json:"postal_code" validate:"required,max=16"`
	City       string `json:"city" validate:"required,max=100"`
	Country    string `json:"country" validate:"required,len=2"`
	Phone      string `json:"phone" validate:"omitempty,max=32"`
	IsDefault  bool   `json:"is_default"`
}

func (r addressRequest) input() ports.AddressInput {
	return ports.AddressInput{
		Label:      r.Label,
		FullName:   r.FullName,
		Line1:      r.Line1,
		Line2:      r.Line2,
		PostalCode: r.PostalCode,
		City:       r.City,
		Country:    r.Country,
		Phone:      r.Phone,
		IsDefault:  r.IsDefault,
	}
}

// Overview handles GET /compte.
//
// @Summary      Account overview
// @Tags         account
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  accountResponse
// @Failure      302  "Redirected by the route gate"
// @Router       /compte [get]
func (h *AccountHandler) Overview(c echo.Context) error {
	ov, err := h.accounts.Overview(c.Request().Context(), viewer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountResponse{
		User:           toUserResponse(ov.User),
		RecentOrders:   nonNil(ov.RecentOrders),
		AddressesCount: ov.Addresses,
	})
}

// UpdateProfile handles PATCH /api/compte/profil.
//
// @Summary      Update name and phone
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      profileRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/compte/profil [patch]
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.accounts.UpdateProfile(c.Request().Context(), viewer(c), ports.ProfileInput{Name: req.Name, Phone: req.Phone})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}

// SwitchRole handles POST /api/compte/role.
//
// @Summary      Switch the active role
// @Description  An admin may toggle between user and admin mode. A user asking for admin gets 403.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      switchRoleRequest  true  "Target mode"
// @Success      200   {object}  switchRoleResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /api/compte/role [post]
func (h *AccountHandler) SwitchRole(c echo.Context) error {
	var req switchRoleRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	roles, err := h.accounts.SwitchRole(c.Request().Context(), viewer(c), req.ActiveRole)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, switchRoleResponse{
		Role:       string(roles.Granted()),
		ActiveRole: string(roles.Active()),
		Redirect:   homeFor(roles),
	})
}

// Addresses handles GET /compte/mes-adresses and GET /api/compte/adresses.
//
// @Summary      List saved addresses
// @Tags         account
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  listResponse[domain.Address]
// @Failure      401  {object}  map[string]string
// @Router       /api/compte/adresses [get]
func (h *AccountHandler) Addresses(c echo.Context) error {
	list, err := h.accounts.Addresses(c.Request().Context(), viewer(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listResponse[domain.Address]{Data: nonNil(list)})
}

// CreateAddress handles POST /api/compte/adresses.
//
// @Summary      Add an address
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      addressRequest  true  "Address"
// @Success      201   {object}  domain.Address
// @Failure      400   {object}  map[string]string
// @Router       /api/compte/adresses [post]
func (h *AccountHandler) CreateAddress(c echo.Context) error {
	var req addressRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, err := h.accounts.CreateAddress(c.Request().Context(), viewer(c), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, a)
}

// UpdateAddress handles PUT /api/compte/adresses/:id.
//
// @Summary      Replace an address
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string          true  "Address id"
// @Param        body  body      addressRequest  true  "Address"
// @Success      200   {object}  domain.Address
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /api/compte/adresses/{id} [put]
func (h *AccountHandler) UpdateAddress(c echo.Context) error {
	var req addressRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	a, err := h.accounts.UpdateAddress(c.Request().Context(), viewer(c), c.Param("id"), req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// DeleteAddress handles DELETE /api/compte/adresses/:id.
//
// @Summary      Delete an address
// @Tags         account
// @Security     SessionCookie
// @Param        id  path  string  true  "Address id"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/compte/adresses/{id} [delete]
func (h *AccountHandler) DeleteAddress(c echo.Context) error {
	if err := h.accounts.DeleteAddress(c.Request().Context(), viewer(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Orders handles GET /compte/commandes.
//
// @Summary      Order history of the current user
// @Tags         account
// @Produce      json
// @Security     SessionCookie
// @Param        status  query     string  false  "Status filter"
// @Param        page    query     int     false  "Page (default 1)"
// @Param        limit   query     int     false  "Page size (default 20, max 100)"
// @Success      200     {object}  paginatedResponse[domain.Order]
// @Router       /compte/commandes [get]
func (h *AccountHandler) Orders(c echo.Context) error {
	page, limit, err := pageQuery(c)
	if err != nil {
		return err
	}
	res, err := h.orders.History(c.Request().Context(), viewer(c), ports.OrderQuery{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, paginatedResponse[domain.Order]{Data: nonNil(res.Data), Pagination: res.Pagination})
}
