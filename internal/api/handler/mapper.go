package handler

import (
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// --- Response types shared by several handlers ---

type userResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Role       string    `json:"role"`
	ActiveRole string    `json:"active_role"`
	CreatedAt  time.Time `json:"created_at"`
}

type paginatedResponse[T any] struct {
	Data       []T              `json:"data"`
	Pagination ports.Pagination `json:"pagination"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		Role:       string(u.Roles.Granted()),
		ActiveRole: string(u.Roles.Active()),
		CreatedAt:  u.CreatedAt,
	}
}

// nonNil keeps empty collections rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
