package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const recentOrdersOnAccount = 5

type AccountService struct {
	users     ports.UserRepository
	orders    ports.OrderRepository
	addresses ports.AddressRepository
	log       zerolog.Logger
}

func NewAccountService(users ports.UserRepository, orders ports.OrderRepository, addresses ports.AddressRepository, log zerolog.Logger) *AccountService {
	return &AccountService{users: users, orders: orders, addresses: addresses, log: log}
}

// Overview backs the /compte page.
func (s *AccountService) Overview(ctx context.Context, viewer domain.Viewer) (*ports.AccountOverview, error) {
	if err := requireProfile(viewer); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("account overview: %w", err)
	}
	orders, _, err := s.orders.List(ctx, ports.OrderFilter{UserID: viewer.UserID, Page: 1, Limit: recentOrdersOnAccount})
	if err != nil {
		return nil, fmt.Errorf("account overview: %w", err)
	}
	addrs, err := s.addresses.ListByUser(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("account overview: %w", err)
	}

	return &ports.AccountOverview{User: user, RecentOrders: orders, Addresses: len(addrs)}, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, viewer domain.Viewer, in ports.ProfileInput) (*domain.User, error) {
	if err := requireProfile(viewer); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.InvalidInput("name is required")
	}

	user, err := s.users.UpdateProfile(ctx, viewer.UserID, name, strings.TrimSpace(in.Phone), time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return user, nil
}

// SwitchRole changes the operating mode. The pair is re-read from the store
// rather than trusted from the viewer so a revoked grant takes effect.
func (s *AccountService) SwitchRole(ctx context.Context, viewer domain.Viewer, target string) (domain.RolePair, error) {
	if err := requireProfile(viewer); err != nil {
		return domain.RolePair{}, err
	}
	role, err := domain.ParseRole(target)
	if err != nil {
		return domain.RolePair{}, err
	}

	user, err := s.users.FindByID(ctx, viewer.UserID)
	if err != nil {
		return domain.RolePair{}, fmt.Errorf("switch role: %w", err)
	}
	next, err := user.Roles.SwitchActiveRole(role)
	if err != nil {
		s.log.Warn().Str("user_id", user.ID).Str("target", target).Msg("role switch refused")
		return domain.RolePair{}, err
	}
	if next.Active() == user.Roles.Active() {
		return next, nil
	}

	if err := s.users.UpdateActiveRole(ctx, user.ID, next.Active(), time.Now().UTC()); err != nil {
		return domain.RolePair{}, fmt.Errorf("switch role: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("active_role", string(next.Active())).Msg("active role switched")
	return next, nil
}

func (s *AccountService) Addresses(ctx context.Context, viewer domain.Viewer) ([]domain.Address, error) {
	if err := requireProfile(viewer); err != nil {
		return nil, err
	}
	addrs, err := s.addresses.ListByUser(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w", err)
	}
	return addrs, nil
}

// CreateAddress makes the first address of a user its default.
func (s *AccountService) CreateAddress(ctx context.Context, viewer domain.Viewer, in ports.AddressInput) (*domain.Address, error) {
	if err := requireProfile(viewer); err != nil {
		return nil, err
	}
	if err := validateAddress(in); err != nil {
		return nil, err
	}

	existing, err := s.addresses.ListByUser(ctx, viewer.UserID)
	if err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	makeDefault := in.IsDefault || len(existing) == 0

	now := time.Now().UTC()
	addr := addressFromInput(in)
	addr.ID = uuid.NewString()
	addr.UserID = viewer.UserID
	addr.IsDefault = makeDefault
	addr.CreatedAt = now
	addr.UpdatedAt = now
	if err := s.addresses.Create(ctx, addr); err != nil {
		return nil, fmt.Errorf("create address: %w", err)
	}
	return addr, nil
}

func (s *AccountService) UpdateAddress(ctx context.Context, viewer domain.Viewer, id string, in ports.AddressInput) (*domain.Address, error) {
	if err := requireProfile(viewer); err != nil {
		return nil, err
	}
	if err := validateAddress(in); err != nil {
		return nil, err
	}

	addr := addressFromInput(in)
	addr.ID = id
	addr.UserID = viewer.UserID
	addr.UpdatedAt = time.Now().UTC()
	if err := s.addresses.Update(ctx, addr); err != nil {
		return nil, fmt.Errorf("update address: %w", err)
	}
	return addr, nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, viewer domain.Viewer, id string) error {
	if err := requireProfile(viewer); err != nil {
		return err
	}
	if err := s.addresses.Delete(ctx, viewer.UserID, id); err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return nil
}

func validateAddress(in ports.AddressInput) error {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return domain.InvalidInput("full_name is required")
	case strings.TrimSpace(in.Line1) == "":
		return domain.InvalidInput("line1 is required")
	case strings.TrimSpace(in.PostalCode) == "":
		return domain.InvalidInput("postal_code is required")
	case strings.TrimSpace(in.City) == "":
		return domain.InvalidInput("city is required")
	case len(strings.TrimSpace(in.Country)) != 2:
		return domain.InvalidInput("country must be an ISO 3166-1 alpha-2 code")
	}
	return nil
}

func addressFromInput(in ports.AddressInput) *domain.Address {
	return &domain.Address{
		Label:      strings.TrimSpace(in.Label),
		FullName:   strings.TrimSpace(in.FullName),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		PostalCode: strings.TrimSpace(in.PostalCode),
		City:       strings.TrimSpace(in.City),
		Country:    strings.ToUpper(strings.TrimSpace(in.Country)),
		Phone:      strings.TrimSpace(in.Phone),
		IsDefault:  in.IsDefault,
	}
}
