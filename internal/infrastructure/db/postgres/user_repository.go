package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const userColumns = `id, email, name, phone, password_hash, role, active_role, created_at, updated_at`

type UserRepository struct {
	db *sqlx.DB
}

var (
	_ ports.UserRepository = (*UserRepository)(nil)
	_ ports.RoleLookup     = (*UserRepository)(nil)
)

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	Name         string    `db:"name"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	Role         string    `db:"role"`
	ActiveRole   string    `db:"active_role"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r userRow) toDomain() (*domain.User, error) {
	roles, err := domain.NewRolePair(domain.Role(r.Role), domain.Role(r.ActiveRole))
	if err != nil {
		return nil, fmt.Errorf("user %s: %w", r.ID, err)
	}
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		Phone:        r.Phone,
		PasswordHash: r.PasswordHash,
		Roles:        roles,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, u.ID, u.Email, u.Name, u.Phone, u.PasswordHash,
		string(u.Roles.Granted()), string(u.Roles.Active()), u.CreatedAt, u.UpdatedAt)
	if pqCode(err) == codeUniqueViolation {
		return domain.ErrUserExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) findOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, arg); err != nil {
		if missing(err) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain()
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id, name, phone string, at time.Time) (*domain.User, error) {
	var row userRow
	err := r.db.GetContext(ctx, &row, `
		UPDATE users SET name = $2, phone = $3, updated_at = $4
		WHERE id = $1
		RETURNING `+userColumns, id, name, phone, at)
	if missing(err) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return row.toDomain()
}

// UpdateActiveRole relies on the users_active_role_granted constraint as the
// last guard against an admin mode without the grant.
func (r *UserRepository) UpdateActiveRole(ctx context.Context, id string, active domain.Role, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET active_role = $2, updated_at = $3 WHERE id = $1
	`, id, string(active), at)
	if pqCode(err) == codeCheckViolation {
		return domain.ErrInvalidRoleTransition
	}
	if err != nil {
		return fmt.Errorf("update active role: %w", err)
	}
	return notFound(res, domain.ErrUserNotFound)
}

// FindRoles reads only the role columns. A corrupt pair is an error, never a
// guessed role.
func (r *UserRepository) FindRoles(ctx context.Context, userID string) (domain.RolePair, error) {
	var row struct {
		Role       string `db:"role"`
		ActiveRole string `db:"active_role"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT role, active_role FROM users WHERE id = $1`, userID)
	if missing(err) {
		return domain.RolePair{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.RolePair{}, fmt.Errorf("select roles: %w", err)
	}
	return domain.NewRolePair(domain.Role(row.Role), domain.Role(row.ActiveRole))
}
