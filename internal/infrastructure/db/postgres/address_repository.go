package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const addressColumns = `id, user_id, label, full_name, line1, line2, postal_code, city, country, phone, is_default, created_at, updated_at`

type AddressRepository struct {
	db *sqlx.DB
}

var _ ports.AddressRepository = (*AddressRepository)(nil)

func NewAddressRepository(db *sqlx.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

type addressRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	Label      string    `db:"label"`
	FullName   string    `db:"full_name"`
	Line1      string    `db:"line1"`
	Line2      string    `db:"line2"`
	PostalCode string    `db:"postal_code"`
	City       string    `db:"city"`
	Country    string    `db:"country"`
	Phone      string    `db:"phone"`
	IsDefault  bool      `db:"is_default"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]domain.Address, error) {
	var rows []addressRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+addressColumns+` FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("select addresses: %w", err)
	}
	out := make([]domain.Address, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Address(row))
	}
	return out, nil
}

// Create inserts the address. A default address takes the flag from the
// user's previous default in the same transaction.
func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if a.IsDefault {
			if err := clearDefault(ctx, tx, a.UserID, a.ID); err != nil {
				return err
			}
		}
		_, err := tx.NamedExecContext(ctx, `
			INSERT INTO addresses (`+addressColumns+`)
			VALUES (:id, :user_id, :label, :full_name, :line1, :line2, :postal_code, :city, :country, :phone, :is_default, :created_at, :updated_at)
		`, addressRow(*a))
		if err != nil {
			return fmt.Errorf("insert address: %w", err)
		}
		return nil
	})
}

// Update only touches a row owned by a.UserID and fills a.CreatedAt back.
// When the row is missing the default flag of the other addresses is left
// as it was.
func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	return inTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if a.IsDefault {
			if err := clearDefault(ctx, tx, a.UserID, a.ID); err != nil {
				return err
			}
		}
		err := tx.GetContext(ctx, &a.CreatedAt, `
			UPDATE addresses
			SET label = $3, full_name = $4, line1 = $5, line2 = $6, postal_code = $7,
			    city = $8, country = $9, phone = $10, is_default = $11, updated_at = $12
			WHERE id = $1 AND user_id = $2
			RETURNING created_at
		`, a.ID, a.UserID, a.Label, a.FullName, a.Line1, a.Line2, a.PostalCode,
			a.City, a.Country, a.Phone, a.IsDefault, a.UpdatedAt)
		if missing(err) {
			return domain.ErrAddressNotFound
		}
		if err != nil {
			return fmt.Errorf("update address: %w", err)
		}
		return nil
	})
}

func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if missing(err) {
		return domain.ErrAddressNotFound
	}
	if err != nil {
		return fmt.Errorf("delete address: %w", err)
	}
	return notFound(res, domain.ErrAddressNotFound)
}

// clearDefault runs before the write so addresses_one_default_idx never
// sees two defaults.
func clearDefault(ctx context.Context, tx *sqlx.Tx, userID, keepID string) error {
	_, err := tx.ExecContext(ctx, `UPDATE addresses SET is_default = false WHERE user_id = $1 AND id <> $2 AND is_default`, userID, keepID)
	if missing(err) {
		return domain.ErrAddressNotFound
	}
	if err != nil {
		return fmt.Errorf("clear default address: %w", err)
	}
	return nil
}
