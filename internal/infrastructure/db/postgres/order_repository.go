package postgres

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const orderColumns = `id, user_id, email, status, items, total_cents, currency, promotion_code, COALESCE(checkout_session_id, '') AS checkout_session_id, created_at, updated_at`

type OrderRepository struct {
	db *sqlx.DB
}

var _ ports.OrderRepository = (*OrderRepository)(nil)

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// orderItems is stored as a JSONB array.
type orderItems []domain.OrderItem

func (o orderItems) Value() (driver.Value, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

func (o *orderItems) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*o = nil
		return nil
	default:
		return errors.New("orderItems: unsupported source type")
	}
	return json.Unmarshal(raw, o)
}

type orderRow struct {
	ID                string     `db:"id"`
	UserID            string     `db:"user_id"`
	Email             string     `db:"email"`
	Status            string     `db:"status"`
	Items             orderItems `db:"items"`
	TotalCents        int64      `db:"total_cents"`
	Currency          string     `db:"currency"`
	PromotionCode     string     `db:"promotion_code"`
	CheckoutSessionID string     `db:"checkout_session_id"`
	CreatedAt         time.Time  `db:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at"`
}

func (r orderRow) toDomain() domain.Order {
	return domain.Order{
		ID:                r.ID,
		UserID:            r.UserID,
		Email:             r.Email,
		Status:            domain.OrderStatus(r.Status),
		Items:             []domain.OrderItem(r.Items),
		TotalCents:        r.TotalCents,
		Currency:          r.Currency,
		PromotionCode:     r.PromotionCode,
		CheckoutSessionID: r.CheckoutSessionID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	var sessionID any
	if o.CheckoutSessionID != "" {
		sessionID = o.CheckoutSessionID
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO commandes (id, user_id, email, status, items, total_cents, currency, promotion_code, checkout_session_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, o.ID, o.UserID, o.Email, string(o.Status), orderItems(o.Items), o.TotalCents, o.Currency,
		o.PromotionCode, sessionID, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM commandes WHERE id = $1`, id)
}

func (r *OrderRepository) FindByCheckoutSession(ctx context.Context, sessionID string) (*domain.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM commandes WHERE checkout_session_id = $1`, sessionID)
}

func (r *OrderRepository) findOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var row orderRow
	err := r.db.GetContext(ctx, &row, query, arg)
	if missing(err) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	o := row.toDomain()
	return &o, nil
}

func (r *OrderRepository) CountByStatus(ctx context.Context, status domain.OrderStatus) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM commandes WHERE status = $1`, string(status)); err != nil {
		return 0, fmt.Errorf("count orders: %w", err)
	}
	return n, nil
}

func (r *OrderRepository) List(ctx context.Context, f ports.OrderFilter) ([]domain.Order, int64, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, "user_id = $"+strconv.Itoa(len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, "status = $"+strconv.Itoa(len(args)))
	}
	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM commandes`+clause, args...)
	if missing(err) {
		return []domain.Order{}, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM commandes%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, orderColumns, clause, n+1, n+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var rows []orderRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select orders: %w", err)
	}
	out := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, total, nil
}

// TransitionStatus is a compare-and-set on status. Callers read the order
// first, so zero affected rows means another writer got there before us.
func (r *OrderRepository) TransitionStatus(ctx context.Context, id string, from, to domain.OrderStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE commandes SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, string(from), string(to), at)
	if missing(err) {
		return domain.ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return notFound(res, domain.ErrOrderStatusChanged)
}
