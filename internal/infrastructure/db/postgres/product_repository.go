package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const productColumns = `id, slug, name, description, category, collection, price_cents, currency, stock, image_url, active, created_at, updated_at`

var productOrder = map[domain.ProductSort]string{
	domain.SortNewest:    "created_at DESC, id",
	domain.SortPriceAsc:  "price_cents ASC, id",
	domain.SortPriceDesc: "price_cents DESC, id",
	domain.SortName:      "name ASC, id",
}

type ProductRepository struct {
	db *sqlx.DB
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

type productRow struct {
	ID          string    `db:"id"`
	Slug        string    `db:"slug"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Category    string    `db:"category"`
	Collection  string    `db:"collection"`
	PriceCents  int64     `db:"price_cents"`
	Currency    string    `db:"currency"`
	Stock       int       `db:"stock"`
	ImageURL    string    `db:"image_url"`
	Active      bool      `db:"active"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r productRow) toDomain() domain.Product {
	return domain.Product(r)
}

func productsFromRows(rows []productRow) []domain.Product {
	out := make([]domain.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}

// List builds its WHERE clause from the filter; ORDER BY comes from a fixed
// whitelist, never from input.
func (r *ProductRepository) List(ctx context.Context, f ports.ProductFilter) ([]domain.Product, int64, error) {
	where := []string{"active = true"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(cond, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Category != "" {
		add("category = ?", f.Category)
	}
	if f.Collection != "" {
		add("collection = ?", f.Collection)
	}
	if f.Search != "" {
		add("(name ILIKE ? OR description ILIKE ?)", "%"+escapeLike(f.Search)+"%")
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM produits`+clause, args...); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	order, ok := productOrder[f.Sort]
	if !ok {
		order = productOrder[domain.SortNewest]
	}
	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM produits%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, clause, order, n+1, n+2)
	args = append(args, f.Limit, (f.Page-1)*f.Limit)

	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select products: %w", err)
	}
	return productsFromRows(rows), total, nil
}

func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM produits WHERE slug = $1`, slug)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM produits WHERE id = $1`, id)
}

func (r *ProductRepository) findOne(ctx context.Context, query string, args ...any) (*domain.Product, error) {
	var row productRow
	err := r.db.GetContext(ctx, &row, query, args...)
	if missing(err) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select product: %w", err)
	}
	p := row.toDomain()
	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []productRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM produits WHERE id::text = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("select products by id: %w", err)
	}
	return productsFromRows(rows), nil
}

func (r *ProductRepository) ListInventory(ctx context.Context) ([]domain.Product, error) {
	var rows []productRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+productColumns+` FROM produits ORDER BY stock ASC, name ASC`); err != nil {
		return nil, fmt.Errorf("select inventory: %w", err)
	}
	return productsFromRows(rows), nil
}

func (r *ProductRepository) UpdateStock(ctx context.Context, id string, stock int, at time.Time) (*domain.Product, error) {
	return r.findOne(ctx, `
		UPDATE produits SET stock = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+productColumns, id, stock, at)
}

func (r *ProductRepository) DecrementStock(ctx context.Context, id string, qty int, at time.Time) (*domain.Product, error) {
	return r.findOne(ctx, `
		UPDATE produits SET stock = GREATEST(stock - $2, 0), updated_at = $3
		WHERE id = $1
		RETURNING `+productColumns, id, qty, at)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
