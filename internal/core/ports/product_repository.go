package ports

import (
	"context"
	"time"

	"github.com/atelier-boutique/storefront/internal/core/domain"
)

// ProductFilter carries the catalog query. Only active products are listed.
type ProductFilter struct {
	Category   string
	Collection string
	Search     string
	Sort       domain.ProductSort
	Page       int // 1-based
	Limit      int
}

// ProductRepository defines persistence operations for the produits table.
type ProductRepository interface {
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int64, error)
	FindBySlug(ctx context.Context, slug string) (*domain.Product, error)
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]domain.Product, error)
	// ListInventory returns every product, active or not, ordered by stock.
	ListInventory(ctx context.Context) ([]domain.Product, error)
	UpdateStock(ctx context.Context, id string, stock int, at time.Time) (*domain.Product, error)
	// DecrementStock never takes stock below zero.
	DecrementStock(ctx context.Context, id string, qty int, at time.Time) (*domain.Product, error)
}
