package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

// Notifier records back-office notifications.
type Notifier interface {
	Notify(ctx context.Context, kind domain.NotificationKind, title, message, link string) error
}

type InventoryService struct {
	products  ports.ProductRepository
	cache     ports.CatalogCache
	notifier  Notifier
	threshold int
	log       zerolog.Logger
}

func NewInventoryService(products ports.ProductRepository, cache ports.CatalogCache, notifier Notifier, lowStockThreshold int, log zerolog.Logger) *InventoryService {
	return &InventoryService{products: products, cache: cache, notifier: notifier, threshold: lowStockThreshold, log: log}
}

// Overview backs the /admin/stocks page.
func (s *InventoryService) Overview(ctx context.Context, viewer domain.Viewer) (*ports.InventoryOverview, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	products, err := s.products.ListInventory(ctx)
	if err != nil {
		return nil, fmt.Errorf("inventory overview: %w", err)
	}

	out := &ports.InventoryOverview{Items: make([]ports.InventoryItem, 0, len(products)), Threshold: s.threshold}
	for _, p := range products {
		low := p.IsLowStock(s.threshold)
		if low {
			out.LowStockCount++
		}
		out.Items = append(out.Items, ports.InventoryItem{Product: p, LowStock: low})
	}
	return out, nil
}

func (s *InventoryService) SetStock(ctx context.Context, viewer domain.Viewer, productID string, stock int) (*domain.Product, error) {
	if err := requireAdminMode(viewer); err != nil {
		return nil, err
	}
	if stock < 0 {
		return nil, domain.InvalidInput("stock must be zero or more")
	}

	p, err := s.products.UpdateStock(ctx, productID, stock, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("set stock: %w", err)
	}
	s.log.Info().Str("product_id", p.ID).Int("stock", p.Stock).Str("user_id", viewer.UserID).Msg("stock updated")

	s.afterStockChange(ctx, p)
	return p, nil
}

// ApplySale decrements stock for a paid order. A line that fails is logged
// and the remaining lines are still applied.
func (s *InventoryService) ApplySale(ctx context.Context, items []domain.OrderItem) error {
	var errs []error
	for _, it := range items {
		p, err := s.products.DecrementStock(ctx, it.ProductID, it.Quantity, time.Now().UTC())
		if err != nil {
			s.log.Error().Err(err).Str("product_id", it.ProductID).Int("quantity", it.Quantity).Msg("stock decrement failed")
			errs = append(errs, fmt.Errorf("decrement %s: %w", it.ProductID, err))
			continue
		}
		s.afterStockChange(ctx, p)
	}
	return errors.Join(errs...)
}

func (s *InventoryService) afterStockChange(ctx context.Context, p *domain.Product) {
	tags := []string{TagProducts, TagProduct(p.Slug)}
	if p.Category != "" {
		tags = append(tags, TagCategory(p.Category))
	}
	if p.Collection != "" {
		tags = append(tags, TagCollection(p.Collection))
	}
	if _, err := s.cache.InvalidateTags(ctx, tags...); err != nil {
		s.log.Warn().Err(err).Strs("tags", tags).Msg("catalog invalidation failed")
	}

	if !p.IsLowStock(s.threshold) {
		return
	}
	title := "Stock bas: " + p.Name
	msg := fmt.Sprintf("Il reste %d unité(s) de %s (seuil %d).", p.Stock, p.Name, s.threshold)
	if err := s.notifier.Notify(ctx, domain.NotificationLowStock, title, msg, "/admin/stocks"); err != nil {
		s.log.Error().Err(err).Str("product_id", p.ID).Msg("low stock notification failed")
	}
}
