package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

func catalogProducts() []domain.Product {
	return []domain.Product{
		{ID: "p1", Slug: "bague-or", Name: "Bague or", Category: "bagues", PriceCents: 12000, Stock: 4, Active: true},
		{ID: "p2", Slug: "collier-perle", Name: "Collier perle", Category: "colliers", PriceCents: 8000, Stock: 10, Active: true},
		{ID: "p3", Slug: "archive", Name: "Archive", Category: "bagues", PriceCents: 1000, Stock: 0, Active: false},
	}
}

func TestCatalogService_List_Defaults(t *testing.T) {
	repo := newStubProductRepo(catalogProducts()...)
	svc := NewCatalogService(repo, newStubCache(), zerolog.Nop())

	page, err := svc.List(context.Background(), ports.CatalogQuery{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.Page != 1 || page.Pagination.Limit != 12 {
		t.Errorf("unexpected defaults: %+v", page.Pagination)
	}
	if page.Pagination.Total != 2 || len(page.Data) != 2 {
		t.Errorf("expected only active products, got %d", len(page.Data))
	}
}

func TestCatalogService_List_LimitCapped(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(), newStubCache(), zerolog.Nop())

	page, err := svc.List(context.Background(), ports.CatalogQuery{Limit: 500})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Pagination.Limit != 100 {
		t.Fatalf("expected limit capped at 100, got %d", page.Pagination.Limit)
	}
	if page.Data == nil {
		t.Fatalf("empty page must serialize as [] not null")
	}
}

func TestCatalogService_List_InvalidInput(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(), newStubCache(), zerolog.Nop())

	for _, q := range []ports.CatalogQuery{{Sort: "popularity"}, {Page: -1}, {Limit: -5}} {
		if _, err := svc.List(context.Background(), q); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("query %+v: expected ErrInvalidInput, got %v", q, err)
		}
	}
}

func TestCatalogService_List_ServedFromCacheUntilRevalidated(t *testing.T) {
	repo := newStubProductRepo(catalogProducts()...)
	cache := newStubCache()
	svc := NewCatalogService(repo, cache, zerolog.Nop())
	q := ports.CatalogQuery{Category: "bagues"}

	for i := 0; i < 3; i++ {
		if _, err := svc.List(context.Background(), q); err != nil {
			t.Fatalf("List #%d: %v", i, err)
		}
	}
	if repo.listCalls != 1 {
		t.Fatalf("expected 1 store query, got %d", repo.listCalls)
	}

	if _, err := cache.InvalidateTags(context.Background(), TagCategory("bagues")); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.List(context.Background(), q); err != nil {
		t.Fatalf("List after invalidation: %v", err)
	}
	if repo.listCalls != 2 {
		t.Fatalf("expected a fresh store query after invalidation, got %d", repo.listCalls)
	}
}

func TestCatalogService_List_CacheFailureFallsBackToStore(t *testing.T) {
	repo := newStubProductRepo(catalogProducts()...)
	cache := newStubCache()
	cache.getErr = errStore
	svc := NewCatalogService(repo, cache, zerolog.Nop())

	if _, err := svc.List(context.Background(), ports.CatalogQuery{}); err != nil {
		t.Fatalf("cache failure must not fail the read: %v", err)
	}
}

func TestCatalogService_Get(t *testing.T) {
	svc := NewCatalogService(newStubProductRepo(catalogProducts()...), newStubCache(), zerolog.Nop())

	p, err := svc.Get(context.Background(), "bague-or")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.ID != "p1" {
		t.Fatalf("unexpected product %s", p.ID)
	}
	if _, err := svc.Get(context.Background(), "archive"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("inactive product must be not found, got %v", err)
	}
	if _, err := svc.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCatalogListKey_StableAcrossEquivalentQueries(t *testing.T) {
	a, _ := normalizeCatalogQuery(ports.CatalogQuery{Category: " bagues ", Search: "OR"})
	b, _ := normalizeCatalogQuery(ports.CatalogQuery{Category: "bagues", Search: "or", Sort: "newest", Page: 1, Limit: 12})
	if catalogListKey(a) != catalogListKey(b) {
		t.Fatalf("keys differ: %q vs %q", catalogListKey(a), catalogListKey(b))
	}
}
