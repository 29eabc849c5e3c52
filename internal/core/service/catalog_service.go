package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/atelier-boutique/storefront/internal/core/domain"
	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const (
	defaultCatalogLimit = 12
	maxCatalogLimit     = 100
)

// Cache tags understood by the revalidation endpoint.
const TagProducts = "products"

func TagCategory(c string) string   { return "category:" + c }
func TagCollection(c string) string { return "collection:" + c }
func TagProduct(slug string) string { return "product:" + slug }

// CatalogService serves the public catalog through the tag-indexed cache.
// A cache failure never fails a read; the store is queried instead.
type CatalogService struct {
	products ports.ProductRepository
	cache    ports.CatalogCache
	log      zerolog.Logger
}

func NewCatalogService(products ports.ProductRepository, cache ports.CatalogCache, log zerolog.Logger) *CatalogService {
	return &CatalogService{products: products, cache: cache, log: log}
}

func (s *CatalogService) List(ctx context.Context, q ports.CatalogQuery) (*ports.ProductPage, error) {
	filter, err := normalizeCatalogQuery(q)
	if err != nil {
		return nil, err
	}

	key := catalogListKey(filter)
	var cached ports.ProductPage
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	items, total, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if items == nil {
		items = []domain.Product{}
	}
	page := &ports.ProductPage{Data: items, Pagination: paginate(filter.Page, filter.Limit, total)}

	tags := []string{TagProducts}
	if filter.Category != "" {
		tags = append(tags, TagCategory(filter.Category))
	}
	if filter.Collection != "" {
		tags = append(tags, TagCollection(filter.Collection))
	}
	s.cacheSet(ctx, key, page, tags)
	return page, nil
}

// Get returns an active product by slug. Inactive products are not found.
func (s *CatalogService) Get(ctx context.Context, slug string) (*domain.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, domain.ErrProductNotFound
	}

	key := "product:" + slug
	var cached domain.Product
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if !p.Active {
		return nil, domain.ErrProductNotFound
	}
	s.cacheSet(ctx, key, p, []string{TagProducts, TagProduct(slug)})
	return p, nil
}

func (s *CatalogService) cacheGet(ctx context.Context, key string, dst any) bool {
	hit, err := s.cache.Get(ctx, key, dst)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		return false
	}
	return hit
}

func (s *CatalogService) cacheSet(ctx context.Context, key string, v any, tags []string) {
	if err := s.cache.Set(ctx, key, v, tags); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
	}
}

func normalizeCatalogQuery(q ports.CatalogQuery) (ports.ProductFilter, error) {
	sort, err := domain.ParseProductSort(strings.TrimSpace(q.Sort))
	if err != nil {
		return ports.ProductFilter{}, err
	}
	page, limit, err := pageBounds(q.Page, q.Limit, defaultCatalogLimit, maxCatalogLimit)
	if err != nil {
		return ports.ProductFilter{}, err
	}
	return ports.ProductFilter{
		Category:   strings.TrimSpace(q.Category),
		Collection: strings.TrimSpace(q.Collection),
		Search:     strings.TrimSpace(q.Search),
		Sort:       sort,
		Page:       page,
		Limit:      limit,
	}, nil
}

// catalogListKey is stable for equal normalized queries.
func catalogListKey(f ports.ProductFilter) string {
	v := url.Values{}
	v.Set("category", f.Category)
	v.Set("collection", f.Collection)
	v.Set("q", strings.ToLower(f.Search))
	v.Set("sort", string(f.Sort))
	v.Set("page", strconv.Itoa(f.Page))
	v.Set("limit", strconv.Itoa(f.Limit))
	return "products:" + v.Encode()
}
