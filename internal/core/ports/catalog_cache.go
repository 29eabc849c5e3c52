package ports

import "context"

// CatalogCache stores rendered catalog responses indexed by revalidation tags.
type CatalogCache interface {
	// Get decodes the cached value into dst and reports whether it was present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, tags []string) error
	// InvalidateTags drops every entry indexed under any of tags and returns
	// the number of entries removed.
	InvalidateTags(ctx context.Context, tags ...string) (int64, error)
}
