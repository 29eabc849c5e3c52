package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atelier-boutique/storefront/internal/core/ports"
)

const defaultCatalogTTL = 10 * time.Minute

// CatalogCache stores JSON entries under catalog:entry:<key> and indexes
// them in one set per tag, catalog:tag:<tag>. A tag set always lives at
// least as long as the newest entry it points to.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ports.CatalogCache = (*CatalogCache)(nil)

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl <= 0 {
		ttl = defaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

func entryKey(key string) string { return "catalog:entry:" + key }
func tagKey(tag string) string   { return "catalog:tag:" + tag }

func (c *CatalogCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("catalog cache get: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// A stale shape is a miss; the next Set overwrites it.
		return false, nil
	}
	return true, nil
}

func (c *CatalogCache) Set(ctx context.Context, key string, value any, tags []string) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("catalog cache marshal: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, entryKey(key), data, c.ttl)
		for _, tag := range tags {
			p.SAdd(ctx, tagKey(tag), key)
			p.Expire(ctx, tagKey(tag), c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("catalog cache set: %w", err)
	}
	return nil
}

// InvalidateTags deletes every entry indexed under tags, then the tag sets.
// The count only includes entries that still existed.
func (c *CatalogCache) InvalidateTags(ctx context.Context, tags ...string) (int64, error) {
	if len(tags) == 0 {
		return 0, nil
	}

	seen := make(map[string]struct{})
	var keys []string
	tagKeys := make([]string, 0, len(tags))
	for _, tag := range tags {
		tagKeys = append(tagKeys, tagKey(tag))
		members, err := c.client.SMembers(ctx, tagKey(tag)).Result()
		if err != nil {
			return 0, fmt.Errorf("catalog cache members %s: %w", tag, err)
		}
		for _, m := range members {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			keys = append(keys, entryKey(m))
		}
	}

	var purged int64
	if len(keys) > 0 {
		n, err := c.client.Del(ctx, keys...).Result()
		if err != nil {
			return 0, fmt.Errorf("catalog cache purge: %w", err)
		}
		purged = n
	}
	if err := c.client.Del(ctx, tagKeys...).Err(); err != nil {
		return purged, fmt.Errorf("catalog cache drop tags: %w", err)
	}
	return purged, nil
}
