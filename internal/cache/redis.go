package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/yojanamitra-core/server/internal/core/errx"
	"github.com/yojanamitra-core/server/internal/model"
	logx "github.com/yojanamitra-core/server/pkg/logger"
)

// RedisCache is the shared-store backend. Entry values live under
// cache:response:<fingerprint>; a set per scheme ID indexes the fingerprints
// citing it so invalidation is a set walk plus a batched delete.
type RedisCache struct {
	rdb redis.Cmdable
	cfg Config
}

func NewRedisCache(rdb redis.Cmdable, cfg Config) *RedisCache {
	return &RedisCache{rdb: rdb, cfg: cfg}
}

func (c *RedisCache) entryKey(fingerprint string) string {
	return fmt.Sprintf("cache:response:%s", fingerprint)
}

func (c *RedisCache) schemeIndexKey(schemeID string) string {
	return fmt.Sprintf("cache:scheme:%s", schemeID)
}

// Get implements Cache. Expired entries vanish via the key TTL, so anything
// readable here is within its TTL.
func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*model.CacheEntry, bool, error) {
	raw, err := c.rdb.Get(ctx, c.entryKey(fingerprint)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		logx.Error().Err(err).Str("fingerprint", fingerprint).Msg("cache get failed")
		return nil, false, errx.WrapStore(err)
	}

	var entry model.CacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, false, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return &entry, true, nil
}

// Put implements Cache. The scheme index entries outlive nothing: they expire
// with the longest TTL class so a stale index at worst points at keys that
// are already gone.
func (c *RedisCache) Put(ctx context.Context, fingerprint string, entry model.CacheEntry, class Class) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}

	ttl := c.cfg.ttl(class)
	pipe := c.rdb.TxPipeline()
	pipe.Set(ctx, c.entryKey(fingerprint), b, ttl)
	for _, schemeID := range entry.SchemeIDs {
		idx := c.schemeIndexKey(schemeID)
		pipe.SAdd(ctx, idx, fingerprint)
		pipe.Expire(ctx, idx, c.cfg.SchemeDetailTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logx.Error().Err(err).Str("fingerprint", fingerprint).Msg("cache put failed")
		return errx.WrapStore(err)
	}
	return nil
}

// InvalidateByScheme implements Cache.
func (c *RedisCache) InvalidateByScheme(ctx context.Context, schemeID string) error {
	idx := c.schemeIndexKey(schemeID)
	fingerprints, err := c.rdb.SMembers(ctx, idx).Result()
	if err != nil && err != redis.Nil {
		logx.Error().Err(err).Str("scheme_id", schemeID).Msg("cache invalidation index read failed")
		return errx.WrapStore(err)
	}
	if len(fingerprints) == 0 {
		return nil
	}

	keys := make([]string, 0, len(fingerprints)+1)
	for _, fp := range fingerprints {
		keys = append(keys, c.entryKey(fp))
	}
	keys = append(keys, idx)

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		logx.Error().Err(err).Str("scheme_id", schemeID).Msg("cache invalidation delete failed")
		return errx.WrapStore(err)
	}
	logx.Debug().Str("scheme_id", schemeID).Int("entries", len(fingerprints)).Msg("cache entries invalidated for scheme")
	return nil
}

var _ Cache = (*RedisCache)(nil)
