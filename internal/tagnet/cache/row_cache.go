package cache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/tagnet-backend/internal/logger"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/domain"
	"github.com/GoSim-25-26J-441/tagnet-backend/internal/tagnet/query"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "tagnet:rows:" // tagnet:rows:{kind}:{params}
	defaultTTL = 10 * time.Minute
)

// CachedStore caches raw query rows in Redis in front of another Store.
// Only the query service's output is cached; graphs are always rebuilt.
// Redis failures are logged and fall through to the underlying store.
type CachedStore struct {
	next   query.Store
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

var _ query.Store = (*CachedStore)(nil)

func NewCachedStore(next query.Store, client *redis.Client, ttl time.Duration, log *logger.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &CachedStore{next: next, client: client, ttl: ttl, log: logger.OrNop(log)}
}

func (c *CachedStore) TopTags(ctx context.Context, limit int) ([]domain.TotalRow, error) {
	var out []domain.TotalRow
	err := c.cached(ctx, fmt.Sprintf("tags:%d", limit), &out, func() (interface{}, error) {
		return c.next.TopTags(ctx, limit)
	})
	return out, err
}

func (c *CachedStore) TopTagsBetween(ctx context.Context, w domain.Window, limit int) ([]domain.TotalRow, error) {
	var out []domain.TotalRow
	err := c.cached(ctx, fmt.Sprintf("total:%s:%d", windowKey(w), limit), &out, func() (interface{}, error) {
		return c.next.TopTagsBetween(ctx, w, limit)
	})
	return out, err
}

func (c *CachedStore) Cooccurrence(ctx context.Context, w domain.Window, limit int) ([]domain.CooccurrenceRow, error) {
	var out []domain.CooccurrenceRow
	err := c.cached(ctx, fmt.Sprintf("graph:%s:%d", windowKey(w), limit), &out, func() (interface{}, error) {
		return c.next.Cooccurrence(ctx, w, limit)
	})
	return out, err
}

func (c *CachedStore) Monthly(ctx context.Context, tags []string) ([]domain.MonthlyRow, error) {
	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)

	var out []domain.MonthlyRow
	err := c.cached(ctx, "monthly:"+strings.Join(sorted, ","), &out, func() (interface{}, error) {
		return c.next.Monthly(ctx, tags)
	})
	return out, err
}

// Invalidate removes every cached row set.
func (c *CachedStore) Invalidate(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cache keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete cache keys: %w", err)
	}
	return nil
}

// cached decodes the entry under key into dst, or calls load, stores its
// result and decodes that into dst so hits and misses yield the same
// value types.
func (c *CachedStore) cached(ctx context.Context, key string, dst interface{}, load func() (interface{}, error)) error {
	key = keyPrefix + key
	log := c.log.For(ctx)

	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if err := decode(data, dst); err == nil {
			return nil
		}
		log.Warn("discarding undecodable cache entry", "key", key)
	case err != redis.Nil:
		log.Warn("row cache read failed", "key", key, "error", err)
	}

	rows, err := load()
	if err != nil {
		return err
	}

	data, err = json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Warn("row cache write failed", "key", key, "error", err)
	}
	return decode(data, dst)
}

func decode(data []byte, dst interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(dst)
}

func windowKey(w domain.Window) string {
	return w.Start.UTC().Format(time.RFC3339) + "/" + w.End.UTC().Format(time.RFC3339)
}
