// Package cache provides a Redis read-through layer over the content
// repository. Entries live for the site revalidation interval.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"legalpub/internal/logger"
	"legalpub/internal/model"
	"legalpub/internal/repository"
)

const keyPrefix = "legalpub:docs:"

// DocumentCache decorates a DocumentRepository. Redis failures degrade to
// direct repository reads; errors from the repository are never cached.
type DocumentCache struct {
	next  repository.DocumentRepository
	rdb   redis.UniversalClient
	ttl   time.Duration
	log   *logger.Logger
	group singleflight.Group
}

var _ repository.DocumentRepository = (*DocumentCache)(nil)

// NewDocumentCache wraps next with a cache whose entries expire after ttl.
func NewDocumentCache(next repository.DocumentRepository, rdb redis.UniversalClient, ttl time.Duration, log *logger.Logger) *DocumentCache {
	if log == nil {
		log = logger.Nop()
	}
	return &DocumentCache{
		next: next,
		rdb:  rdb,
		ttl:  ttl,
		log:  log.With("component", "document_cache"),
	}
}

func listKey() string { return keyPrefix + "list" }
func slugsKey() string { return keyPrefix + "slugs" }
func recentKey(limit int) string { return fmt.Sprintf("%srecent:%d", keyPrefix, limit) }
func documentKey(slug string) string { return keyPrefix + "slug:" + slug }

// readThrough returns the cached value under key or loads, stores and returns it.
func readThrough[T any](ctx context.Context, c *DocumentCache, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v T
		if uerr := json.Unmarshal(raw, &v); uerr == nil {
			return v, nil
		}
		c.log.Warn("cache_decode_failed", "key", key)
	case !errors.Is(err, redis.Nil):
		c.log.Warn("cache_get_failed", "key", key, "error", err.Error())
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if b, merr := json.Marshal(loaded); merr == nil {
			if serr := c.rdb.Set(ctx, key, b, c.ttl).Err(); serr != nil {
				c.log.Warn("cache_set_failed", "key", key, "error", serr.Error())
			}
		}
		return loaded, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}

func (c *DocumentCache) ListPublished(ctx context.Context) ([]model.DocumentSummary, error) {
	return readThrough(ctx, c, listKey(), c.next.ListPublished)
}

func (c *DocumentCache) RecentPublished(ctx context.Context, limit int) ([]model.DocumentSummary, error) {
	return readThrough(ctx, c, recentKey(limit), func(ctx context.Context) ([]model.DocumentSummary, error) {
		return c.next.RecentPublished(ctx, limit)
	})
}

func (c *DocumentCache) FindPublishedBySlug(ctx context.Context, slug string) (*model.LegalDocument, error) {
	return readThrough(ctx, c, documentKey(slug), func(ctx context.Context) (*model.LegalDocument, error) {
		return c.next.FindPublishedBySlug(ctx, slug)
	})
}

func (c *DocumentCache) PublishedSlugs(ctx context.Context) ([]model.SlugEntry, error) {
	return readThrough(ctx, c, slugsKey(), c.next.PublishedSlugs)
}

// Upsert writes through and invalidates every entry the document can appear in.
func (c *DocumentCache) Upsert(ctx context.Context, doc *model.LegalDocument) error {
	if err := c.next.Upsert(ctx, doc); err != nil {
		return err
	}
	keys := []string{listKey(), slugsKey(), documentKey(doc.Slug)}
	iter := c.rdb.Scan(ctx, 0, keyPrefix+"recent:*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		c.log.Warn("cache_scan_failed", "error", err.Error())
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("cache_invalidate_failed", "slug", doc.Slug, "error", err.Error())
	}
	return nil
}
