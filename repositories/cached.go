package repositories

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/upb/auth-gateway/models"
)

// CachedStore is a read-through LRU in front of a slower ProfileStore.
// Writes go to the backing store first, then refresh the cache.
type CachedStore struct {
	next   ProfileStore
	cache  *lru.LRU[string, *models.UserProfile]
	hits   atomic.Int64
	misses atomic.Int64
}

// NewCachedStore wraps next with an LRU of the given size and TTL.
func NewCachedStore(next ProfileStore, size int, ttl time.Duration) *CachedStore {
	if size < 1 {
		size = 1
	}
	return &CachedStore{
		next:  next,
		cache: lru.NewLRU[string, *models.UserProfile](size, nil, ttl),
	}
}

func (c *CachedStore) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	if profile, ok := c.cache.Get(uid); ok {
		c.hits.Add(1)
		return profile.Clone(), nil
	}
	c.misses.Add(1)

	profile, err := c.next.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	c.cache.Add(uid, profile.Clone())
	return profile, nil
}

func (c *CachedStore) Set(ctx context.Context, uid string, profile *models.UserProfile) error {
	if err := c.next.Set(ctx, uid, profile); err != nil {
		c.cache.Remove(uid)
		return err
	}
	c.cache.Add(uid, profile.Clone())
	return nil
}

func (c *CachedStore) Delete(ctx context.Context, uid string) error {
	c.cache.Remove(uid)
	return c.next.Delete(ctx, uid)
}

func (c *CachedStore) Clear(ctx context.Context) error {
	c.cache.Purge()
	return c.next.Clear(ctx)
}

// Ping forwards to the backing store when it supports health checks.
func (c *CachedStore) Ping(ctx context.Context) error {
	if hc, ok := c.next.(HealthChecker); ok {
		return hc.Ping(ctx)
	}
	return nil
}

// Close purges the cache and closes the backing store when it is closable.
func (c *CachedStore) Close() error {
	c.cache.Purge()
	if cl, ok := c.next.(Closer); ok {
		return cl.Close()
	}
	return nil
}

// Stats returns cache hit and miss counts.
func (c *CachedStore) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}
