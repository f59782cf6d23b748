package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// localCache wraps go-cache behind the Cache interface.
type localCache struct {
	store *gocache.Cache
}

// NewLocalCache builds the in-process backend.
func NewLocalCache(cfg LocalConfig) Cache {
	if cfg.DefaultExpiration <= 0 {
		cfg = DefaultConfig().Local
	}
	return &localCache{store: gocache.New(cfg.DefaultExpiration, cfg.CleanupInterval)}
}

func (c *localCache) Get(_ context.Context, key string) (interface{}, bool) {
	return c.store.Get(key)
}

func (c *localCache) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	c.store.Set(key, value, expiration)
	return nil
}

func (c *localCache) Delete(_ context.Context, key string) error {
	c.store.Delete(key)
	return nil
}

func (c *localCache) Exists(_ context.Context, key string) bool {
	_, found := c.store.Get(key)
	return found
}

func (c *localCache) Clear(_ context.Context) error {
	c.store.Flush()
	return nil
}

func (c *localCache) GetWithTTL(_ context.Context, key string) (interface{}, time.Duration, bool) {
	value, expireAt, found := c.store.GetWithExpiration(key)
	if !found {
		return nil, 0, false
	}
	if expireAt.IsZero() {
		return value, 0, true
	}
	return value, time.Until(expireAt), true
}

func (c *localCache) Close() error {
	c.store.Flush()
	return nil
}
