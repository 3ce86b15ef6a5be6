package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryCache is a process-local Cache used when Redis is not configured.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memItem
	ints  map[string]int64
	now   func() time.Time
}

type memItem struct {
	val     []byte
	expires time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{items: map[string]memItem{}, ints: map[string]int64{}, now: time.Now}
}

func (c *MemoryCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok && !it.expires.IsZero() && c.now().After(it.expires) {
		delete(c.items, key)
		ok = false
	}
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(it.val, dst); err != nil {
		_ = c.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

func (c *MemoryCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	it := memItem{val: b}
	if ttl > 0 {
		it.expires = c.now().Add(ttl)
	}
	c.mu.Lock()
	c.items[key] = it
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.items, k)
	}
	return nil
}

func (c *MemoryCache) Incr(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ints[key]++
	return c.ints[key], nil
}

func (c *MemoryCache) GetInt(ctx context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ints[key], nil
}
