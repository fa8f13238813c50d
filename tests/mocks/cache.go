package mocks

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/davicafu/epidash/internal/shared/platform/cache"
)

// DummyCache implementa la interfaz de caché sobre mapas, sin TTL real: las
// entradas viven hasta que el test las borra. Con Unavailable=true todas las
// operaciones devuelven ErrCacheUnavailable para probar la degradación.
type DummyCache struct {
	mu          sync.Mutex
	store       map[string][]byte
	hashes      map[string]map[string][]byte
	Unavailable bool
}

var _ cache.Cache = (*DummyCache)(nil)

func NewDummyCache() *DummyCache {
	return &DummyCache{
		store:  make(map[string][]byte),
		hashes: make(map[string]map[string][]byte),
	}
}

// SetForTest inserta un valor directamente, sin pasar por la interfaz.
func (c *DummyCache) SetForTest(key string, val interface{}) {
	data, _ := json.Marshal(val)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = data
}

// HSetForTest inserta un campo de hash directamente.
func (c *DummyCache) HSetForTest(key, field string, val interface{}) {
	data, _ := json.Marshal(val)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hashes[key] == nil {
		c.hashes[key] = make(map[string][]byte)
	}
	c.hashes[key][field] = data
}

// HasKey indica si la clave plana existe.
func (c *DummyCache) HasKey(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store[key]
	return ok
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if c.Unavailable {
		return false, cache.ErrCacheUnavailable
	}
	c.mu.Lock()
	data, ok := c.store[key]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	if c.Unavailable {
		return cache.ErrCacheUnavailable
	}
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = data
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	if c.Unavailable {
		return cache.ErrCacheUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	delete(c.hashes, key)
	return nil
}

func (c *DummyCache) FlushAll(ctx context.Context) error {
	if c.Unavailable {
		return cache.ErrCacheUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string][]byte)
	c.hashes = make(map[string]map[string][]byte)
	return nil
}

func (c *DummyCache) HGet(ctx context.Context, key, field string, dest interface{}) (bool, error) {
	if c.Unavailable {
		return false, cache.ErrCacheUnavailable
	}
	c.mu.Lock()
	data, ok := c.hashes[key][field]
	c.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *DummyCache) HSet(ctx context.Context, key, field string, val interface{}) error {
	if c.Unavailable {
		return cache.ErrCacheUnavailable
	}
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hashes[key] == nil {
		c.hashes[key] = make(map[string][]byte)
	}
	c.hashes[key][field] = data
	return nil
}

func (c *DummyCache) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	if c.Unavailable {
		return 0, cache.ErrCacheUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.hashes[key] == nil {
		c.hashes[key] = make(map[string][]byte)
	}
	var current int64
	if raw, ok := c.hashes[key][field]; ok {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, err
		}
		current = n
	}
	current += delta
	c.hashes[key][field] = []byte(strconv.FormatInt(current, 10))
	return current, nil
}

func (c *DummyCache) HExists(ctx context.Context, key, field string) (bool, error) {
	if c.Unavailable {
		return false, cache.ErrCacheUnavailable
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.hashes[key][field]
	return ok, nil
}

func (c *DummyCache) Expire(ctx context.Context, key string, ttlSecs int) error {
	if c.Unavailable {
		return cache.ErrCacheUnavailable
	}
	return nil
}

func (c *DummyCache) Ping(ctx context.Context) error {
	if c.Unavailable {
		return cache.ErrCacheUnavailable
	}
	return nil
}
