package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"
)

// cacheItem guarda el valor serializado y el tiempo de expiración.
// Guardamos los bytes para simular la serialización, igual que Redis.
type cacheItem struct {
	value     []byte
	expiresAt time.Time // cero = nunca expira
}

func (it cacheItem) expired(now time.Time) bool {
	return !it.expiresAt.IsZero() && now.After(it.expiresAt)
}

// hashItem es un hash campo→valor con expiración a nivel de clave.
type hashItem struct {
	fields    map[string][]byte
	expiresAt time.Time
}

func (h *hashItem) expired(now time.Time) bool {
	return !h.expiresAt.IsZero() && now.After(h.expiresAt)
}

// InMemoryCache implementa la interfaz Cache usando mapas en memoria.
// Sirve como respaldo cuando Redis no está disponible en el arranque.
type InMemoryCache struct {
	store    map[string]cacheItem
	hashes   map[string]*hashItem
	mu       sync.RWMutex
	stopChan chan struct{}
	stopOnce sync.Once
}

var _ Cache = (*InMemoryCache)(nil)

// NewInMemoryCache crea la caché en memoria y arranca la limpieza periódica
// de claves expiradas.
func NewInMemoryCache(cleanupInterval time.Duration) *InMemoryCache {
	c := &InMemoryCache{
		store:    make(map[string]cacheItem),
		hashes:   make(map[string]*hashItem),
		stopChan: make(chan struct{}),
	}

	go c.cleanupLoop(cleanupInterval)

	return c
}

func (c *InMemoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, ok := c.store[key]
	if !ok || item.expired(time.Now().UTC()) {
		return false, nil // miss; las expiradas las recoge el cleanupLoop
	}

	if err := json.Unmarshal(item.value, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *InMemoryCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl := secondsToDuration(ttlSecs); ttl > 0 {
		expiresAt = time.Now().UTC().Add(ttl)
	}

	// Sobrescritura completa de la clave: last-writer-wins.
	c.store[key] = cacheItem{value: data, expiresAt: expiresAt}
	return nil
}

func (c *InMemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.store, key)
	delete(c.hashes, key)
	return nil
}

func (c *InMemoryCache) FlushAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.store = make(map[string]cacheItem)
	c.hashes = make(map[string]*hashItem)
	return nil
}

func (c *InMemoryCache) HGet(ctx context.Context, key, field string, dest interface{}) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h, ok := c.hashes[key]
	if !ok || h.expired(time.Now().UTC()) {
		return false, nil
	}
	data, ok := h.fields[field]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *InMemoryCache) HSet(ctx context.Context, key, field string, val interface{}) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.liveHash(key)
	h.fields[field] = data
	return nil
}

func (c *InMemoryCache) HIncrBy(ctx context.Context, key, field string, delta int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	h := c.liveHash(key)

	var current int64
	if raw, ok := h.fields[field]; ok {
		n, err := strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, err
		}
		current = n
	}
	current += delta
	h.fields[field] = []byte(strconv.FormatInt(current, 10))
	return current, nil
}

func (c *InMemoryCache) HExists(ctx context.Context, key, field string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	h, ok := c.hashes[key]
	if !ok || h.expired(time.Now().UTC()) {
		return false, nil
	}
	_, ok = h.fields[field]
	return ok, nil
}

func (c *InMemoryCache) Expire(ctx context.Context, key string, ttlSecs int) error {
	ttl := secondsToDuration(ttlSecs)
	if ttl <= 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().UTC().Add(ttl)
	if item, ok := c.store[key]; ok {
		item.expiresAt = expiresAt
		c.store[key] = item
	}
	if h, ok := c.hashes[key]; ok {
		h.expiresAt = expiresAt
	}
	return nil
}

func (c *InMemoryCache) Ping(ctx context.Context) error {
	return nil
}

// liveHash devuelve el hash de la clave, descartando uno expirado.
// El llamante debe tener el lock de escritura.
func (c *InMemoryCache) liveHash(key string) *hashItem {
	h, ok := c.hashes[key]
	if !ok || h.expired(time.Now().UTC()) {
		h = &hashItem{fields: make(map[string][]byte)}
		c.hashes[key] = h
	}
	return h
}

// Stop detiene la goroutine de limpieza. Llamar al apagar la aplicación.
func (c *InMemoryCache) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
}

// cleanupLoop elimina periódicamente las claves expiradas.
func (c *InMemoryCache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().UTC()
			c.mu.Lock()
			for key, item := range c.store {
				if item.expired(now) {
					delete(c.store, key)
				}
			}
			for key, h := range c.hashes {
				if h.expired(now) {
					delete(c.hashes, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopChan:
			return
		}
	}
}
