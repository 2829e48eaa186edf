package mocks

import (
	"context"
	"encoding/json"
	"sync"

	sharedCache "github.com/davicafu/devcamper/shared/platform/cache"
)

// DummyCache es un mock de caché en memoria, genérico y seguro para concurrencia.
// Cuenta las lecturas y escrituras para que los tests comprueben el cache-aside.
type DummyCache struct {
	store map[string][]byte
	mu    sync.RWMutex

	Gets    int
	Deletes []string
	TTLs    map[string]int
}

var _ sharedCache.Cache = (*DummyCache)(nil)

func NewDummyCache() *DummyCache {
	return &DummyCache{store: make(map[string][]byte), TTLs: make(map[string]int)}
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Gets++

	data, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	data, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store[key] = data
	c.TTLs[key] = ttlSecs
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	c.Deletes = append(c.Deletes, key)
	return nil
}

// TTL devuelve los segundos pedidos en el último Set de la key.
func (c *DummyCache) TTL(key string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.TTLs[key]
}

// Has indica si la key está en caché (útil tras un AsyncCacheSet).
func (c *DummyCache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.store[key]
	return ok
}
