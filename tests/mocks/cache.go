package mocks

import (
	"context"
	"sync"

	eventDomain "github.com/davicafu/reservalab/internal/event/domain"
	sharedCache "github.com/davicafu/reservalab/internal/shared/infra/platform/cache"
)

// DummyCache simula una cache en memoria para eventos.
type DummyCache struct {
	store map[string]*eventDomain.Event
	mu    sync.Mutex
}

var _ sharedCache.Cache = (*DummyCache)(nil)

// NewDummyCache crea un DummyCache inicializado
func NewDummyCache() *DummyCache {
	return &DummyCache{
		store: make(map[string]*eventDomain.Event),
	}
}

// SetForTest inserta directamente un evento en la cache.
func (c *DummyCache) SetForTest(key string, e *eventDomain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = make(map[string]*eventDomain.Event)
	}
	c.store[key] = e
}

func (c *DummyCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store[key]
	if !ok {
		return false, nil
	}

	eventPtr, ok := dest.(*eventDomain.Event)
	if !ok {
		return false, nil
	}

	*eventPtr = *e
	return true, nil
}

func (c *DummyCache) Set(ctx context.Context, key string, val interface{}, ttlSecs int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store == nil {
		c.store = make(map[string]*eventDomain.Event)
	}

	e, ok := val.(*eventDomain.Event)
	if !ok {
		return nil
	}
	c.store[key] = e
	return nil
}

func (c *DummyCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}
