package storage

import (
	"context"
	"sync"
)

// MemoryGateway keeps values in process memory. Used for tests and for the "memory" driver.
type MemoryGateway struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryGateway() *MemoryGateway {
	return &MemoryGateway{
		values: make(map[string][]byte),
	}
}

func (g *MemoryGateway) Get(_ context.Context, key string) ([]byte, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	v, ok := g.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}

	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (g *MemoryGateway) Set(_ context.Context, key string, value []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	g.values[key] = v
	return nil
}

func (g *MemoryGateway) Remove(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.values, key)
	return nil
}
