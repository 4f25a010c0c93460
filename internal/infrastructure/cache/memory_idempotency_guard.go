package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/labstock-api/internal/application/inventory"
)

// InMemoryIdempotencyGuard variante de un solo proceso; las claves vencidas se
// descartan al consultarlas.
type InMemoryIdempotencyGuard struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]time.Time // clave -> vencimiento
	now     func() time.Time
}

var _ inventory.IdempotencyGuard = (*InMemoryIdempotencyGuard)(nil)

// NewInMemoryIdempotencyGuard construye el guard.
func NewInMemoryIdempotencyGuard(ttl time.Duration) *InMemoryIdempotencyGuard {
	return &InMemoryIdempotencyGuard{
		ttl:     ttl,
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (g *InMemoryIdempotencyGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if exp, ok := g.entries[key]; ok && now.Before(exp) {
		return false, nil
	}
	g.entries[key] = now.Add(g.ttl)
	g.sweep(now)
	return true, nil
}

func (g *InMemoryIdempotencyGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
	return nil
}

// sweep elimina claves vencidas; se llama con mu tomado.
func (g *InMemoryIdempotencyGuard) sweep(now time.Time) {
	for k, exp := range g.entries {
		if !now.Before(exp) {
			delete(g.entries, k)
		}
	}
}
