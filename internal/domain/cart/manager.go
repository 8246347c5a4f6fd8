package cart

import (
	"context"
	"sync"

	"github.com/ovenlight/pizzeria-cart/internal/storage"
)

// Manager hands out one Store per cart identifier, loading each from the
// shared slot on first access. Stores are cached for the lifetime of the
// process so all requests for a cart go through the same mutex.
type Manager struct {
	slot storage.Slot

	mu     sync.Mutex
	stores map[string]*Store
}

// NewManager creates a Manager persisting carts to slot.
func NewManager(slot storage.Slot) *Manager {
	return &Manager{
		slot:   slot,
		stores: make(map[string]*Store),
	}
}

// Key returns the slot key for a cart identifier.
func Key(id string) string {
	return "cart:" + id
}

// Store returns the Store for the given cart identifier, opening it on
// first use.
func (m *Manager) Store(ctx context.Context, id string) (*Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.stores[id]; ok {
		return s, nil
	}

	s, err := Open(ctx, m.slot, Key(id))
	if err != nil {
		return nil, err
	}
	m.stores[id] = s
	return s, nil
}
