package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/ovenlight/pizzeria-cart/internal/storage"
)

// Change describes the cart after a mutation: the new line items, the
// recomputed totals, and an optional human-readable confirmation message
// suitable for a transient notification. It is returned by every mutating
// operation and delivered to listeners registered with OnChange.
type Change struct {
	Items   []LineItem
	Totals  Totals
	Message string
}

// Store is the sole owner and mutator of one cart. Every mutation is
// persisted to the storage slot before the operation returns; if the write
// fails the in-memory state is rolled back, so the persisted value always
// deserializes back to the cart the last successful operation produced.
//
// Methods are safe for concurrent use; the internal mutex serializes the
// load-modify-persist cycle of each mutation.
type Store struct {
	slot storage.Slot
	key  string

	mu    sync.Mutex
	items []LineItem

	listenerMu sync.Mutex
	listeners  []func(Change)
}

// Open loads the cart persisted under key. An absent, malformed, or
// wrongly-shaped value yields an empty cart rather than an error; only a
// transport failure of the slot itself is surfaced.
func Open(ctx context.Context, slot storage.Slot, key string) (*Store, error) {
	s := &Store{slot: slot, key: key}

	raw, err := slot.Get(ctx, key)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// Nothing persisted yet.
	case err != nil:
		return nil, errors.Wrap(err, "load cart")
	default:
		if items, ok := decodeItems(raw); ok {
			s.items = items
		}
	}

	return s, nil
}

// OnChange registers fn to be called after every successful mutation.
// Listeners run synchronously on the mutating goroutine, after the new
// state has been persisted.
func (s *Store) OnChange(fn func(Change)) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// AddItem adds one unit of the (baseName, size) configuration at the given
// unit price. The display name is "baseName (size)"; if a line with the
// same name and unit price already exists its quantity is incremented,
// otherwise a new line is appended. A negative price makes the call a
// no-op: the returned Change reflects the unchanged cart and nothing is
// persisted or announced.
func (s *Store) AddItem(ctx context.Context, baseName string, price decimal.Decimal, size string) (Change, error) {
	if price.IsNegative() {
		return s.currentChange(), nil
	}

	name := fmt.Sprintf("%s (%s)", baseName, size)
	return s.mutate(ctx, func(items []LineItem) ([]LineItem, string, bool) {
		msg := "Added to cart: " + name
		for i := range items {
			if items[i].sameLine(name, price) {
				items[i].Quantity++
				return items, msg, true
			}
		}
		items = append(items, LineItem{Name: name, UnitPrice: price, Quantity: 1})
		return items, msg, true
	})
}

// ChangeQuantity adds delta to the quantity of the line at index. A
// resulting quantity of zero or less removes the line entirely. An
// out-of-range index is a no-op: stale indices from an already-mutated
// view must not corrupt state.
func (s *Store) ChangeQuantity(ctx context.Context, index, delta int) (Change, error) {
	return s.mutate(ctx, func(items []LineItem) ([]LineItem, string, bool) {
		if index < 0 || index >= len(items) {
			return items, "", false
		}
		items[index].Quantity += delta
		if items[index].Quantity <= 0 {
			items = append(items[:index], items[index+1:]...)
		}
		return items, "", true
	})
}

// RemoveItem deletes the line at index. Out-of-range indices are a no-op.
func (s *Store) RemoveItem(ctx context.Context, index int) (Change, error) {
	return s.mutate(ctx, func(items []LineItem) ([]LineItem, string, bool) {
		if index < 0 || index >= len(items) {
			return items, "", false
		}
		msg := "Removed " + items[index].Name
		return append(items[:index], items[index+1:]...), msg, true
	})
}

// Clear empties the cart and persists the empty state. Used after a
// completed checkout.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.mutate(ctx, func([]LineItem) ([]LineItem, string, bool) {
		return nil, "", true
	})
	return err
}

// Totals returns the totals derived from the current line items.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeTotals(s.items)
}

// Snapshot returns a copy of the current line items in insertion order.
// Mutating the returned slice does not affect the store.
func (s *Store) Snapshot() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// mutate applies fn to a copy of the line items under the lock, persists
// the result, and announces the change. fn reports whether anything
// changed; a false return makes the whole call a no-op with no write and
// no notification. On persist failure the previous items are restored and
// the error returned, keeping memory and storage in agreement.
func (s *Store) mutate(ctx context.Context, fn func([]LineItem) ([]LineItem, string, bool)) (Change, error) {
	s.mu.Lock()

	prev := s.items
	next, message, changed := fn(cloneItems(s.items))
	if !changed {
		ch := Change{Items: cloneItems(s.items), Totals: ComputeTotals(s.items)}
		s.mu.Unlock()
		return ch, nil
	}

	s.items = next
	if err := s.slot.Set(ctx, s.key, encodeItems(s.items)); err != nil {
		s.items = prev
		s.mu.Unlock()
		return Change{}, errors.Wrap(err, "persist cart")
	}

	ch := Change{
		Items:   cloneItems(s.items),
		Totals:  ComputeTotals(s.items),
		Message: message,
	}
	s.mu.Unlock()

	s.notify(ch)
	return ch, nil
}

// notify delivers ch to all registered listeners.
func (s *Store) notify(ch Change) {
	s.listenerMu.Lock()
	listeners := make([]func(Change), len(s.listeners))
	copy(listeners, s.listeners)
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(ch)
	}
}

// currentChange snapshots the cart without mutating it.
func (s *Store) currentChange() Change {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Change{
		Items:  cloneItems(s.items),
		Totals: ComputeTotals(s.items),
	}
}
