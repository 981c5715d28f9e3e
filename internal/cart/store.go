// Package cart owns the persisted line items of one shopper's cart and keeps
// every line uniquely keyed by product and options.
package cart

import (
	"context"
	"fmt"
	"sync"

	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
)

// Storage loads and saves the whole cart. Implementations return an empty cart,
// not an error, for absent or unreadable payloads.
type Storage interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
}

// ChangeSource is implemented by storages that can report writes made elsewhere
// (another tab, another API instance). origin is the writer's tab id, if known.
type ChangeSource interface {
	Watch(ctx context.Context, fn func(origin string)) (cancel func(), err error)
}

// Store applies cart operations as whole-cart read-modify-write cycles.
type Store struct {
	storage Storage
	mu      sync.Locker
}

type Option func(*Store)

// WithLocker serialises mutations with l instead of a private mutex, so stores
// built per request for the same session share one lock.
func WithLocker(l sync.Locker) Option {
	return func(s *Store) {
		if l != nil {
			s.mu = l
		}
	}
}

func NewStore(storage Storage, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("cart storage required")
	}
	s := &Store{storage: storage, mu: &sync.Mutex{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetCart returns the items in insertion order. It never fails: a storage error
// reads as an empty cart.
func (s *Store) GetCart(ctx context.Context) []LineItem {
	items, err := s.storage.Load(ctx)
	if err != nil {
		return []LineItem{}
	}
	return Sanitize(items)
}

func (s *Store) GetCartCount(ctx context.Context) int {
	return Count(s.GetCart(ctx))
}

// AddToCart merges c into the line with the same key, adding quantities, or
// appends a new line. A non-empty image on c replaces the stored one.
func (s *Store) AddToCart(ctx context.Context, c Candidate) (LineItem, error) {
	incoming := c.lineItem()
	var result LineItem
	err := s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		if i := indexOf(items, incoming.Key); i >= 0 {
			items[i].Qty += incoming.Qty
			if incoming.Image != nil {
				items[i].Image = incoming.Image
			}
			result = items[i]
			return items, true
		}
		result = incoming
		return append(items, incoming), true
	})
	return result, err
}

// UpdateQty sets the quantity of key exactly. qty <= 0 removes the line.
// Unknown keys are ignored.
func (s *Store) UpdateQty(ctx context.Context, key Key, qty int) error {
	return s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, key)
		if i < 0 {
			return items, false
		}
		if qty <= 0 {
			return append(items[:i], items[i+1:]...), true
		}
		items[i].Qty = qty
		return items, true
	})
}

// AdjustQty moves the quantity of key by delta without letting it drop below 1,
// as the cart page's +/- buttons do. It returns the new quantity and false for
// an unknown key.
func (s *Store) AdjustQty(ctx context.Context, key Key, delta int) (int, bool, error) {
	var (
		qty   int
		found bool
	)
	err := s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, key)
		if i < 0 {
			return items, false
		}
		found = true
		qty = items[i].Qty + delta
		if qty < 1 {
			qty = 1
		}
		if qty == items[i].Qty {
			return items, false
		}
		items[i].Qty = qty
		return items, true
	})
	return qty, found, err
}

// Find returns the line stored under key.
func (s *Store) Find(ctx context.Context, key Key) (LineItem, bool) {
	items := s.GetCart(ctx)
	if i := indexOf(items, key); i >= 0 {
		return items[i], true
	}
	return LineItem{}, false
}

func (s *Store) RemoveItem(ctx context.Context, key Key) error {
	return s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, key)
		if i < 0 {
			return items, false
		}
		return append(items[:i], items[i+1:]...), true
	})
}

// UpdateItem applies p to the line at key and re-keys it. When the new key
// belongs to another line the two merge: quantities add, the patched image
// wins if set, and the edited line disappears. It returns the key the edited
// options now live under and false when key was not in the cart.
func (s *Store) UpdateItem(ctx context.Context, key Key, p Patch) (Key, bool, error) {
	var (
		next  Key
		found bool
	)
	err := s.mutate(ctx, func(items []LineItem) ([]LineItem, bool) {
		i := indexOf(items, key)
		if i < 0 {
			return items, false
		}
		found = true
		updated := normalise(p.apply(items[i]))
		next = updated.Key

		if updated.Key == key {
			items[i] = updated
			return items, true
		}
		if j := indexOf(items, updated.Key); j >= 0 {
			merged := items[j]
			merged.Qty += updated.Qty
			if merged.Qty < 1 {
				merged.Qty = 1
			}
			if updated.Image != nil {
				merged.Image = updated.Image
			}
			items[j] = merged
			return append(items[:i], items[i+1:]...), true
		}
		items[i] = updated
		return items, true
	})
	if err != nil || !found {
		return key, found, err
	}
	return next, true, nil
}

// ClearCart persists an empty cart.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Save(ctx, []LineItem{}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

// OnExternalChange calls fn whenever the persisted cart is written by someone
// else. The store does not poll; storages without change support return an error.
func (s *Store) OnExternalChange(ctx context.Context, fn func(origin string)) (func(), error) {
	src, ok := s.storage.(ChangeSource)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "cart storage cannot report changes")
	}
	return src.Watch(ctx, fn)
}

// mutate runs one read-modify-write cycle under the store lock. Load errors
// abort the mutation so a failing backend cannot be overwritten with a
// partial cart. fn reports whether anything changed; unchanged carts are not saved.
func (s *Store) mutate(ctx context.Context, fn func([]LineItem) ([]LineItem, bool)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.storage.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	next, changed := fn(Sanitize(items))
	if !changed {
		return nil
	}
	if err := s.storage.Save(ctx, next); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart")
	}
	return nil
}

func indexOf(items []LineItem, key Key) int {
	for i := range items {
		if items[i].Key == key {
			return i
		}
	}
	return -1
}
