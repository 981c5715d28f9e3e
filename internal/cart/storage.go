package cart

import (
	"context"
	"encoding/json"

	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

// StorageKey is the kv key the cart is persisted under.
const StorageKey = "sb_cart_v1"

// KVStorage keeps the cart as a JSON array under StorageKey.
type KVStorage struct {
	store kv.Store
	logg  *logger.Logger
}

func NewKVStorage(store kv.Store, logg *logger.Logger) *KVStorage {
	if logg == nil {
		logg = logger.Nop()
	}
	return &KVStorage{store: store, logg: logg}
}

// Load returns nil for a missing or corrupt payload; only backend failures are errors.
func (s *KVStorage) Load(ctx context.Context) ([]LineItem, error) {
	raw, ok, err := s.store.Get(ctx, StorageKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "discarding unreadable cart payload")
		return nil, nil
	}
	return items, nil
}

func (s *KVStorage) Save(ctx context.Context, items []LineItem) error {
	if items == nil {
		items = []LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, StorageKey, string(payload))
}

// Watch reports writes to the cart key, skipping writes tagged with the
// caller's own origin (see kv.WithOrigin).
func (s *KVStorage) Watch(ctx context.Context, fn func(origin string)) (func(), error) {
	w, ok := s.store.(kv.Watcher)
	if !ok {
		return nil, kv.ErrWatchUnsupported
	}
	self := kv.OriginFrom(ctx)
	return w.Watch(ctx, func(c kv.Change) {
		if c.Key != StorageKey {
			return
		}
		if self != "" && c.Origin == self {
			return
		}
		fn(c.Origin)
	})
}
