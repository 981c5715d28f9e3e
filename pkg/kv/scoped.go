package kv

import (
	"context"
	"strings"
)

// Scoped prefixes every key with a namespace so several guest sessions can share
// one backend without seeing each other's values.
type Scoped struct {
	inner  Store
	prefix string
}

// NewScoped returns a Store whose keys live under "<scope>:".
func NewScoped(inner Store, scope ...string) *Scoped {
	parts := make([]string, 0, len(scope))
	for _, s := range scope {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	prefix := strings.Join(parts, ":")
	if prefix != "" {
		prefix += ":"
	}
	return &Scoped{inner: inner, prefix: prefix}
}

// FullKey returns the key as stored in the underlying backend.
func (s *Scoped) FullKey(key string) string {
	return s.prefix + key
}

func (s *Scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.inner.Get(ctx, s.FullKey(key))
}

func (s *Scoped) Set(ctx context.Context, key, value string) error {
	return s.inner.Set(ctx, s.FullKey(key), value)
}

func (s *Scoped) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.FullKey(key))
}

// Watch reports changes inside the scope, with keys stripped of the prefix.
func (s *Scoped) Watch(ctx context.Context, fn func(Change)) (func(), error) {
	w, ok := s.inner.(Watcher)
	if !ok {
		return nil, ErrWatchUnsupported
	}
	return w.Watch(ctx, func(c Change) {
		if !strings.HasPrefix(c.Key, s.prefix) {
			return
		}
		c.Key = strings.TrimPrefix(c.Key, s.prefix)
		fn(c)
	})
}
