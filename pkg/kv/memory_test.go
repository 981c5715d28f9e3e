package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "sb_cart_v1", "[]"))
	v, ok, err := m.Get(ctx, "sb_cart_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)

	require.NoError(t, m.Delete(ctx, "sb_cart_v1"))
	_, ok, _ = m.Get(ctx, "sb_cart_v1")
	assert.False(t, ok)
}

func TestMemoryWatchCarriesOriginAndCancels(t *testing.T) {
	m := NewMemory()
	var seen []Change
	cancel, err := m.Watch(context.Background(), func(c Change) { seen = append(seen, c) })
	require.NoError(t, err)

	require.NoError(t, m.Set(WithOrigin(context.Background(), "tab-a"), "k", "v"))
	require.NoError(t, m.Delete(context.Background(), "k"))
	require.NoError(t, m.Delete(context.Background(), "k"), "deleting a missing key is fine")

	require.Len(t, seen, 2)
	assert.Equal(t, Change{Key: "k", Origin: "tab-a"}, seen[0])
	assert.Equal(t, Change{Key: "k"}, seen[1])

	cancel()
	cancel()
	require.NoError(t, m.Set(context.Background(), "k", "v2"))
	assert.Len(t, seen, 2, "cancelled watcher must not be called")
}

func TestScopedIsolatesSessions(t *testing.T) {
	ctx := context.Background()
	backend := NewMemory()
	a := NewScoped(backend, "session", "a")
	b := NewScoped(backend, "session", "b")

	require.NoError(t, a.Set(ctx, "sb_cart_v1", "A"))
	_, ok, err := b.Get(ctx, "sb_cart_v1")
	require.NoError(t, err)
	assert.False(t, ok)

	raw, ok, _ := backend.Get(ctx, "session:a:sb_cart_v1")
	assert.True(t, ok)
	assert.Equal(t, "A", raw)
	assert.Equal(t, "session:a:x", a.FullKey("x"))
	assert.Equal(t, "x", NewScoped(backend, " ").FullKey("x"))

	var got []Change
	cancel, err := b.Watch(ctx, func(c Change) { got = append(got, c) })
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, a.Set(ctx, "sb_cart_v1", "A2"))
	require.NoError(t, b.Set(ctx, "sb_cart_v1", "B"))
	require.Len(t, got, 1)
	assert.Equal(t, "sb_cart_v1", got[0].Key)
}

type plainStore struct{ Store }

func TestScopedWatchUnsupported(t *testing.T) {
	s := NewScoped(plainStore{NewMemory()}, "x")
	_, err := s.Watch(context.Background(), func(Change) {})
	assert.ErrorIs(t, err, ErrWatchUnsupported)
}

func TestOriginFrom(t *testing.T) {
	assert.Equal(t, "", OriginFrom(context.Background()))
	assert.Equal(t, "tab", OriginFrom(WithOrigin(context.Background(), "tab")))
}
