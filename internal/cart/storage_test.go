package cart

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorruptPayloadReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, StorageKey, "{not json"))

	store, err := NewStore(NewKVStorage(mem, nil))
	require.NoError(t, err)
	assert.Empty(t, store.GetCart(ctx))

	_, err = store.AddToCart(ctx, redRoses("6 Roses", "Red"))
	require.NoError(t, err, "a corrupt cart is replaced on the next write")
	assert.Len(t, store.GetCart(ctx), 1)
}

func TestLegacyPayloadIsSanitised(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	legacy := `[
		{"id":"red-roses-classic","name":"Classic Red Roses","priceMin":499,"priceMax":899,"size":"12 Roses","color":"Red","image":null,"addons":["Card Note","Balloon"],"qty":1,"key":"stale"},
		{"id":"red-roses-classic","name":"Classic Red Roses","priceMin":499,"priceMax":899,"size":"12 Roses","color":"Red","addons":["Balloon","Card Note"],"qty":2},
		{"id":"sunshine-gerberas","name":"Sunshine Gerberas","priceMin":279,"priceMax":449,"qty":0},
		{"id":"","name":"ghost","qty":4}
	]`
	require.NoError(t, mem.Set(ctx, StorageKey, legacy))

	store, err := NewStore(NewKVStorage(mem, nil))
	require.NoError(t, err)

	items := store.GetCart(ctx)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Qty)
	assert.Equal(t, "red-roses-classic::12 Roses::Red::Balloon|Card Note", items[0].Key.String())
	assert.Equal(t, 3, store.GetCartCount(ctx))
}

func TestPersistedShape(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store, err := NewStore(NewKVStorage(mem, nil))
	require.NoError(t, err)

	_, err = store.AddToCart(ctx, redRoses("12 Roses", "Red", "Balloon"))
	require.NoError(t, err)

	raw, ok, _ := mem.Get(ctx, StorageKey)
	require.True(t, ok)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "red-roses-classic::12 Roses::Red::Balloon", records[0]["key"])
	assert.Equal(t, "12 Roses", records[0]["size"])
	assert.Nil(t, records[0]["image"])
	assert.EqualValues(t, 1, records[0]["qty"])
}

func TestWatchSkipsOwnOriginAndOtherKeys(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	storage := NewKVStorage(mem, nil)
	store, err := NewStore(storage)
	require.NoError(t, err)

	var origins []string
	cancel, err := store.OnExternalChange(kv.WithOrigin(ctx, "tab-a"), func(origin string) {
		origins = append(origins, origin)
	})
	require.NoError(t, err)
	defer cancel()

	_, _ = store.AddToCart(kv.WithOrigin(ctx, "tab-a"), redRoses("6 Roses", "Red"))
	_, _ = store.AddToCart(kv.WithOrigin(ctx, "tab-b"), redRoses("6 Roses", "Red"))
	require.NoError(t, mem.Set(ctx, "sb_delivery_date_v1", "2026-10-20"))

	assert.Equal(t, []string{"tab-b"}, origins)
}

type getOnly struct{ kv.Store }

func TestWatchUnsupported(t *testing.T) {
	storage := NewKVStorage(getOnly{kv.NewMemory()}, nil)
	_, err := storage.Watch(context.Background(), func(string) {})
	assert.ErrorIs(t, err, kv.ErrWatchUnsupported)
}

func TestKeyParsing(t *testing.T) {
	k, ok := ParseKey("red-roses-classic::12 Roses::Red::")
	require.True(t, ok)
	assert.Equal(t, Key{ProductID: "red-roses-classic", Size: "12 Roses", Color: "Red"}, k)

	_, ok = ParseKey("red-roses-classic")
	assert.False(t, ok)
	_, ok = ParseKey("::a::b::c")
	assert.False(t, ok)
	assert.True(t, Key{}.IsZero())
}
