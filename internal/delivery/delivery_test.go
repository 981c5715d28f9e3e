package delivery

import (
	"context"
	"testing"
	"time"

	pkgerrors "github.com/sisterblooms/storefront-backend/pkg/errors"
	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAreas = []string{"CBD", "Woodstock", "Bellville (limited slots)"}

func newTestStore(t *testing.T, now time.Time) (*Store, *kv.Memory) {
	t.Helper()
	loc, err := time.LoadLocation("Africa/Johannesburg")
	require.NoError(t, err)
	mem := kv.NewMemory()
	s, err := NewStore(mem, testAreas, loc, WithClock(func() time.Time { return now }))
	require.NoError(t, err)
	return s, mem
}

func TestSetDateClampsPastToToday(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	s, _ := newTestStore(t, now)

	got, err := s.SetDate(ctx, "2026-10-15")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", got)
	assert.Equal(t, "2026-10-16", s.Date(ctx))

	got, err = s.SetDate(ctx, "2026-12-24")
	require.NoError(t, err)
	assert.Equal(t, "2026-12-24", got)
	assert.Equal(t, ChoicePick, s.ChoiceFor(got))
}

func TestTodayUsesShopTimezone(t *testing.T) {
	// 23:30 UTC is already the next day in Johannesburg (UTC+2).
	now := time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)
	s, _ := newTestStore(t, now)
	assert.Equal(t, "2026-10-17", s.Today())
	assert.Equal(t, "2026-10-18", s.Tomorrow())

	got, err := s.SetDate(context.Background(), "2026-10-16")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", got)
}

func TestSetDateValidationAndClear(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))

	_, err := s.SetDate(ctx, "16/10/2026")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = s.SetDate(ctx, "2026-10-20")
	require.NoError(t, err)
	_, err = s.SetDate(ctx, "  ")
	require.NoError(t, err)
	_, ok, _ := mem.Get(ctx, DateKey)
	assert.False(t, ok)
	assert.Equal(t, "", s.Date(ctx))
}

func TestSetChoice(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))

	got, err := s.SetChoice(ctx, ChoiceTomorrow)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-17", got)
	assert.Equal(t, ChoiceTomorrow, s.Selection(ctx).Choice)

	got, err = s.SetChoice(ctx, ChoiceToday)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", got)
	assert.Equal(t, ChoiceToday, s.ChoiceFor(got))

	_, err = s.SetChoice(ctx, ChoicePick)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = s.SetChoice(ctx, ChoiceNone)
	require.NoError(t, err)
	assert.Equal(t, ChoiceNone, s.Selection(ctx).Choice)
}

func TestAreaAllowList(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, time.Now())

	got, err := s.SetArea(ctx, " Woodstock ")
	require.NoError(t, err)
	assert.Equal(t, "Woodstock", got)
	assert.Equal(t, "Woodstock", s.Area(ctx))

	_, err = s.SetArea(ctx, "Stellenbosch")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Equal(t, "Woodstock", s.Area(ctx), "rejected label leaves the old one")

	require.NoError(t, mem.Set(ctx, AreaKey, "Atlantis"))
	assert.Equal(t, "", s.Area(ctx))
	_, ok, _ := mem.Get(ctx, AreaKey)
	assert.False(t, ok, "invalid stored area is purged")

	_, err = s.SetArea(ctx, "")
	require.NoError(t, err)
}

func TestClearRemovesBoth(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
	_, _ = s.SetDate(ctx, "2026-10-20")
	_, _ = s.SetArea(ctx, "CBD")

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, Selection{}, s.Selection(ctx))
}

func TestWatchFiltersKeysAndOrigin(t *testing.T) {
	ctx := context.Background()
	s, mem := newTestStore(t, time.Now())

	var origins []string
	cancel, err := s.Watch(kv.WithOrigin(ctx, "me"), func(o string) { origins = append(origins, o) })
	require.NoError(t, err)
	defer cancel()

	_, _ = s.SetArea(kv.WithOrigin(ctx, "me"), "CBD")
	_, _ = s.SetArea(kv.WithOrigin(ctx, "other"), "Woodstock")
	require.NoError(t, mem.Set(ctx, "sb_cart_v1", "[]"))

	assert.Equal(t, []string{"other"}, origins)
}

func TestNewStoreRequiresBackend(t *testing.T) {
	_, err := NewStore(nil, nil, nil)
	assert.Error(t, err)
}
