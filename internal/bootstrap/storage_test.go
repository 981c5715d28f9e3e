package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sisterblooms/storefront-backend/pkg/config"
	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
)

func TestOpenStorageMemory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.StorageMemory}}
	st, err := OpenStorage(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer st.Close()

	_, ok := st.KV.(*kv.Memory)
	assert.True(t, ok)
	assert.Nil(t, st.RateLimiter())
	assert.Nil(t, st.SQL)
}

func TestOpenStorageSQLiteAutoMigrates(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Backend: config.StorageSQLite, AutoMigrate: true},
		DB: config.DBConfig{
			Driver: config.DBDriverSQLite,
			DSN:    "file:bootstrap_sqlite?mode=memory&cache=shared",
		},
	}
	st, err := OpenStorage(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, st.Close()) }()

	require.NotNil(t, st.SQL)
	ctx := context.Background()
	require.NoError(t, st.KV.Set(ctx, "sb_cart_v1", "[]"))
	v, ok, err := st.KV.Get(ctx, "sb_cart_v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[]", v)
}

func TestOpenStorageRejectsUnknownBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "etcd"}}
	_, err := OpenStorage(context.Background(), cfg, logger.Nop())
	assert.Error(t, err)
}

func TestCloseNil(t *testing.T) {
	var st *Storage
	assert.NoError(t, st.Close())
	assert.Nil(t, st.RateLimiter())
}
