// Package bootstrap opens the storage backend selected by configuration for
// the storefront binaries.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/sisterblooms/storefront-backend/pkg/config"
	"github.com/sisterblooms/storefront-backend/pkg/db"
	"github.com/sisterblooms/storefront-backend/pkg/kv"
	"github.com/sisterblooms/storefront-backend/pkg/logger"
	"github.com/sisterblooms/storefront-backend/pkg/migrate"
	pkgredis "github.com/sisterblooms/storefront-backend/pkg/redis"
)

// Storage holds the opened backend and the clients behind it. Redis and DB are
// nil unless the backend uses them.
type Storage struct {
	KV    kv.Store
	SQL   *kv.SQL
	Redis *pkgredis.Client
	DB    *db.Client
}

// OpenStorage connects the configured backend and, for SQL backends, applies
// migrations when auto-migration is on.
func OpenStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Storage, error) {
	switch cfg.Storage.Normalized() {
	case config.StorageMemory:
		return &Storage{KV: kv.NewMemory()}, nil

	case config.StorageRedis:
		client, err := pkgredis.New(ctx, cfg.Redis, cfg.Storage.Namespace, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		return &Storage{KV: kv.NewRedis(client, cfg.Redis.KeyTTL), Redis: client}, nil

	case config.StoragePostgres, config.StorageSQLite:
		client, err := db.New(ctx, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("auto migrate: %w", err), client.Close())
		}
		store := kv.NewSQL(client.DB())
		return &Storage{KV: store, SQL: store, DB: client}, nil

	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

// Close releases every client that was opened.
func (s *Storage) Close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.Redis != nil {
		err = multierr.Append(err, s.Redis.Close())
	}
	if s.DB != nil {
		err = multierr.Append(err, s.DB.Close())
	}
	return err
}

// RateLimiter returns the redis client for checkout rate limiting, or nil
// when the backend has no redis.
func (s *Storage) RateLimiter() *pkgredis.Client {
	if s == nil {
		return nil
	}
	return s.Redis
}
