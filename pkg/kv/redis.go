package kv

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	pkgredis "github.com/sisterblooms/storefront-backend/pkg/redis"
)

const changeChannel = "kv"

type redisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	Publish(ctx context.Context, channel string, message string) error
	Subscribe(ctx context.Context, channel string, fn func(payload string)) (func(), error)
	Key(parts ...string) string
	Ping(ctx context.Context) error
}

// Redis stores values under the client's namespace and publishes every write so
// that other API instances can tell their subscribers.
type Redis struct {
	client redisClient
	ttl    time.Duration
}

// NewRedis wraps the client. ttl > 0 expires idle keys; every write refreshes it.
func NewRedis(client redisClient, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.client.Key(key))
	if errors.Is(err, pkgredis.ErrNil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, r.client.Key(key), value, r.ttl); err != nil {
		return err
	}
	return r.publish(ctx, key)
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.client.Key(key)); err != nil {
		return err
	}
	return r.publish(ctx, key)
}

func (r *Redis) publish(ctx context.Context, key string) error {
	payload, err := json.Marshal(Change{Key: key, Origin: OriginFrom(ctx)})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, changeChannel, string(payload))
}

// Watch subscribes to the change channel. Malformed messages are ignored.
func (r *Redis) Watch(ctx context.Context, fn func(Change)) (func(), error) {
	return r.client.Subscribe(ctx, changeChannel, func(payload string) {
		var c Change
		if err := json.Unmarshal([]byte(payload), &c); err != nil || c.Key == "" {
			return
		}
		fn(c)
	})
}

func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx)
}
