// Package kv provides the flat string key/value storage the storefront persists
// carts and delivery selections in. It plays the part window.localStorage plays
// in a browser: whole values are read and written, and other observers of the
// same keys can be told when a value changes.
package kv

import (
	"context"
	"errors"
)

// ErrWatchUnsupported is returned by Watch on backends that cannot observe changes.
var ErrWatchUnsupported = errors.New("kv: change notifications not supported")

// Store is the read/write surface every backend implements.
type Store interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Change describes a write seen by a Watcher.
type Change struct {
	Key    string `json:"key"`
	Origin string `json:"origin,omitempty"`
}

// Watcher is implemented by backends that can report writes, including writes
// made by other processes sharing the backend.
type Watcher interface {
	Watch(ctx context.Context, fn func(Change)) (cancel func(), err error)
}

// Pinger is implemented by backends with a reachable dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

type originKey struct{}

// WithOrigin tags writes made with ctx as coming from origin (a browser tab id).
// Watchers use it to skip their own writes, as the storage event does.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

// OriginFrom returns the origin attached by WithOrigin, or "".
func OriginFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}
