// Package locks serialises work per session without keeping a mutex per session alive.
package locks

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

const defaultStripes = 64

// Striped maps keys onto a fixed set of mutexes. Two keys may share a stripe;
// one key always maps to the same stripe.
type Striped struct {
	stripes []sync.Mutex
}

// NewStriped returns n stripes; n <= 0 uses a default.
func NewStriped(n int) *Striped {
	if n <= 0 {
		n = defaultStripes
	}
	return &Striped{stripes: make([]sync.Mutex, n)}
}

// For returns the mutex guarding key.
func (s *Striped) For(key string) sync.Locker {
	return &s.stripes[s.index(key)]
}

func (s *Striped) index(key string) int {
	return int(xxhash.Sum64String(key) % uint64(len(s.stripes)))
}
