package kv

import "sync"

// notifier fans changes out to in-process watchers.
type notifier struct {
	mu       sync.RWMutex
	next     int
	watchers map[int]func(Change)
}

func (n *notifier) add(fn func(Change)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.watchers == nil {
		n.watchers = make(map[int]func(Change))
	}
	id := n.next
	n.next++
	n.watchers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.watchers, id)
			n.mu.Unlock()
		})
	}
}

func (n *notifier) notify(change Change) {
	n.mu.RLock()
	fns := make([]func(Change), 0, len(n.watchers))
	for _, fn := range n.watchers {
		fns = append(fns, fn)
	}
	n.mu.RUnlock()

	for _, fn := range fns {
		fn(change)
	}
}
