package kv

import (
	"context"
	"sync"
)

// Memory is an in-process Store. Changes are delivered synchronously to watchers
// after the write completes.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
	n    notifier
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	m.n.notify(Change{Key: key, Origin: OriginFrom(ctx)})
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	_, existed := m.data[key]
	delete(m.data, key)
	m.mu.Unlock()
	if existed {
		m.n.notify(Change{Key: key, Origin: OriginFrom(ctx)})
	}
	return nil
}

func (m *Memory) Watch(_ context.Context, fn func(Change)) (func(), error) {
	return m.n.add(fn), nil
}

func (m *Memory) Ping(context.Context) error { return nil }
