package db

import (
	"context"
	"fmt"
	"sync"
)

// KV is the asynchronous key-value contract the counter store persists through.
// DB, ZDB and Memory all implement it.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Backend is a KV that owns a resource which must be closed
type Backend interface {
	KV
	Close() error
	Path() string
}

// MemoryPath is the --db value that selects the in-memory backend
const MemoryPath = ":memory:"

// Memory is an in-process KV. Its contents vanish with the process.
type Memory struct {
	mu     sync.RWMutex
	values map[string]string
	closed bool
}

// NewMemory creates an empty in-memory store
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

// Get returns the value stored under key
func (m *Memory) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return "", false, fmt.Errorf("%w: memory store closed", ErrUnavailable)
	}
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key
func (m *Memory) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("%w: memory store closed", ErrUnavailable)
	}
	m.values[key] = value
	return nil
}

// Remove deletes key
func (m *Memory) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return fmt.Errorf("%w: memory store closed", ErrUnavailable)
	}
	delete(m.values, key)
	return nil
}

// Close marks the store unusable; later calls fail with ErrUnavailable
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Path returns MemoryPath
func (m *Memory) Path() string {
	return MemoryPath
}

// Open returns the backend for dbPath and driver ("sqlite" or "zombiezen").
// MemoryPath always selects Memory.
func Open(dbPath, driver string) (Backend, error) {
	if dbPath == MemoryPath {
		return NewMemory(), nil
	}
	switch driver {
	case "", "sqlite":
		return New(dbPath)
	case "zombiezen":
		return NewZ(dbPath)
	default:
		return nil, fmt.Errorf("unknown storage driver %q: must be sqlite or zombiezen", driver)
	}
}
