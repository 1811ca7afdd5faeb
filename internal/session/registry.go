// Package session keeps per-user browse and quote state in memory.
package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned for unknown or malformed session ids.
var ErrSessionNotFound = errors.New("session: not found")

// Registry stores sessions by id. Work on one session is serialized; different
// sessions proceed independently.
type Registry[T any] struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*entry[T]
}

type entry[T any] struct {
	mu    sync.Mutex
	value T
}

// NewRegistry creates an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{items: make(map[uuid.UUID]*entry[T])}
}

// Create stores value under a fresh id.
func (r *Registry[T]) Create(value T) uuid.UUID {
	id := uuid.New()
	r.mu.Lock()
	r.items[id] = &entry[T]{value: value}
	r.mu.Unlock()
	return id
}

// With runs fn on the session while holding its lock.
func (r *Registry[T]) With(id string, fn func(T) error) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.value)
}

// Delete drops a session. It reports whether one existed.
func (r *Registry[T]) Delete(id string) bool {
	key, err := uuid.Parse(id)
	if err != nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[key]; !ok {
		return false
	}
	delete(r.items, key)
	return true
}

// Len returns the number of live sessions.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Registry[T]) lookup(id string) (*entry[T], error) {
	key, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	r.mu.RLock()
	e, ok := r.items[key]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}
