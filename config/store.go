// Package config loads the lspwire settings file and keeps it current.
// Settings are read from TOML, held in an atomically swapped Store, and
// reloaded by an fsnotify-based Watcher when the file changes on disk.
package config

import (
	"sync"
	"sync/atomic"
)

// Store publishes the current settings value. Reads never block; swaps are
// serialized so listeners observe changes in the order they were made.
type Store[T any] struct {
	current atomic.Pointer[T]

	swapMu sync.Mutex

	mu        sync.RWMutex
	listeners []func(old, new_ *T)
}

// NewStore creates a store holding initial.
func NewStore[T any](initial *T) *Store[T] {
	s := &Store[T]{}
	s.current.Store(initial)
	return s
}

// Get returns the current value. Callers must not modify it.
func (s *Store[T]) Get() *T {
	return s.current.Load()
}

// Swap installs next, runs the listeners in registration order, and returns
// the value it replaced.
func (s *Store[T]) Swap(next *T) *T {
	s.swapMu.Lock()
	defer s.swapMu.Unlock()

	prev := s.current.Swap(next)

	s.mu.RLock()
	listeners := s.listeners
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(prev, next)
	}
	return prev
}

// OnChange registers fn to run after every Swap.
func (s *Store[T]) OnChange(fn func(old, new_ *T)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// OnFieldChange registers fn to run after a Swap that changes the value
// selected by field. Swaps that leave it equal are skipped.
func OnFieldChange[T any, V comparable](s *Store[T], field func(*T) V, fn func(old, new_ V)) {
	s.OnChange(func(old, new_ *T) {
		if a, b := field(old), field(new_); a != b {
			fn(a, b)
		}
	})
}
