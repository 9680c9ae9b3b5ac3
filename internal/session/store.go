// Package session keeps short-lived, per-visitor state in memory.
//
// Each entry has its own lock so that operations on one visitor's state are serialised while
// different visitors proceed independently. Idle entries are evicted by a background sweep.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NotFoundError indicates the session does not exist or has expired.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.ID)
}

type entry[T any] struct {
	mu           sync.Mutex
	value        T
	lastActivity time.Time
}

// Store holds values of type T keyed by session ID.
type Store[T any] struct {
	entries map[uuid.UUID]*entry[T]
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time

	cleanupTicker *time.Ticker
	cleanupStop   chan struct{}
	stopOnce      sync.Once
}

// Options configures a Store.
type Options struct {
	TTL             time.Duration // entries idle longer than this are evicted
	CleanupInterval time.Duration // 0 disables the background sweep
	Now             func() time.Time
}

// NewStore creates a store and starts the cleanup goroutine if an interval is set.
func NewStore[T any](opts Options) *Store[T] {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Store[T]{
		entries: make(map[uuid.UUID]*entry[T]),
		ttl:     opts.TTL,
		now:     opts.Now,
	}

	if opts.CleanupInterval > 0 {
		s.cleanupTicker = time.NewTicker(opts.CleanupInterval)
		s.cleanupStop = make(chan struct{})
		go s.cleanup()
	}

	return s
}

// Create stores an initial value and returns its new ID.
func (s *Store[T]) Create(value T) uuid.UUID {
	id := uuid.New()

	s.mu.Lock()
	s.entries[id] = &entry[T]{value: value, lastActivity: s.now()}
	s.mu.Unlock()

	return id
}

// Get returns a copy of the value for id.
func (s *Store[T]) Get(id uuid.UUID) (T, error) {
	e, err := s.lookup(id)
	if err != nil {
		var zero T
		return zero, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastActivity = s.now()
	return e.value, nil
}

// Update runs fn against the stored value under the entry lock. If fn returns an error the
// stored value is left unchanged.
func (s *Store[T]) Update(id uuid.UUID, fn func(T) (T, error)) (T, error) {
	e, err := s.lookup(id)
	if err != nil {
		var zero T
		return zero, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := fn(e.value)
	if err != nil {
		return e.value, err
	}
	e.value = next
	e.lastActivity = s.now()
	return next, nil
}

// Delete removes a session. Deleting an unknown ID is not an error.
func (s *Store[T]) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stop stops the cleanup goroutine. Safe to call more than once.
func (s *Store[T]) Stop() {
	s.stopOnce.Do(func() {
		if s.cleanupTicker != nil {
			s.cleanupTicker.Stop()
		}
		if s.cleanupStop != nil {
			close(s.cleanupStop)
		}
	})
}

func (s *Store[T]) lookup(id uuid.UUID) (*entry[T], error) {
	s.mu.RLock()
	e, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return e, nil
}

func (s *Store[T]) cleanup() {
	for {
		select {
		case <-s.cleanupTicker.C:
			s.Sweep()
		case <-s.cleanupStop:
			return
		}
	}
}

// Sweep evicts entries idle for longer than the TTL and returns how many were removed.
func (s *Store[T]) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		e.mu.Lock()
		idle := e.lastActivity.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
