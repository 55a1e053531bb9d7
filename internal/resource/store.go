// Package resource implements the per-kind snapshot store behind every
// list view: fetch wholesale, keep the latest snapshot, and guard against
// out-of-order responses. Two actions racing on the same resource kind can
// resolve in either order; each fetch is tagged with a sequence number at
// dispatch and a response older than one already applied is discarded, so
// the view can never go backwards to stale data.
package resource

import (
	"context"
	"sync"
)

// ListFunc fetches the full, unfiltered record list from the server.
type ListFunc[T any] func(ctx context.Context) ([]T, error)

// Store holds the last applied snapshot for one resource kind.
type Store[T any] struct {
	list ListFunc[T]

	mu       sync.Mutex
	nextSeq  uint64
	applied  uint64 // sequence of the snapshot currently held
	snapshot []T
}

// NewStore creates a store for one resource kind.
func NewStore[T any](list ListFunc[T]) *Store[T] {
	return &Store[T]{list: list}
}

// Load dispatches a fetch and returns the authoritative snapshot once it
// resolves. If a later-dispatched fetch finished first, this response is
// discarded and the newer snapshot is returned instead. Mutating actions
// call Load again after success; the store never applies optimistic local
// edits.
func (s *Store[T]) Load(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.mu.Unlock()

	records, err := s.list(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.applied {
		s.applied = seq
		s.snapshot = records
	}
	return s.snapshot, nil
}

// Snapshot returns the last applied records without fetching. Nil until the
// first successful Load.
func (s *Store[T]) Snapshot() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}
