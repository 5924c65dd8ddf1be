// Package cache holds the client-side entity cache: one Store per record
// type, each carrying the records fetched so far plus the status and error
// of the most recently settled remote operation. Views read snapshots and
// never block on in-flight fetches.
package cache

import "sync"

// Status reflects the most recently settled operation on a store.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Record is implemented by every cached entity. OwnerID returns the owning
// user's identifier when the entity carries one, else "". Both identifiers
// are valid lookup keys (see Resolve).
type Record interface {
	RecordID() string
	OwnerID() string
}

// Store is an in-memory collection of records of one entity type. All
// methods are safe for concurrent use; mutations are atomic, so no reader
// observes a store mid-update. When two operations race, the one that
// settles last determines the final items/status ("last response wins").
type Store[T Record] struct {
	mu     sync.RWMutex
	items  []T
	status Status
	err    error
}

// Snapshot is a point-in-time read of a store's state.
type Snapshot[T Record] struct {
	Items  []T
	Status Status
	Err    error
}

// New returns an empty store in the idle state.
func New[T Record]() *Store[T] {
	return &Store[T]{status: StatusIdle}
}

// Snapshot returns a copy of the store's current state. The returned slice
// is owned by the caller.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]T, len(s.items))
	copy(items, s.items)
	return Snapshot[T]{Items: items, Status: s.status, Err: s.err}
}

// Len returns the number of cached records.
func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Begin marks an operation in flight: status becomes loading and any prior
// error is cleared. Items are untouched.
func (s *Store[T]) Begin() {
	s.mu.Lock()
	s.status = StatusLoading
	s.err = nil
	s.mu.Unlock()
}

// Fail records a settled failure. Items are never modified on failure.
func (s *Store[T]) Fail(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	s.err = err
	s.mu.Unlock()
}

// ReplaceAll sets the held collection to exactly items. Used when a
// response is the authoritative set for its query (list-style fetches).
func (s *Store[T]) ReplaceAll(items []T) {
	s.mu.Lock()
	s.items = make([]T, len(items))
	copy(s.items, items)
	s.settle()
	s.mu.Unlock()
}

// Upsert replaces the record whose RecordID matches rec, or appends rec if
// no match exists. Used for single-record fetches and updates.
func (s *Store[T]) Upsert(rec T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.items {
		if s.items[i].RecordID() == rec.RecordID() {
			s.items[i] = rec
			s.settle()
			return
		}
	}
	s.items = append(s.items, rec)
	s.settle()
}

// Append adds rec to the end without deduplication. Creation is assumed to
// produce a fresh identifier.
func (s *Store[T]) Append(rec T) {
	s.mu.Lock()
	s.items = append(s.items, rec)
	s.settle()
	s.mu.Unlock()
}

// Remove filters out the record with the given RecordID. Removing an absent
// id is a no-op beyond settling the operation.
func (s *Store[T]) Remove(recordID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, rec := range s.items {
		if rec.RecordID() != recordID {
			kept = append(kept, rec)
		}
	}
	s.items = kept
	s.settle()
}

// settle marks the most recent operation as succeeded. Callers hold s.mu.
func (s *Store[T]) settle() {
	s.status = StatusSucceeded
	s.err = nil
}
