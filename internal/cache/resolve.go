package cache

// Resolve locates a record by reference using the dual-key rule: a match is
// RecordID() == ref OR OwnerID() == ref. Booking and report records carry
// owner user ids while directly fetched records are keyed by record id, so
// every probe against a store must accept either identifier. This is a fixed
// policy, not a fallback; producers and consumers both rely on it, otherwise
// the backfill coordinator re-fetches records the store already holds.
func (s *Store[T]) Resolve(ref string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.items {
		if rec.RecordID() == ref || rec.OwnerID() == ref {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// Missing returns the distinct, non-empty references from refs that do not
// resolve against the store under the dual-key rule. Input order is
// preserved for the first occurrence of each reference.
func (s *Store[T]) Missing(refs []string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(refs))
	var missing []string
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}
		if !s.resolveLocked(ref) {
			missing = append(missing, ref)
		}
	}
	return missing
}

func (s *Store[T]) resolveLocked(ref string) bool {
	for _, rec := range s.items {
		if rec.RecordID() == ref || rec.OwnerID() == ref {
			return true
		}
	}
	return false
}
