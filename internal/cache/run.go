package cache

import "context"

// Run wraps one remote call with the three-phase lifecycle on the owning
// store: Begin before the call, apply on success, Fail on error. The caller
// receives the call's own payload and error regardless of what the store's
// shared status says afterwards, so overlapping operations on one store do
// not leak each other's outcomes.
func Run[T Record, R any](ctx context.Context, s *Store[T], call func(context.Context) (R, error), apply func(R)) (R, error) {
	s.Begin()

	out, err := call(ctx)
	if err != nil {
		s.Fail(err)
		var zero R
		return zero, err
	}

	apply(out)
	return out, nil
}
