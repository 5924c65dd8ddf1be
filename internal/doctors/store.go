// Package doctors caches practitioner profiles. Bookings and reports point
// at doctors by owner user id, so every probe into this store goes through
// the dual-key rule.
package doctors

import (
	"context"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
	"github.com/carelink/patient-portal/internal/observability/metrics"
)

const entity = "doctors"

// API is the slice of the remote client this store depends on.
type API interface {
	ListDoctors(ctx context.Context) ([]api.Doctor, error)
	ListDoctorsByCategory(ctx context.Context, category string) ([]api.Doctor, error)
	GetDoctor(ctx context.Context, id string) (api.Doctor, error)
	GetDoctorByUser(ctx context.Context, userID string) (api.Doctor, error)
	CreateDoctor(ctx context.Context, payload api.DoctorPayload) (api.Doctor, error)
	UpdateDoctor(ctx context.Context, id string, payload api.DoctorPayload) (api.Doctor, error)
	UpdateDoctorStatus(ctx context.Context, id, status string) (api.Doctor, error)
	DeleteDoctor(ctx context.Context, id string) error
}

// Store is the doctor entity store.
type Store struct {
	api     API
	cache   *cache.Store[api.Doctor]
	metrics *metrics.CacheMetrics
}

// New returns an empty doctor store.
func New(remote API, m *metrics.CacheMetrics) *Store {
	return &Store{api: remote, cache: cache.New[api.Doctor](), metrics: m}
}

// Snapshot returns the current items/status/error.
func (s *Store) Snapshot() cache.Snapshot[api.Doctor] { return s.cache.Snapshot() }

// Resolve locates a cached doctor by record id or owner user id.
func (s *Store) Resolve(ref string) (api.Doctor, bool) { return s.cache.Resolve(ref) }

// Missing returns the refs with no cached doctor under the dual-key rule.
func (s *Store) Missing(refs []string) []string { return s.cache.Missing(refs) }

// FetchAll loads the authoritative doctor list.
func (s *Store) FetchAll(ctx context.Context) ([]api.Doctor, error) {
	out, err := cache.Run(ctx, s.cache, s.api.ListDoctors, s.cache.ReplaceAll)
	s.metrics.ObserveOperation(entity, "list", err)
	return out, err
}

// FetchByCategory loads the doctor list for one category, replacing the
// held collection.
func (s *Store) FetchByCategory(ctx context.Context, category string) ([]api.Doctor, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) ([]api.Doctor, error) {
			return s.api.ListDoctorsByCategory(ctx, category)
		},
		s.cache.ReplaceAll,
	)
	s.metrics.ObserveOperation(entity, "list_by_category", err)
	return out, err
}

// FetchByID fetches one doctor by record id and merges it into the cache.
func (s *Store) FetchByID(ctx context.Context, id string) (api.Doctor, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Doctor, error) {
			return s.api.GetDoctor(ctx, id)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "get", err)
	return out, err
}

// FetchByUser fetches one doctor by owner user id and merges it into the
// cache. This is the backfill path for doctor references on bookings and
// reports.
func (s *Store) FetchByUser(ctx context.Context, userID string) (api.Doctor, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Doctor, error) {
			return s.api.GetDoctorByUser(ctx, userID)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "get_by_user", err)
	return out, err
}

// Create registers a new doctor profile and appends it.
func (s *Store) Create(ctx context.Context, payload api.DoctorPayload) (api.Doctor, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Doctor, error) {
			return s.api.CreateDoctor(ctx, payload)
		},
		s.cache.Append,
	)
	s.metrics.ObserveOperation(entity, "create", err)
	return out, err
}

// Update modifies a doctor profile and merges the server's copy.
func (s *Store) Update(ctx context.Context, id string, payload api.DoctorPayload) (api.Doctor, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Doctor, error) {
			return s.api.UpdateDoctor(ctx, id, payload)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "update", err)
	return out, err
}

// UpdateStatus changes a doctor's availability status.
func (s *Store) UpdateStatus(ctx context.Context, id, status string) (api.Doctor, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Doctor, error) {
			return s.api.UpdateDoctorStatus(ctx, id, status)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "update_status", err)
	return out, err
}

// Delete removes a doctor profile locally after the remote delete settles.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (string, error) {
			if err := s.api.DeleteDoctor(ctx, id); err != nil {
				return "", err
			}
			return id, nil
		},
		s.cache.Remove,
	)
	s.metrics.ObserveOperation(entity, "delete", err)
	return err
}
