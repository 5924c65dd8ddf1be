// Package bookings caches appointment records. Bookings reference doctors
// and patients by owner user id; DoctorRefs feeds the backfill coordinator.
package bookings

import (
	"context"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
	"github.com/carelink/patient-portal/internal/observability/metrics"
)

const entity = "bookings"

// API is the slice of the remote client this store depends on.
type API interface {
	ListBooks(ctx context.Context) ([]api.Booking, error)
	ListBooksByPatient(ctx context.Context, patientRef string) ([]api.Booking, error)
	ListBooksByDoctor(ctx context.Context, doctorRef string) ([]api.Booking, error)
	CreateBook(ctx context.Context, payload api.BookingPayload) (api.Booking, error)
	DeleteBook(ctx context.Context, id string) error
}

// Store is the booking entity store.
type Store struct {
	api     API
	cache   *cache.Store[api.Booking]
	metrics *metrics.CacheMetrics
}

// New returns an empty booking store.
func New(remote API, m *metrics.CacheMetrics) *Store {
	return &Store{api: remote, cache: cache.New[api.Booking](), metrics: m}
}

// Snapshot returns the current items/status/error.
func (s *Store) Snapshot() cache.Snapshot[api.Booking] { return s.cache.Snapshot() }

// DoctorRefs returns the doctor reference of every cached booking, in item
// order, duplicates included. The coordinator collapses them.
func (s *Store) DoctorRefs() []string {
	snap := s.cache.Snapshot()
	refs := make([]string, 0, len(snap.Items))
	for _, b := range snap.Items {
		refs = append(refs, b.DoctorRef())
	}
	return refs
}

// FetchAll loads the authoritative booking list.
func (s *Store) FetchAll(ctx context.Context) ([]api.Booking, error) {
	out, err := cache.Run(ctx, s.cache, s.api.ListBooks, s.cache.ReplaceAll)
	s.metrics.ObserveOperation(entity, "list", err)
	return out, err
}

// FetchByPatient loads the bookings for one patient reference, replacing
// the held collection.
func (s *Store) FetchByPatient(ctx context.Context, patientRef string) ([]api.Booking, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) ([]api.Booking, error) {
			return s.api.ListBooksByPatient(ctx, patientRef)
		},
		s.cache.ReplaceAll,
	)
	s.metrics.ObserveOperation(entity, "list_by_patient", err)
	return out, err
}

// FetchByDoctor loads the bookings for one doctor reference, replacing the
// held collection.
func (s *Store) FetchByDoctor(ctx context.Context, doctorRef string) ([]api.Booking, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) ([]api.Booking, error) {
			return s.api.ListBooksByDoctor(ctx, doctorRef)
		},
		s.cache.ReplaceAll,
	)
	s.metrics.ObserveOperation(entity, "list_by_doctor", err)
	return out, err
}

// Create books an appointment and appends the stored record.
func (s *Store) Create(ctx context.Context, payload api.BookingPayload) (api.Booking, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Booking, error) {
			return s.api.CreateBook(ctx, payload)
		},
		s.cache.Append,
	)
	s.metrics.ObserveOperation(entity, "create", err)
	return out, err
}

// Delete cancels a booking locally after the remote delete settles.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (string, error) {
			if err := s.api.DeleteBook(ctx, id); err != nil {
				return "", err
			}
			return id, nil
		},
		s.cache.Remove,
	)
	s.metrics.ObserveOperation(entity, "delete", err)
	return err
}
