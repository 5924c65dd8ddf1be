// Package patients caches patient profiles and owns the create-vs-update
// decision for the signed-in user's own profile.
package patients

import (
	"context"
	"errors"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
	"github.com/carelink/patient-portal/internal/observability/metrics"
)

const entity = "patients"

// ErrNoOwner is returned when a profile mutation is attempted without a
// resolvable owner identifier.
var ErrNoOwner = errors.New("patients: no owner identifier for profile")

// API is the slice of the remote client this store depends on.
type API interface {
	ListPatients(ctx context.Context) ([]api.Patient, error)
	GetPatient(ctx context.Context, id string) (api.Patient, error)
	GetPatientByUser(ctx context.Context, userID string) (api.Patient, error)
	CreatePatient(ctx context.Context, payload api.PatientPayload) (api.Patient, error)
	UpdatePatient(ctx context.Context, id string, payload api.PatientPayload) (api.Patient, error)
	DeletePatient(ctx context.Context, id string) error
}

// Store is the patient entity store.
type Store struct {
	api     API
	cache   *cache.Store[api.Patient]
	metrics *metrics.CacheMetrics
}

// New returns an empty patient store.
func New(remote API, m *metrics.CacheMetrics) *Store {
	return &Store{api: remote, cache: cache.New[api.Patient](), metrics: m}
}

// Snapshot returns the current items/status/error.
func (s *Store) Snapshot() cache.Snapshot[api.Patient] { return s.cache.Snapshot() }

// Resolve locates a cached patient by record id or owner user id.
func (s *Store) Resolve(ref string) (api.Patient, bool) { return s.cache.Resolve(ref) }

// FetchAll loads the authoritative patient list.
func (s *Store) FetchAll(ctx context.Context) ([]api.Patient, error) {
	out, err := cache.Run(ctx, s.cache, s.api.ListPatients, s.cache.ReplaceAll)
	s.metrics.ObserveOperation(entity, "list", err)
	return out, err
}

// FetchByID fetches one patient by record id and merges it into the cache.
func (s *Store) FetchByID(ctx context.Context, id string) (api.Patient, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Patient, error) {
			return s.api.GetPatient(ctx, id)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "get", err)
	return out, err
}

// FetchByUser fetches one patient by owner user id and merges it into the
// cache.
func (s *Store) FetchByUser(ctx context.Context, userID string) (api.Patient, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Patient, error) {
			return s.api.GetPatientByUser(ctx, userID)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "get_by_user", err)
	return out, err
}

// Create registers a new patient profile and appends it.
func (s *Store) Create(ctx context.Context, payload api.PatientPayload) (api.Patient, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Patient, error) {
			return s.api.CreatePatient(ctx, payload)
		},
		s.cache.Append,
	)
	s.metrics.ObserveOperation(entity, "create", err)
	return out, err
}

// Update modifies a patient profile and merges the server's copy.
func (s *Store) Update(ctx context.Context, id string, payload api.PatientPayload) (api.Patient, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Patient, error) {
			return s.api.UpdatePatient(ctx, id, payload)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "update", err)
	return out, err
}

// Delete removes a patient profile locally after the remote delete settles.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (string, error) {
			if err := s.api.DeletePatient(ctx, id); err != nil {
				return "", err
			}
			return id, nil
		},
		s.cache.Remove,
	)
	s.metrics.ObserveOperation(entity, "delete", err)
	return err
}

// SaveProfile persists the signed-in user's profile: an update when a
// patient record already resolves for ownerID, a create otherwise. The
// payload's owner field is always forced to ownerID. An empty owner is a
// local precondition failure; no remote call is made and the store is left
// untouched.
func (s *Store) SaveProfile(ctx context.Context, ownerID string, payload api.PatientPayload) (api.Patient, error) {
	if ownerID == "" {
		return api.Patient{}, ErrNoOwner
	}
	payload.UserID = ownerID

	if existing, ok := s.Resolve(ownerID); ok {
		return s.Update(ctx, existing.RecordID(), payload)
	}
	return s.Create(ctx, payload)
}
