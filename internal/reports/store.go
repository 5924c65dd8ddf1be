// Package reports caches medical report records.
package reports

import (
	"context"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
	"github.com/carelink/patient-portal/internal/observability/metrics"
)

const entity = "reports"

// API is the slice of the remote client this store depends on.
type API interface {
	ListReports(ctx context.Context) ([]api.Report, error)
	GetReport(ctx context.Context, id string) (api.Report, error)
	ListReportsByPatient(ctx context.Context, patientRef string) ([]api.Report, error)
	ListReportsByDoctor(ctx context.Context, doctorRef string) ([]api.Report, error)
	ListReportsByPatientAndDoctor(ctx context.Context, patientRef, doctorRef string) ([]api.Report, error)
	CreateReport(ctx context.Context, payload api.ReportPayload) (api.Report, error)
	UpdateReport(ctx context.Context, id string, payload api.ReportPayload) (api.Report, error)
	DeleteReport(ctx context.Context, id string) error
}

// Store is the report entity store.
type Store struct {
	api     API
	cache   *cache.Store[api.Report]
	metrics *metrics.CacheMetrics
}

// New returns an empty report store.
func New(remote API, m *metrics.CacheMetrics) *Store {
	return &Store{api: remote, cache: cache.New[api.Report](), metrics: m}
}

// Snapshot returns the current items/status/error.
func (s *Store) Snapshot() cache.Snapshot[api.Report] { return s.cache.Snapshot() }

// DoctorRefs returns the doctor reference of every cached report, in item
// order, duplicates included.
func (s *Store) DoctorRefs() []string {
	snap := s.cache.Snapshot()
	refs := make([]string, 0, len(snap.Items))
	for _, r := range snap.Items {
		refs = append(refs, r.DoctorRef())
	}
	return refs
}

// FetchAll loads the authoritative report list.
func (s *Store) FetchAll(ctx context.Context) ([]api.Report, error) {
	out, err := cache.Run(ctx, s.cache, s.api.ListReports, s.cache.ReplaceAll)
	s.metrics.ObserveOperation(entity, "list", err)
	return out, err
}

// FetchByID fetches one report by record id and merges it into the cache.
func (s *Store) FetchByID(ctx context.Context, id string) (api.Report, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Report, error) {
			return s.api.GetReport(ctx, id)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "get", err)
	return out, err
}

// FetchByPatient loads the reports for one patient reference, replacing the
// held collection.
func (s *Store) FetchByPatient(ctx context.Context, patientRef string) ([]api.Report, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) ([]api.Report, error) {
			return s.api.ListReportsByPatient(ctx, patientRef)
		},
		s.cache.ReplaceAll,
	)
	s.metrics.ObserveOperation(entity, "list_by_patient", err)
	return out, err
}

// FetchByDoctor loads the reports for one doctor reference, replacing the
// held collection.
func (s *Store) FetchByDoctor(ctx context.Context, doctorRef string) ([]api.Report, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) ([]api.Report, error) {
			return s.api.ListReportsByDoctor(ctx, doctorRef)
		},
		s.cache.ReplaceAll,
	)
	s.metrics.ObserveOperation(entity, "list_by_doctor", err)
	return out, err
}

// FetchByPatientAndDoctor loads the reports scoped to one patient/doctor
// pair, replacing the held collection.
func (s *Store) FetchByPatientAndDoctor(ctx context.Context, patientRef, doctorRef string) ([]api.Report, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) ([]api.Report, error) {
			return s.api.ListReportsByPatientAndDoctor(ctx, patientRef, doctorRef)
		},
		s.cache.ReplaceAll,
	)
	s.metrics.ObserveOperation(entity, "list_by_patient_doctor", err)
	return out, err
}

// Create files a report and appends the stored record.
func (s *Store) Create(ctx context.Context, payload api.ReportPayload) (api.Report, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Report, error) {
			return s.api.CreateReport(ctx, payload)
		},
		s.cache.Append,
	)
	s.metrics.ObserveOperation(entity, "create", err)
	return out, err
}

// Update modifies a report and merges the server's copy.
func (s *Store) Update(ctx context.Context, id string, payload api.ReportPayload) (api.Report, error) {
	out, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (api.Report, error) {
			return s.api.UpdateReport(ctx, id, payload)
		},
		s.cache.Upsert,
	)
	s.metrics.ObserveOperation(entity, "update", err)
	return out, err
}

// Delete removes a report locally after the remote delete settles.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := cache.Run(ctx, s.cache,
		func(ctx context.Context) (string, error) {
			if err := s.api.DeleteReport(ctx, id); err != nil {
				return "", err
			}
			return id, nil
		},
		s.cache.Remove,
	)
	s.metrics.ObserveOperation(entity, "delete", err)
	return err
}
