package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/cache"
)

type fakeAPI struct {
	reports []api.Report
	scoped  []api.Report
}

func (f *fakeAPI) ListReports(ctx context.Context) ([]api.Report, error) { return f.reports, nil }

func (f *fakeAPI) GetReport(ctx context.Context, id string) (api.Report, error) {
	for _, r := range f.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return api.Report{}, &api.Error{StatusCode: 404, Message: "report not found"}
}

func (f *fakeAPI) ListReportsByPatient(ctx context.Context, patientRef string) ([]api.Report, error) {
	var out []api.Report
	for _, r := range f.reports {
		if r.PatientID == patientRef {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListReportsByDoctor(ctx context.Context, doctorRef string) ([]api.Report, error) {
	var out []api.Report
	for _, r := range f.reports {
		if r.DoctorRef() == doctorRef {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAPI) ListReportsByPatientAndDoctor(ctx context.Context, patientRef, doctorRef string) ([]api.Report, error) {
	return f.scoped, nil
}

func (f *fakeAPI) CreateReport(ctx context.Context, payload api.ReportPayload) (api.Report, error) {
	return api.Report{ID: "r-new", PatientID: payload.PatientID, DoctorID: payload.DoctorID}, nil
}

func (f *fakeAPI) UpdateReport(ctx context.Context, id string, payload api.ReportPayload) (api.Report, error) {
	return api.Report{ID: id, Title: payload.Title, Content: payload.Content}, nil
}

func (f *fakeAPI) DeleteReport(ctx context.Context, id string) error { return nil }

func TestFetchByPatientReplaces(t *testing.T) {
	remote := &fakeAPI{reports: []api.Report{
		{ID: "r1", PatientID: "u1", DoctorID: "u9"},
		{ID: "r2", PatientID: "u2", DoctorID: "u9"},
	}}
	s := New(remote, nil)

	out, err := s.FetchByPatient(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "r1", out[0].ID)
	assert.Equal(t, cache.StatusSucceeded, s.Snapshot().Status)
}

func TestFetchByPatientAndDoctorReplaces(t *testing.T) {
	remote := &fakeAPI{scoped: []api.Report{{ID: "r5", AltDoctorID: "u9"}}}
	s := New(remote, nil)
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)

	out, err := s.FetchByPatientAndDoctor(context.Background(), "u1", "u9")
	require.NoError(t, err)
	require.Len(t, out, 1)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "r5", snap.Items[0].ID)
}

func TestDoctorRefsHandlesLegacyField(t *testing.T) {
	remote := &fakeAPI{reports: []api.Report{
		{ID: "r1", DoctorID: "u9"},
		{ID: "r2", AltDoctorID: "u8"},
		{ID: "r3"},
	}}
	s := New(remote, nil)
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"u9", "u8", ""}, s.DoctorRefs())
}

func TestUpdateMergesByID(t *testing.T) {
	remote := &fakeAPI{reports: []api.Report{{ID: "r1", Title: "old"}}}
	s := New(remote, nil)
	_, err := s.FetchAll(context.Background())
	require.NoError(t, err)

	_, err = s.Update(context.Background(), "r1", api.ReportPayload{Title: "new"})
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "new", snap.Items[0].Title)
}

func TestCreateAndDelete(t *testing.T) {
	s := New(&fakeAPI{}, nil)

	created, err := s.Create(context.Background(), api.ReportPayload{PatientID: "u1", DoctorID: "u9"})
	require.NoError(t, err)
	assert.Equal(t, "r-new", created.ID)
	assert.Equal(t, 1, len(s.Snapshot().Items))

	require.NoError(t, s.Delete(context.Background(), "r-new"))
	assert.Empty(t, s.Snapshot().Items)
}
