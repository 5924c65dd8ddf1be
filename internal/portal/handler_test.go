package portal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/backfill"
	"github.com/carelink/patient-portal/internal/bookings"
	"github.com/carelink/patient-portal/internal/demoapi"
	"github.com/carelink/patient-portal/internal/doctors"
	"github.com/carelink/patient-portal/internal/observability/metrics"
	"github.com/carelink/patient-portal/internal/patients"
	"github.com/carelink/patient-portal/internal/portal"
	"github.com/carelink/patient-portal/internal/reports"
	"github.com/carelink/patient-portal/internal/session"
)

// fixture runs the portal against a live in-memory upstream. upstream is a
// second client with its own credentials for arranging server state behind
// the portal's back.
type fixture struct {
	router   http.Handler
	upstream *api.Client
	server   *httptest.Server
}

func newFixture(t *testing.T, seed bool) *fixture {
	t.Helper()

	srv := httptest.NewServer(demoapi.New(nil, seed).Handler())
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL, 5*time.Second, nil)
	m := metrics.NewCacheMetrics(prometheus.NewRegistry())

	sess := session.New(client, nil)
	doctorStore := doctors.New(client, m)
	patientStore := patients.New(client, m)
	bookingStore := bookings.New(client, m)
	reportStore := reports.New(client, m)

	bf := backfill.New("doctors", doctorStore,
		func(ctx context.Context, ref string) error {
			_, err := doctorStore.FetchByUser(ctx, ref)
			return err
		},
		nil, m,
	)

	views := portal.NewViews(doctorStore, patientStore, bookingStore, reportStore, bf, nil)
	handler := portal.NewHandler(sess, doctorStore, patientStore, bookingStore, views, nil)

	return &fixture{
		router:   portal.NewRouter(&portal.RouterConfig{Handler: handler}),
		upstream: api.NewClient(srv.URL, 5*time.Second, nil),
		server:   srv,
	}
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&out))
	return out
}

type sessionBody struct {
	User   *api.User `json:"user"`
	Status string    `json:"status"`
	Error  string    `json:"error"`
}

type listBody[T any] struct {
	Items  []T    `json:"items"`
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (f *fixture) register(t *testing.T) *api.User {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/session/register",
		map[string]string{"name": "Ada", "email": "ada@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, rr.Code)
	body := decode[sessionBody](t, rr)
	require.NotNil(t, body.User)
	return body.User
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	f := newFixture(t, false)

	u := f.register(t)
	assert.NotEmpty(t, u.Identifier())

	rr := f.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[sessionBody](t, rr)
	require.NotNil(t, body.User)
	assert.Equal(t, u.Identifier(), body.User.Identifier())
	assert.Equal(t, "succeeded", body.Status)

	rr = f.do(t, http.MethodPost, "/api/session/logout", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode[sessionBody](t, rr)
	assert.Nil(t, body.User)
	assert.Equal(t, "idle", body.Status)

	// a rejected upstream session check reads as signed out, not as an error
	rr = f.do(t, http.MethodGet, "/api/session", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode[sessionBody](t, rr)
	assert.Nil(t, body.User)
	assert.Equal(t, "idle", body.Status)
	assert.Empty(t, body.Error)
}

func TestLoginFailureKeepsPortalUp(t *testing.T) {
	f := newFixture(t, false)

	rr := f.do(t, http.MethodPost, "/api/session/login",
		map[string]string{"email": "ghost@example.com", "password": "pw"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid credentials")
}

func TestBookingViewBackfillsReferencedDoctor(t *testing.T) {
	f := newFixture(t, true)
	f.register(t)

	roster, err := f.upstream.ListDoctors(context.Background())
	require.NoError(t, err)
	doc := roster[0]

	// book without ever listing doctors through the portal: the view has to
	// fetch the referenced doctor on its own
	rr := f.do(t, http.MethodPost, "/api/bookings", map[string]string{"doctorId": doc.UserID})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/views/bookings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[listBody[portal.BookingView]](t, rr)
	require.Len(t, body.Items, 1)
	assert.True(t, body.Items[0].DoctorResolved)
	assert.Equal(t, doc.Name, body.Items[0].DoctorName)
	assert.Equal(t, "Scheduled", body.Items[0].Status)
}

func TestBookingViewFallsBackForUnknownDoctor(t *testing.T) {
	f := newFixture(t, false)
	f.register(t)

	rr := f.do(t, http.MethodPost, "/api/bookings", map[string]string{"doctorId": "ghost"})
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = f.do(t, http.MethodGet, "/api/views/bookings", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[listBody[portal.BookingView]](t, rr)
	require.Len(t, body.Items, 1)
	assert.False(t, body.Items[0].DoctorResolved)
	assert.Equal(t, "Doctor", body.Items[0].DoctorName)
}

func TestReportsViewScopedByDoctor(t *testing.T) {
	f := newFixture(t, true)
	u := f.register(t)

	roster, err := f.upstream.ListDoctors(context.Background())
	require.NoError(t, err)
	docRef := roster[0].UserID

	ctx := context.Background()
	_, err = f.upstream.CreateReport(ctx, api.ReportPayload{PatientID: u.Identifier(), DoctorID: docRef, Title: "checkup"})
	require.NoError(t, err)
	_, err = f.upstream.CreateReport(ctx, api.ReportPayload{PatientID: u.Identifier(), DoctorID: "ghost", Title: "orphaned"})
	require.NoError(t, err)

	rr := f.do(t, http.MethodGet, "/api/views/reports", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[listBody[portal.ReportView]](t, rr)
	require.Len(t, body.Items, 2)

	byTitle := map[string]portal.ReportView{}
	for _, v := range body.Items {
		byTitle[v.Title] = v
	}
	assert.True(t, byTitle["checkup"].DoctorResolved)
	assert.Equal(t, roster[0].Name, byTitle["checkup"].DoctorName)
	assert.False(t, byTitle["orphaned"].DoctorResolved)
	assert.Equal(t, "Doctor", byTitle["orphaned"].DoctorName)

	rr = f.do(t, http.MethodGet, "/api/views/reports?doctorId="+docRef, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode[listBody[portal.ReportView]](t, rr)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "checkup", body.Items[0].Title)
}

func TestProfileCreateThenUpdate(t *testing.T) {
	f := newFixture(t, false)
	f.register(t)

	rr := f.do(t, http.MethodGet, "/api/profile", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = f.do(t, http.MethodPut, "/api/profile", map[string]string{"name": "Ada", "bloodType": "O+"})
	require.Equal(t, http.StatusOK, rr.Code)
	created := decode[api.Patient](t, rr)
	require.NotEmpty(t, created.ID)

	rr = f.do(t, http.MethodPut, "/api/profile", map[string]string{"name": "Ada Lovelace"})
	require.Equal(t, http.StatusOK, rr.Code)
	updated := decode[api.Patient](t, rr)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Ada Lovelace", updated.Name)

	rr = f.do(t, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[api.Patient](t, rr)
	assert.Equal(t, "Ada Lovelace", got.Name)
}

func TestSignedOutRequestsRejected(t *testing.T) {
	f := newFixture(t, false)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/views/bookings"},
		{http.MethodGet, "/api/views/reports"},
		{http.MethodGet, "/api/profile"},
		{http.MethodPut, "/api/profile"},
		{http.MethodPost, "/api/bookings"},
		{http.MethodDelete, "/api/bookings/b1"},
	} {
		rr := f.do(t, tc.method, tc.path, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.path)
	}
}

func TestDoctorListRendersStaleItemsOnUpstreamFailure(t *testing.T) {
	f := newFixture(t, true)

	rr := f.do(t, http.MethodGet, "/api/doctors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body := decode[listBody[api.Doctor]](t, rr)
	require.Len(t, body.Items, 3)
	assert.Equal(t, "succeeded", body.Status)

	f.server.Close()

	// held items survive the failed refresh and render alongside the error
	rr = f.do(t, http.MethodGet, "/api/doctors", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body = decode[listBody[api.Doctor]](t, rr)
	assert.Len(t, body.Items, 3)
	assert.Equal(t, "failed", body.Status)
	assert.NotEmpty(t, body.Error)
}

func TestDoctorListFailsClosedWhenCacheEmpty(t *testing.T) {
	f := newFixture(t, false)
	f.server.Close()

	rr := f.do(t, http.MethodGet, "/api/doctors", nil)
	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestHealthAndRouteShape(t *testing.T) {
	f := newFixture(t, false)

	rr := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = f.do(t, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
