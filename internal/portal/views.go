// Package portal is the view boundary over the entity cache: it assembles
// view models for the signed-in patient and exposes them over HTTP. All
// dependent-fetch decisions live here, next to the views that need them.
package portal

import (
	"context"
	"strings"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/backfill"
	"github.com/carelink/patient-portal/internal/bookings"
	"github.com/carelink/patient-portal/internal/cache"
	"github.com/carelink/patient-portal/internal/doctors"
	"github.com/carelink/patient-portal/internal/patients"
	"github.com/carelink/patient-portal/internal/reports"
	"github.com/carelink/patient-portal/pkg/logging"
)

// fallbackDoctorLabel is rendered when a doctor reference never resolves
// (deleted or foreign record). The view shows the label instead of
// retrying indefinitely.
const fallbackDoctorLabel = "Doctor"

// BookingView is one appointment joined with the cached doctor's display
// data.
type BookingView struct {
	ID             string `json:"id"`
	Date           string `json:"date,omitempty"`
	Status         string `json:"status"`
	Notes          string `json:"notes,omitempty"`
	DoctorName     string `json:"doctorName"`
	DoctorCategory string `json:"doctorCategory,omitempty"`
	DoctorResolved bool   `json:"doctorResolved"`
}

// ReportView is one medical report joined with the cached doctor's display
// data.
type ReportView struct {
	ID             string `json:"id"`
	Title          string `json:"title,omitempty"`
	Content        string `json:"content,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	DoctorName     string `json:"doctorName"`
	DoctorResolved bool   `json:"doctorResolved"`
}

// Views assembles patient-facing view models from the entity stores.
type Views struct {
	doctors  *doctors.Store
	patients *patients.Store
	bookings *bookings.Store
	reports  *reports.Store
	backfill *backfill.Coordinator
	logger   *logging.Logger
}

// NewViews wires the stores to the view layer. The coordinator must target
// the same doctor store the views resolve against.
func NewViews(d *doctors.Store, p *patients.Store, b *bookings.Store, r *reports.Store, bf *backfill.Coordinator, logger *logging.Logger) *Views {
	if logger == nil {
		logger = logging.Default()
	}
	return &Views{doctors: d, patients: p, bookings: b, reports: r, backfill: bf, logger: logger}
}

// MyBookings loads the signed-in user's bookings, backfills the doctors
// they reference, and returns the joined view. The booking list's own
// status/error snapshot is returned alongside so the caller can render
// loading/error states.
func (v *Views) MyBookings(ctx context.Context, userRef string) ([]BookingView, cache.Snapshot[api.Booking], error) {
	_, err := v.bookings.FetchByPatient(ctx, userRef)
	snap := v.bookings.Snapshot()
	if err != nil {
		return nil, snap, err
	}

	v.backfill.Ensure(ctx, v.bookings.DoctorRefs())

	views := make([]BookingView, 0, len(snap.Items))
	for _, b := range snap.Items {
		bv := BookingView{
			ID:         b.ID,
			Date:       b.Date,
			Status:     displayStatus(b.Status),
			Notes:      b.Notes,
			DoctorName: fallbackDoctorLabel,
		}
		if doc, ok := v.doctors.Resolve(b.DoctorRef()); ok && b.DoctorRef() != "" {
			bv.DoctorName = doc.Name
			bv.DoctorCategory = doc.Category
			bv.DoctorResolved = true
			if bv.Notes == "" {
				bv.Notes = doc.Description
			}
		}
		views = append(views, bv)
	}
	return views, snap, nil
}

// MyReports loads the signed-in user's reports, optionally scoped to one
// doctor reference, backfills referenced doctors, and returns the joined
// view. The patient profile is find-or-fetch: a cached record short-circuits
// the remote call.
func (v *Views) MyReports(ctx context.Context, userRef, doctorRef string) ([]ReportView, cache.Snapshot[api.Report], error) {
	if _, ok := v.patients.Resolve(userRef); !ok {
		if _, err := v.patients.FetchByUser(ctx, userRef); err != nil {
			// reports are still renderable without the profile
			v.logger.Debug("patient profile unresolved for reports view", "ref", userRef, "error", err)
		}
	}

	var err error
	if doctorRef != "" {
		_, err = v.reports.FetchByPatientAndDoctor(ctx, userRef, doctorRef)
	} else {
		_, err = v.reports.FetchByPatient(ctx, userRef)
	}
	snap := v.reports.Snapshot()
	if err != nil {
		return nil, snap, err
	}

	refs := v.reports.DoctorRefs()
	if doctorRef != "" {
		refs = append(refs, doctorRef)
	}
	v.backfill.Ensure(ctx, refs)

	views := make([]ReportView, 0, len(snap.Items))
	for _, r := range snap.Items {
		rv := ReportView{
			ID:         r.ID,
			Title:      r.Title,
			Content:    r.Content,
			CreatedAt:  r.CreatedAt,
			DoctorName: fallbackDoctorLabel,
		}
		if doc, ok := v.doctors.Resolve(r.DoctorRef()); ok && r.DoctorRef() != "" {
			rv.DoctorName = doc.Name
			rv.DoctorResolved = true
		}
		views = append(views, rv)
	}
	return views, snap, nil
}

// Profile returns the signed-in user's patient record, fetching it only
// when the cache cannot resolve the owner reference.
func (v *Views) Profile(ctx context.Context, userRef string) (api.Patient, bool) {
	if p, ok := v.patients.Resolve(userRef); ok {
		return p, true
	}
	if p, err := v.patients.FetchByUser(ctx, userRef); err == nil {
		return p, true
	}
	return api.Patient{}, false
}

// displayStatus maps raw booking status tags to display labels. Unknown
// tags pass through; an empty tag reads as Scheduled.
func displayStatus(raw string) string {
	if raw == "" {
		return "Scheduled"
	}
	normalized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, raw)

	switch normalized {
	case "checkedin":
		return "Checked In"
	case "waiting":
		return "Waiting"
	case "inprogress":
		return "In Progress"
	default:
		return raw
	}
}
