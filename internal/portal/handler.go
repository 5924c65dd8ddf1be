package portal

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/bookings"
	"github.com/carelink/patient-portal/internal/doctors"
	"github.com/carelink/patient-portal/internal/patients"
	"github.com/carelink/patient-portal/internal/session"
	"github.com/carelink/patient-portal/pkg/logging"
)

// Handler exposes the cached entity state and the patient view models over
// HTTP. Handlers never block on anything but their own operation; they
// render whatever the stores hold when their own call settles.
type Handler struct {
	session  *session.Store
	doctors  *doctors.Store
	patients *patients.Store
	bookings *bookings.Store
	views    *Views
	logger   *logging.Logger
}

// NewHandler creates the portal HTTP handler.
func NewHandler(s *session.Store, d *doctors.Store, p *patients.Store, b *bookings.Store, views *Views, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{session: s, doctors: d, patients: p, bookings: b, views: views, logger: logger}
}

// Routes returns the portal route tree.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/session/register", h.RegisterUser)
	r.Post("/session/login", h.LoginUser)
	r.Post("/session/logout", h.LogoutUser)
	r.Get("/session", h.GetSession)

	r.Get("/doctors", h.ListDoctors)

	r.Get("/views/bookings", h.MyBookings)
	r.Post("/bookings", h.CreateBooking)
	r.Delete("/bookings/{id}", h.DeleteBooking)

	r.Get("/views/reports", h.MyReports)

	r.Get("/profile", h.GetProfile)
	r.Put("/profile", h.SaveProfile)

	return r
}

type sessionResponse struct {
	User   *api.User `json:"user"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

func (h *Handler) sessionSnapshot() sessionResponse {
	snap := h.session.Snapshot()
	out := sessionResponse{User: snap.User, Status: string(snap.Status)}
	if snap.Err != nil {
		out.Error = snap.Err.Error()
	}
	return out
}

// RegisterUser handles POST /session/register.
func (h *Handler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req api.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.session.Register(r.Context(), req); err != nil {
		h.logger.Error("registration failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.sessionSnapshot())
}

// LoginUser handles POST /session/login.
func (h *Handler) LoginUser(w http.ResponseWriter, r *http.Request) {
	var creds api.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.session.Login(r.Context(), creds); err != nil {
		h.logger.Warn("login failed", "email", creds.Email, "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionSnapshot())
}

// LogoutUser handles POST /session/logout.
func (h *Handler) LogoutUser(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.sessionSnapshot())
}

// GetSession handles GET /session. A rejected upstream session check is not
// an error here: it answers with the signed-out snapshot.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	_, _ = h.session.Fetch(r.Context())
	writeJSON(w, http.StatusOK, h.sessionSnapshot())
}

type listResponse[T any] struct {
	Items  []T    `json:"items"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ListDoctors handles GET /doctors with an optional category filter.
func (h *Handler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var err error
	if category := r.URL.Query().Get("category"); category != "" {
		_, err = h.doctors.FetchByCategory(ctx, category)
	} else {
		_, err = h.doctors.FetchAll(ctx)
	}

	snap := h.doctors.Snapshot()
	if err != nil && len(snap.Items) == 0 {
		writeError(w, err)
		return
	}

	out := listResponse[api.Doctor]{Items: snap.Items, Status: string(snap.Status)}
	if snap.Err != nil {
		out.Error = snap.Err.Error()
	}
	writeJSON(w, http.StatusOK, out)
}

// MyBookings handles GET /views/bookings for the signed-in user.
func (h *Handler) MyBookings(w http.ResponseWriter, r *http.Request) {
	user := h.session.User()
	if user == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	views, snap, err := h.views.MyBookings(r.Context(), user.Identifier())
	if err != nil && len(snap.Items) == 0 {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[BookingView]{Items: views, Status: string(snap.Status)})
}

type createBookingRequest struct {
	DoctorID string `json:"doctorId"`
	Date     string `json:"date,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// CreateBooking handles POST /bookings for the signed-in user.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	user := h.session.User()
	if user == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.DoctorID == "" {
		http.Error(w, "missing doctorId", http.StatusBadRequest)
		return
	}

	booked, err := h.bookings.Create(r.Context(), api.BookingPayload{
		PatientID: user.Identifier(),
		DoctorID:  req.DoctorID,
		Date:      req.Date,
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("booking create failed", "doctor", req.DoctorID, "error", err)
		writeError(w, err)
		return
	}

	h.logger.Info("booking created", "id", booked.ID, "doctor", req.DoctorID)
	writeJSON(w, http.StatusCreated, booked)
}

// DeleteBooking handles DELETE /bookings/{id}.
func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	if h.session.User() == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	if err := h.bookings.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// MyReports handles GET /views/reports, optionally scoped by doctorId.
func (h *Handler) MyReports(w http.ResponseWriter, r *http.Request) {
	user := h.session.User()
	if user == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	doctorRef := r.URL.Query().Get("doctorId")
	views, snap, err := h.views.MyReports(r.Context(), user.Identifier(), doctorRef)
	if err != nil && len(snap.Items) == 0 {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[ReportView]{Items: views, Status: string(snap.Status)})
}

// GetProfile handles GET /profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := h.session.User()
	if user == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	p, ok := h.views.Profile(r.Context(), user.Identifier())
	if !ok {
		http.Error(w, "no profile", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// SaveProfile handles PUT /profile: create on first save, update after.
func (h *Handler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	user := h.session.User()
	if user == nil {
		http.Error(w, "not signed in", http.StatusUnauthorized)
		return
	}

	var payload api.PatientPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	saved, err := h.patients.SaveProfile(r.Context(), user.Identifier(), payload)
	if err != nil {
		h.logger.Error("profile save failed", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps operation failures to HTTP: remote rejections keep their
// upstream status, local precondition failures are client errors, anything
// else is a bad gateway.
func writeError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	case errors.Is(err, patients.ErrNoOwner):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusBadGateway)
	}
}
