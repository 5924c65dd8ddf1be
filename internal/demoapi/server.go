// Package demoapi is an in-memory stand-in for the hospital platform API.
// It exists for local development and end-to-end tests of the portal client;
// it implements the same routes and envelopes the real service answers with,
// including cookie sessions and the legacy capital-D doctor reference.
package demoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/carelink/patient-portal/pkg/logging"
)

const sessionCookie = "portal_session"

type user struct {
	ID       string `json:"_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	password string
}

type doctor struct {
	ID             string `json:"_id"`
	UserID         string `json:"userId,omitempty"`
	Name           string `json:"name,omitempty"`
	Title          string `json:"title,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Education      string `json:"education,omitempty"`
	Description    string `json:"description,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Category       string `json:"category,omitempty"`
	Status         string `json:"status,omitempty"`
	Image          string `json:"image,omitempty"`
}

type patient struct {
	ID             string `json:"_id"`
	UserID         string `json:"userId,omitempty"`
	Name           string `json:"name,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Age            string `json:"age,omitempty"`
	Phone          string `json:"phone,omitempty"`
	EmergencyPhone string `json:"emergencyPhone,omitempty"`
	BloodType      string `json:"bloodType,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
}

type booking struct {
	ID        string `json:"_id"`
	PatientID string `json:"patientId,omitempty"`
	DoctorID  string `json:"DoctorId,omitempty"`
	Status    string `json:"status,omitempty"`
	Date      string `json:"date,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

type report struct {
	ID        string `json:"_id"`
	PatientID string `json:"patientId,omitempty"`
	DoctorID  string `json:"DoctorId,omitempty"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Server is the in-memory hospital API.
type Server struct {
	mu       sync.RWMutex
	users    map[string]*user // by email
	sessions map[string]string
	doctors  []doctor
	patients []patient
	bookings []booking
	reports  []report

	logger *logging.Logger
	router chi.Router
}

// New creates the demo API. With seed=true a small roster of doctors is
// preloaded so a fresh portal has something to browse.
func New(logger *logging.Logger, seed bool) *Server {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Server{
		users:    make(map[string]*user),
		sessions: make(map[string]string),
		logger:   logger,
	}
	if seed {
		s.seed()
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/logout", s.logout)
			r.Get("/session", s.session)
		})
		r.Route("/doctors", func(r chi.Router) {
			r.Get("/", s.listDoctors)
			r.Get("/category/{category}", s.listDoctorsByCategory)
			r.Get("/user/{userID}", s.getDoctorByUser)
			r.Get("/{id}", s.getDoctor)
			r.Post("/", s.createDoctor)
			r.Put("/status/{id}", s.updateDoctorStatus)
			r.Put("/{id}", s.updateDoctor)
			r.Delete("/{id}", s.deleteDoctor)
		})
		r.Route("/patients", func(r chi.Router) {
			r.Get("/", s.listPatients)
			r.Get("/user/{userID}", s.getPatientByUser)
			r.Get("/{id}", s.getPatient)
			r.Post("/", s.createPatient)
			r.Put("/{id}", s.updatePatient)
			r.Delete("/{id}", s.deletePatient)
		})
		r.Route("/books", func(r chi.Router) {
			r.Get("/", s.listBookings)
			r.Get("/patient/{ref}", s.listBookingsByPatient)
			r.Get("/doctor/{ref}", s.listBookingsByDoctor)
			r.Post("/", s.createBooking)
			r.Delete("/{id}", s.deleteBooking)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.listReports)
			r.Get("/patient/{ref}/doctor/{doctorRef}", s.listReportsByPatientAndDoctor)
			r.Get("/patient/{ref}", s.listReportsByPatient)
			r.Get("/doctor/{ref}", s.listReportsByDoctor)
			r.Get("/{id}", s.getReport)
			r.Post("/", s.createReport)
			r.Put("/{id}", s.updateReport)
			r.Delete("/{id}", s.deleteReport)
		})
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler for the demo API.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) seed() {
	roster := []doctor{
		{Name: "Dr. Maya Ayers", Title: "MD", Specialization: "Family Medicine", Category: "Primary", Status: "active"},
		{Name: "Dr. Omar Banks", Title: "MD", Specialization: "Cardiology", Category: "Heart & Circulation", Status: "active"},
		{Name: "Dr. Lena Cole", Title: "DO", Specialization: "Orthopedics", Category: "Bone, Joint & Muscle", Status: "active"},
	}
	for i := range roster {
		roster[i].ID = uuid.New().String()
		roster[i].UserID = uuid.New().String()
	}
	s.doctors = roster
}

// --- auth ---

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		writeMessage(w, http.StatusConflict, "email already registered")
		return
	}
	u := &user{ID: uuid.New().String(), Name: req.Name, Email: req.Email, password: req.Password}
	s.users[req.Email] = u
	token := uuid.New().String()
	s.sessions[token] = u.ID
	s.mu.Unlock()

	s.logger.Info("user registered", "id", u.ID, "email", u.Email)
	s.setSession(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{"user": u})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	u, ok := s.users[req.Email]
	if !ok || u.password != req.Password {
		s.mu.Unlock()
		writeMessage(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token := uuid.New().String()
	s.sessions[token] = u.ID
	s.mu.Unlock()

	s.setSession(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	u := s.currentUser(r)
	if u == nil {
		writeMessage(w, http.StatusUnauthorized, "no active session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (s *Server) setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Expires:  time.Now().Add(24 * time.Hour),
	})
}

func (s *Server) currentUser(r *http.Request) *user {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.sessions[c.Value]
	if !ok {
		return nil
	}
	for _, u := range s.users {
		if u.ID == userID {
			return u
		}
	}
	return nil
}

// --- doctors ---

func (s *Server) listDoctors(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.doctors)
}

func (s *Server) listDoctorsByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]doctor, 0)
	for _, d := range s.doctors {
		if strings.EqualFold(d.Category, category) {
			out = append(out, d)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) getDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.doctors {
		if d.ID == id {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "doctor not found")
}

func (s *Server) getDoctorByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.doctors {
		if d.UserID == userID {
			writeJSON(w, http.StatusOK, d)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "doctor not found")
}

func (s *Server) createDoctor(w http.ResponseWriter, r *http.Request) {
	d, ok := s.decodeDoctor(w, r)
	if !ok {
		return
	}
	d.ID = uuid.New().String()
	if d.UserID == "" {
		d.UserID = uuid.New().String()
	}

	s.mu.Lock()
	s.doctors = append(s.doctors, d)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, d)
}

func (s *Server) updateDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := s.decodeDoctor(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.doctors {
		if d.ID == id {
			in.ID = d.ID
			if in.UserID == "" {
				in.UserID = d.UserID
			}
			s.doctors[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "doctor not found")
}

func (s *Server) updateDoctorStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.doctors {
		if d.ID == id {
			s.doctors[i].Status = req.Status
			writeJSON(w, http.StatusOK, s.doctors[i])
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "doctor not found")
}

func (s *Server) deleteDoctor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, d := range s.doctors {
		if d.ID == id {
			s.doctors = append(s.doctors[:i], s.doctors[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "doctor not found")
}

// decodeDoctor accepts both JSON bodies and the multipart form the portal
// sends when an image is attached.
func (s *Server) decodeDoctor(w http.ResponseWriter, r *http.Request) (doctor, bool) {
	var d doctor
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid multipart body")
			return d, false
		}
		d = doctor{
			Name:           r.FormValue("name"),
			UserID:         r.FormValue("userId"),
			Title:          r.FormValue("title"),
			Status:         r.FormValue("status"),
			Specialization: r.FormValue("specialization"),
			Education:      r.FormValue("education"),
			Description:    r.FormValue("description"),
			Phone:          r.FormValue("phone"),
			Category:       r.FormValue("category"),
		}
		if _, header, err := r.FormFile("image"); err == nil {
			d.Image = header.Filename
		}
		return d, true
	}
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return d, false
	}
	return d, true
}

// --- patients ---

func (s *Server) listPatients(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.patients)
}

func (s *Server) getPatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "patient not found")
}

func (s *Server) getPatientByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.patients {
		if p.UserID == userID {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "patient not found")
}

func (s *Server) createPatient(w http.ResponseWriter, r *http.Request) {
	var p patient
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	p.ID = uuid.New().String()

	s.mu.Lock()
	s.patients = append(s.patients, p)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) updatePatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in patient
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.patients {
		if p.ID == id {
			in.ID = p.ID
			if in.UserID == "" {
				in.UserID = p.UserID
			}
			s.patients[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "patient not found")
}

func (s *Server) deletePatient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range s.patients {
		if p.ID == id {
			s.patients = append(s.patients[:i], s.patients[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "patient not found")
}

// --- bookings ---

func (s *Server) listBookings(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.bookings)
}

func (s *Server) listBookingsByPatient(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]booking, 0)
	for _, b := range s.bookings {
		if b.PatientID == ref {
			out = append(out, b)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listBookingsByDoctor(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]booking, 0)
	for _, b := range s.bookings {
		if b.DoctorID == ref {
			out = append(out, b)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createBooking(w http.ResponseWriter, r *http.Request) {
	var b booking
	if err := json.NewDecoder(r.Body).Decode(&b); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if b.PatientID == "" || b.DoctorID == "" {
		writeMessage(w, http.StatusBadRequest, "patientId and DoctorId are required")
		return
	}
	b.ID = uuid.New().String()
	if b.Date == "" {
		b.Date = time.Now().UTC().Format(time.RFC3339)
	}

	s.mu.Lock()
	s.bookings = append(s.bookings, b)
	s.mu.Unlock()

	s.logger.Info("booking created", "id", b.ID, "patient", b.PatientID, "doctor", b.DoctorID)
	writeJSON(w, http.StatusCreated, b)
}

func (s *Server) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bookings {
		if b.ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "booking not found")
}

// --- reports ---

func (s *Server) listReports(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	writeJSON(w, http.StatusOK, s.reports)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rep := range s.reports {
		if rep.ID == id {
			writeJSON(w, http.StatusOK, rep)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "report not found")
}

func (s *Server) listReportsByPatient(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]report, 0)
	for _, rep := range s.reports {
		if rep.PatientID == ref {
			out = append(out, rep)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listReportsByDoctor(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]report, 0)
	for _, rep := range s.reports {
		if rep.DoctorID == ref {
			out = append(out, rep)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) listReportsByPatientAndDoctor(w http.ResponseWriter, r *http.Request) {
	ref := chi.URLParam(r, "ref")
	doctorRef := chi.URLParam(r, "doctorRef")
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]report, 0)
	for _, rep := range s.reports {
		if rep.PatientID == ref && rep.DoctorID == doctorRef {
			out = append(out, rep)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var rep report
	if err := json.NewDecoder(r.Body).Decode(&rep); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rep.ID = uuid.New().String()
	rep.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	s.mu.Lock()
	s.reports = append(s.reports, rep)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) updateReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in report
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rep := range s.reports {
		if rep.ID == id {
			in.ID = rep.ID
			in.CreatedAt = rep.CreatedAt
			s.reports[i] = in
			writeJSON(w, http.StatusOK, in)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "report not found")
}

func (s *Server) deleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rep := range s.reports {
		if rep.ID == id {
			s.reports = append(s.reports[:i], s.reports[i+1:]...)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeMessage(w, http.StatusNotFound, "report not found")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
