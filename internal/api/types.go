package api

// Wire records mirror the upstream Mongo-backed API: primary keys arrive as
// "_id" and doctor/patient records additionally carry the owning user's id.

// User is the authenticated identity held by the session.
type User struct {
	ID       string `json:"_id,omitempty"`
	LegacyID string `json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
}

// Identifier returns the stable user identifier, whichever field the server
// populated.
func (u User) Identifier() string {
	if u.ID != "" {
		return u.ID
	}
	return u.LegacyID
}

// Doctor is a practitioner profile. Referenced from bookings and reports by
// UserID, fetched directly by ID.
type Doctor struct {
	ID             string `json:"_id,omitempty"`
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

func (d Doctor) RecordID() string { return d.ID }
func (d Doctor) OwnerID() string  { return d.UserID }

// Patient is the profile the signed-in user maintains for themselves.
type Patient struct {
	ID             string `json:"_id,omitempty"`
	UserID         string `json:"userId,omitempty"`
	Name           string `json:"name,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Age            string `json:"age,omitempty"`
	Phone          string `json:"phone,omitempty"`
	EmergencyPhone string `json:"emergencyPhone,omitempty"`
	BloodType      string `json:"bloodType,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
}

func (p Patient) RecordID() string { return p.ID }
func (p Patient) OwnerID() string  { return p.UserID }

// Booking links a patient to a doctor at a point in time. PatientID and
// DoctorID carry owner user ids, not doctor/patient record ids; the upstream
// serializes the doctor reference with a capital D.
type Booking struct {
	ID        string `json:"_id,omitempty"`
	PatientID string `json:"patientId,omitempty"`
	DoctorID  string `json:"DoctorId,omitempty"`
	Status    string `json:"status,omitempty"`
	Date      string `json:"date,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

func (b Booking) RecordID() string { return b.ID }
func (b Booking) OwnerID() string  { return "" }

// DoctorRef returns the booking's doctor reference.
func (b Booking) DoctorRef() string { return b.DoctorID }

// Report is a medical report authored by a doctor for a patient. Older
// records serialize the doctor reference as "doctorId" instead of "DoctorId";
// DoctorRef hides the difference.
type Report struct {
	ID          string `json:"_id,omitempty"`
	PatientID   string `json:"patientId,omitempty"`
	DoctorID    string `json:"DoctorId,omitempty"`
	AltDoctorID string `json:"doctorId,omitempty"`
	Title       string `json:"title,omitempty"`
	Content     string `json:"content,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func (r Report) RecordID() string { return r.ID }
func (r Report) OwnerID() string  { return "" }

// DoctorRef returns the report's doctor reference, whichever field the
// server populated.
func (r Report) DoctorRef() string {
	if r.DoctorID != "" {
		return r.DoctorID
	}
	return r.AltDoctorID
}
