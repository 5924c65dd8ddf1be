package api

import "context"

// BookingPayload is the create body for an appointment. The upstream keeps
// the legacy capital-D doctor reference on the wire.
type BookingPayload struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"DoctorId"`
	Date      string `json:"date,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// ListBooks returns all bookings.
func (c *Client) ListBooks(ctx context.Context) ([]Booking, error) {
	var out []Booking
	if err := c.get(ctx, c.endpoint("books")+"/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBooksByPatient returns the bookings for one patient reference.
func (c *Client) ListBooksByPatient(ctx context.Context, patientRef string) ([]Booking, error) {
	var out []Booking
	if err := c.get(ctx, c.endpoint("books", "patient", patientRef), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListBooksByDoctor returns the bookings for one doctor reference.
func (c *Client) ListBooksByDoctor(ctx context.Context, doctorRef string) ([]Booking, error) {
	var out []Booking
	if err := c.get(ctx, c.endpoint("books", "doctor", doctorRef), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateBook creates a booking and returns the stored record.
func (c *Client) CreateBook(ctx context.Context, payload BookingPayload) (Booking, error) {
	var out Booking
	if err := c.post(ctx, c.endpoint("books")+"/", payload, &out); err != nil {
		return Booking{}, err
	}
	return out, nil
}

// DeleteBook cancels a booking.
func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.delete(ctx, c.endpoint("books", id))
}
