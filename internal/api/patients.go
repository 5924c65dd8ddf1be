package api

import "context"

// PatientPayload is the create/update body for a patient profile.
type PatientPayload struct {
	UserID         string `json:"userId,omitempty"`
	Name           string `json:"name,omitempty"`
	Gender         string `json:"gender,omitempty"`
	Age            string `json:"age,omitempty"`
	Phone          string `json:"phone,omitempty"`
	EmergencyPhone string `json:"emergencyPhone,omitempty"`
	BloodType      string `json:"bloodType,omitempty"`
	MedicalHistory string `json:"medicalHistory,omitempty"`
}

// ListPatients returns all patients.
func (c *Client) ListPatients(ctx context.Context) ([]Patient, error) {
	var out []Patient
	if err := c.get(ctx, c.endpoint("patients")+"/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPatient returns one patient by record id.
func (c *Client) GetPatient(ctx context.Context, id string) (Patient, error) {
	var out Patient
	if err := c.get(ctx, c.endpoint("patients", id), &out); err != nil {
		return Patient{}, err
	}
	return out, nil
}

// GetPatientByUser returns one patient by the owning user's id.
func (c *Client) GetPatientByUser(ctx context.Context, userID string) (Patient, error) {
	var out Patient
	if err := c.get(ctx, c.endpoint("patients", "user", userID), &out); err != nil {
		return Patient{}, err
	}
	return out, nil
}

// CreatePatient creates a patient profile.
func (c *Client) CreatePatient(ctx context.Context, payload PatientPayload) (Patient, error) {
	var out Patient
	if err := c.post(ctx, c.endpoint("patients")+"/", payload, &out); err != nil {
		return Patient{}, err
	}
	return out, nil
}

// UpdatePatient updates a patient profile by record id.
func (c *Client) UpdatePatient(ctx context.Context, id string, payload PatientPayload) (Patient, error) {
	var out Patient
	if err := c.put(ctx, c.endpoint("patients", id), payload, &out); err != nil {
		return Patient{}, err
	}
	return out, nil
}

// DeletePatient removes a patient profile.
func (c *Client) DeletePatient(ctx context.Context, id string) error {
	return c.delete(ctx, c.endpoint("patients", id))
}
