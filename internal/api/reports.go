package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// ReportPayload is the create/update body for a medical report.
type ReportPayload struct {
	PatientID string `json:"patientId,omitempty"`
	DoctorID  string `json:"DoctorId,omitempty"`
	Title     string `json:"title,omitempty"`
	Content   string `json:"content,omitempty"`
}

// ListReports returns all reports.
func (c *Client) ListReports(ctx context.Context) ([]Report, error) {
	var out []Report
	if err := c.get(ctx, c.endpoint("reports")+"/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetReport returns one report by record id.
func (c *Client) GetReport(ctx context.Context, id string) (Report, error) {
	var out Report
	if err := c.get(ctx, c.endpoint("reports", id), &out); err != nil {
		return Report{}, err
	}
	return out, nil
}

// ListReportsByPatient returns the reports for one patient reference.
func (c *Client) ListReportsByPatient(ctx context.Context, patientRef string) ([]Report, error) {
	var out []Report
	if err := c.get(ctx, c.endpoint("reports", "patient", patientRef), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReportsByDoctor returns the reports for one doctor reference.
func (c *Client) ListReportsByDoctor(ctx context.Context, doctorRef string) ([]Report, error) {
	var out []Report
	if err := c.get(ctx, c.endpoint("reports", "doctor", doctorRef), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReportsByPatientAndDoctor returns the reports scoped to one
// patient/doctor pair. The endpoint historically answers with either an
// array or a single object; both decode to a list here.
func (c *Client) ListReportsByPatientAndDoctor(ctx context.Context, patientRef, doctorRef string) ([]Report, error) {
	var raw json.RawMessage
	if err := c.get(ctx, c.endpoint("reports", "patient", patientRef, "doctor", doctorRef), &raw); err != nil {
		return nil, err
	}
	return normalizeReportList(raw)
}

func normalizeReportList(raw json.RawMessage) ([]Report, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var list []Report
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var single Report
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("api: unmarshal report payload: %w", err)
	}
	return []Report{single}, nil
}

// CreateReport creates a report and returns the stored record.
func (c *Client) CreateReport(ctx context.Context, payload ReportPayload) (Report, error) {
	var out Report
	if err := c.post(ctx, c.endpoint("reports")+"/", payload, &out); err != nil {
		return Report{}, err
	}
	return out, nil
}

// UpdateReport updates a report by record id.
func (c *Client) UpdateReport(ctx context.Context, id string, payload ReportPayload) (Report, error) {
	var out Report
	if err := c.put(ctx, c.endpoint("reports", id), payload, &out); err != nil {
		return Report{}, err
	}
	return out, nil
}

// DeleteReport removes a report.
func (c *Client) DeleteReport(ctx context.Context, id string) error {
	return c.delete(ctx, c.endpoint("reports", id))
}
