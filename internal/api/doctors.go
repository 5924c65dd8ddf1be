package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
)

// ImageAttachment is an optional profile image carried with doctor
// create/update payloads. When present the request goes out as multipart
// form data instead of JSON.
type ImageAttachment struct {
	FileName string
	Data     []byte
}

// DoctorPayload is the create/update body for a doctor profile.
type DoctorPayload struct {
	Name           string `json:"name,omitempty"`
	UserID         string `json:"userId,omitempty"`
	Title          string `json:"title,omitempty"`
	Status         string `json:"status,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	Education      string `json:"education,omitempty"`
	Description    string `json:"description,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Category       string `json:"category,omitempty"`

	Image *ImageAttachment `json:"-"`
}

// formFields returns the multipart field set, mirroring the JSON field names.
func (p DoctorPayload) formFields() map[string]string {
	return map[string]string{
		"name":           p.Name,
		"userId":         p.UserID,
		"title":          p.Title,
		"status":         p.Status,
		"specialization": p.Specialization,
		"education":      p.Education,
		"description":    p.Description,
		"phone":          p.Phone,
		"category":       p.Category,
	}
}

// ListDoctors returns all doctors.
func (c *Client) ListDoctors(ctx context.Context) ([]Doctor, error) {
	var out []Doctor
	if err := c.get(ctx, c.endpoint("doctors")+"/", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListDoctorsByCategory returns the doctors in one category.
func (c *Client) ListDoctorsByCategory(ctx context.Context, category string) ([]Doctor, error) {
	var out []Doctor
	if err := c.get(ctx, c.endpoint("doctors", "category", category), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetDoctor returns one doctor by record id.
func (c *Client) GetDoctor(ctx context.Context, id string) (Doctor, error) {
	var out Doctor
	if err := c.get(ctx, c.endpoint("doctors", id), &out); err != nil {
		return Doctor{}, err
	}
	return out, nil
}

// GetDoctorByUser returns one doctor by the owning user's id.
func (c *Client) GetDoctorByUser(ctx context.Context, userID string) (Doctor, error) {
	var out Doctor
	if err := c.get(ctx, c.endpoint("doctors", "user", userID), &out); err != nil {
		return Doctor{}, err
	}
	return out, nil
}

// CreateDoctor creates a doctor profile, as multipart form data when an
// image is attached.
func (c *Client) CreateDoctor(ctx context.Context, payload DoctorPayload) (Doctor, error) {
	var out Doctor
	if payload.Image != nil {
		if err := c.postMultipart(ctx, c.endpoint("doctors")+"/", payload, &out); err != nil {
			return Doctor{}, err
		}
		return out, nil
	}
	if err := c.post(ctx, c.endpoint("doctors")+"/", payload, &out); err != nil {
		return Doctor{}, err
	}
	return out, nil
}

// UpdateDoctor updates a doctor profile by record id.
func (c *Client) UpdateDoctor(ctx context.Context, id string, payload DoctorPayload) (Doctor, error) {
	var out Doctor
	if payload.Image != nil {
		if err := c.putMultipart(ctx, c.endpoint("doctors", id), payload, &out); err != nil {
			return Doctor{}, err
		}
		return out, nil
	}
	if err := c.put(ctx, c.endpoint("doctors", id), payload, &out); err != nil {
		return Doctor{}, err
	}
	return out, nil
}

// UpdateDoctorStatus changes only the availability status of a doctor.
func (c *Client) UpdateDoctorStatus(ctx context.Context, id, status string) (Doctor, error) {
	var out Doctor
	body := struct {
		Status string `json:"status"`
	}{Status: status}
	if err := c.put(ctx, c.endpoint("doctors", "status", id), body, &out); err != nil {
		return Doctor{}, err
	}
	return out, nil
}

// DeleteDoctor removes a doctor profile.
func (c *Client) DeleteDoctor(ctx context.Context, id string) error {
	return c.delete(ctx, c.endpoint("doctors", id))
}

func (c *Client) postMultipart(ctx context.Context, endpoint string, payload DoctorPayload, out any) error {
	return c.doMultipart(ctx, http.MethodPost, endpoint, payload, out)
}

func (c *Client) putMultipart(ctx context.Context, endpoint string, payload DoctorPayload, out any) error {
	return c.doMultipart(ctx, http.MethodPut, endpoint, payload, out)
}

func (c *Client) doMultipart(ctx context.Context, method, endpoint string, payload DoctorPayload, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for field, value := range payload.formFields() {
		if value == "" {
			continue
		}
		if err := w.WriteField(field, value); err != nil {
			return fmt.Errorf("api: write form field %s: %w", field, err)
		}
	}

	part, err := w.CreateFormFile("image", payload.Image.FileName)
	if err != nil {
		return fmt.Errorf("api: create image part: %w", err)
	}
	if _, err := part.Write(payload.Image.Data); err != nil {
		return fmt.Errorf("api: write image: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("api: finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, &buf)
	if err != nil {
		return fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	return c.send(req, out)
}
