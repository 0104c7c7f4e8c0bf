// Package catalog talks to the department/subject catalog service.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"campus-assistant/internal/domain"
)

// HTTPClient implements domain.CatalogClient over the catalog service's
// JSON API.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new catalog client
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListDepartments fetches the department catalog
func (c *HTTPClient) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	body, err := c.get(ctx, "/api/departments")
	if err != nil {
		return nil, err
	}

	var departments []domain.Department
	if err := json.Unmarshal(body, &departments); err != nil {
		return nil, fmt.Errorf("failed to parse departments: %w", err)
	}

	return departments, nil
}

// subjectRecord is the catalog's wire shape for a subject
type subjectRecord struct {
	Name      string `json:"name"`
	FileCount int    `json:"file_count"`
}

// ListSubjects fetches the subjects of one department. An unknown or
// empty department yields an empty list, not an error.
func (c *HTTPClient) ListSubjects(ctx context.Context, department string) ([]domain.Subject, error) {
	body, err := c.get(ctx, "/api/subjects/list/"+url.PathEscape(department))
	if err != nil {
		return nil, err
	}

	var payload struct {
		Subjects []subjectRecord `json:"subjects"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse subjects: %w", err)
	}

	subjects := make([]domain.Subject, 0, len(payload.Subjects))
	for _, s := range payload.Subjects {
		subjects = append(subjects, domain.Subject{
			Name:           s.Name,
			DepartmentName: department,
			DocumentCount:  s.FileCount,
		})
	}

	return subjects, nil
}

// CreateSubject registers a subject under a department. The endpoint is
// safe to call twice with the same body; the catalog's uniqueness
// constraint on (department, name) makes the repeat return the existing
// record.
func (c *HTTPClient) CreateSubject(ctx context.Context, department, name string) (*domain.Subject, error) {
	payload, err := json.Marshal(map[string]string{
		"department": department,
		"name":       name,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subject: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/subjects", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog request failed: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		var record subjectRecord
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, fmt.Errorf("failed to parse subject: %w", err)
		}
		return &domain.Subject{
			Name:           record.Name,
			DepartmentName: department,
			DocumentCount:  record.FileCount,
		}, nil
	case resp.StatusCode == http.StatusConflict:
		// Lost a creation race; the stored record wins.
		return c.findSubject(ctx, department, name)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: catalog error (HTTP %d): %s", domain.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	default:
		return nil, fmt.Errorf("catalog error (HTTP %d): %s", resp.StatusCode, string(body))
	}
}

func (c *HTTPClient) findSubject(ctx context.Context, department, name string) (*domain.Subject, error) {
	subjects, err := c.ListSubjects(ctx, department)
	if err != nil {
		return nil, err
	}
	for _, s := range subjects {
		if s.Name == name {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("subject %q not found in department %q after conflict", name, department)
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog request failed: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: catalog error (HTTP %d): %s", domain.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	return body, nil
}
