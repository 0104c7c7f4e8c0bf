package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"campus-assistant/internal/domain"
)

// endpoints maps each scope kind to its backend route. "all" and
// "general" are distinct kinds with distinct routes even though neither
// restricts to a department by default.
var endpoints = map[domain.ScopeKind]string{
	domain.ScopeAll:        "/api/documents/chat-context",
	domain.ScopeDepartment: "/api/department-events/chat",
	domain.ScopeSubject:    "/api/subject-documents/chat",
	domain.ScopeGeneral:    "/api/simple-chat",
}

// HTTPClient implements Client over the retrieval backend's JSON API
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a new retrieval client
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// Query issues exactly one retrieval call for the given scope. A timeout
// is indistinguishable from any other transport failure to the caller.
func (c *HTTPClient) Query(ctx context.Context, scope domain.ResolvedScope, req Request) (*Response, error) {
	endpoint, ok := endpoints[scope.Kind]
	if !ok {
		return nil, fmt.Errorf("no retrieval endpoint for scope kind %q", scope.Kind)
	}

	req.Department = scope.Department
	req.Subject = scope.Subject
	req.SearchScope = scope.Kind

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieval request failed: %v", domain.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: retrieval error (HTTP %d): %s", domain.ErrUpstreamUnavailable, resp.StatusCode, string(body))
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &result, nil
}
