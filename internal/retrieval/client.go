// Package retrieval talks to the document-retrieval backend. The backend
// exposes one chat endpoint per scope kind; this package owns that mapping
// so callers never hardcode endpoint selection.
package retrieval

import (
	"context"

	"campus-assistant/internal/domain"
)

// Request is the uniform outbound shape carried to every scope endpoint
type Request struct {
	Query       string           `json:"query"`
	UserID      string           `json:"user_id"`
	Role        domain.Role      `json:"role"`
	Department  string           `json:"department,omitempty"`
	Subject     string           `json:"subject,omitempty"`
	SearchScope domain.ScopeKind `json:"search_scope"`
}

// Response is the backend's answer envelope. ContextBreakdown is only
// returned by the context-aware endpoints.
type Response struct {
	Response         string                   `json:"response"`
	SourcesCount     int                      `json:"sources_count"`
	ContextBreakdown *domain.ContextBreakdown `json:"context_breakdown,omitempty"`
}

// Client defines the interface for issuing one retrieval call under a
// resolved scope
type Client interface {
	Query(ctx context.Context, scope domain.ResolvedScope, req Request) (*Response, error)
}
