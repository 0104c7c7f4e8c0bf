package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"campus-assistant/internal/api/middleware"
	"campus-assistant/internal/api/response"
	"campus-assistant/internal/domain"
	"campus-assistant/internal/service"
)

const defaultHistoryLimit = 50

// ChatHandler serves the per-user assistant sessions
type ChatHandler struct {
	hubs   *service.HubManager
	audits domain.TurnAuditRepository
}

// NewChatHandler creates a new chat handler. The audit repository may be
// nil, in which case the history endpoint reports empty.
func NewChatHandler(hubs *service.HubManager, audits domain.TurnAuditRepository) *ChatHandler {
	return &ChatHandler{hubs: hubs, audits: audits}
}

type askRequest struct {
	Query      string `json:"query" validate:"required"`
	ScopeKind  string `json:"scope_kind" validate:"required,oneof=all department subject general"`
	Department string `json:"department,omitempty"`
	Subject    string `json:"subject,omitempty"`
}

// Ask handles POST /assistants/{variant}/ask
func (h *ChatHandler) Ask(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	variant, err := domain.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	kind, err := domain.ParseScopeKind(req.ScopeKind)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	result, err := h.hubs.Hub(user).Ask(r.Context(), domain.ScopeRequest{
		Variant:          variant,
		Kind:             kind,
		DepartmentFilter: req.Department,
		Subject:          req.Subject,
	}, req.Query)
	if err != nil {
		writeAskError(w, err)
		return
	}

	response.OK(w, result)
}

// writeAskError maps chat turn errors to HTTP statuses. Retrieval
// failures never land here; they surface as apology turns.
func writeAskError(w http.ResponseWriter, err error) {
	if scopeErr, ok := domain.AsScopeError(err); ok {
		switch scopeErr.Kind {
		case domain.ScopeForbidden:
			response.Forbidden(w, scopeErr.Reason)
		default:
			response.BadRequest(w, map[string]string{
				"kind":   string(scopeErr.Kind),
				"reason": scopeErr.Reason,
			})
		}
		return
	}

	switch {
	case errors.Is(err, domain.ErrSessionBusy):
		response.Conflict(w, "a question is already pending on this assistant")
	case errors.Is(err, domain.ErrScopeChanged):
		response.Conflict(w, "the session changed while the question was running")
	default:
		response.InternalError(w, "failed to process question")
	}
}

// Messages handles GET /assistants/{variant}/messages
func (h *ChatHandler) Messages(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	variant, err := domain.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	messages := h.hubs.Hub(user).Messages(variant)
	response.OK(w, map[string]any{"messages": messages})
}

// Reset handles POST /assistants/{variant}/reset
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	variant, err := domain.ParseVariant(chi.URLParam(r, "variant"))
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	h.hubs.Hub(user).Reset(variant)
	response.NoContent(w)
}

// History handles GET /history, returning the user's recent audited turns
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			response.BadRequest(w, "limit must be between 1 and 500")
			return
		}
		limit = parsed
	}

	if h.audits == nil {
		response.OK(w, map[string]any{"turns": []domain.TurnAudit{}})
		return
	}

	turns, err := h.audits.ListByUser(r.Context(), user.ID, limit)
	if err != nil {
		response.InternalError(w, "failed to load history")
		return
	}
	if turns == nil {
		turns = []domain.TurnAudit{}
	}

	response.OK(w, map[string]any{"turns": turns})
}
