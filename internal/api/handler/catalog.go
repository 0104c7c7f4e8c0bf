package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"campus-assistant/internal/api/middleware"
	"campus-assistant/internal/api/response"
	"campus-assistant/internal/domain"
	"campus-assistant/internal/security"
	"campus-assistant/internal/service"
)

// CacheFlusher is the slice of the cache the catalog handler administers
type CacheFlusher interface {
	FlushFresh(ctx context.Context) (int64, error)
}

// CatalogHandler serves the department/subject hierarchy
type CatalogHandler struct {
	registry            *service.HierarchyRegistry
	policy              *security.RoleAccessPolicy
	cache               CacheFlusher
	fallbackDepartments []string
}

// NewCatalogHandler creates a new catalog handler. fallbackDepartments is
// served when the catalog is unreachable and nothing is cached.
func NewCatalogHandler(registry *service.HierarchyRegistry, policy *security.RoleAccessPolicy, cache CacheFlusher, fallbackDepartments []string) *CatalogHandler {
	return &CatalogHandler{
		registry:            registry,
		policy:              policy,
		cache:               cache,
		fallbackDepartments: fallbackDepartments,
	}
}

// ListDepartments handles GET /catalog/departments
func (h *CatalogHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.registry.ListDepartments(r.Context())
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) && len(h.fallbackDepartments) > 0 {
			log.Warn().Err(err).Msg("catalog unavailable, serving configured fallback departments")
			fallback := make([]domain.Department, 0, len(h.fallbackDepartments))
			for _, name := range h.fallbackDepartments {
				fallback = append(fallback, domain.Department{Name: name})
			}
			response.OK(w, map[string]any{"departments": fallback, "degraded": true})
			return
		}
		response.ServiceUnavailable(w, "department catalog is unavailable")
		return
	}

	response.OK(w, map[string]any{"departments": departments})
}

// ListSubjects handles GET /catalog/departments/{department}/subjects
func (h *CatalogHandler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	department := chi.URLParam(r, "department")
	if department == "" {
		response.BadRequest(w, "missing department")
		return
	}

	subjects, err := h.registry.ListSubjects(r.Context(), department)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamUnavailable) {
			response.ServiceUnavailable(w, "subject catalog is unavailable")
			return
		}
		response.InternalError(w, "failed to list subjects")
		return
	}

	response.OK(w, map[string]any{"subjects": subjects})
}

type createSubjectRequest struct {
	Name string `json:"name" validate:"required"`
}

// CreateSubject handles POST /catalog/departments/{department}/subjects
func (h *CatalogHandler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	department := chi.URLParam(r, "department")
	if department == "" {
		response.BadRequest(w, "missing department")
		return
	}

	var req createSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if d := h.policy.Check(user.Role, security.ActionCreateSubject, department, user.HomeDepartment); !d.Allowed {
		response.Forbidden(w, d.Reason)
		return
	}

	// When the catalog is unreachable the existence check is skipped; the
	// create call below fails against the same outage anyway.
	if exists, err := h.registry.DepartmentExists(r.Context(), department); err == nil && !exists {
		response.NotFound(w, "unknown department")
		return
	}

	subject, err := h.registry.CreateSubject(r.Context(), department, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidName):
			response.BadRequest(w, "subject name must not be empty")
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			response.ServiceUnavailable(w, "subject catalog is unavailable")
		default:
			response.InternalError(w, "failed to create subject")
		}
		return
	}

	response.Created(w, subject)
}

// FlushCache handles POST /cache/flush. Admin only: drops all fresh
// catalog cache entries while keeping the last-known-good copies.
func (h *CatalogHandler) FlushCache(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}
	if d := h.policy.Check(user.Role, security.ActionFlushCache, "", user.HomeDepartment); !d.Allowed {
		response.Forbidden(w, d.Reason)
		return
	}

	deleted, err := h.cache.FlushFresh(r.Context())
	if err != nil {
		response.InternalError(w, "failed to flush cache")
		return
	}

	response.OK(w, map[string]any{"deleted": deleted})
}
