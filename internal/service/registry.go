package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"campus-assistant/internal/domain"
)

// CatalogCache is the slice of the cache layer the registry needs. A nil
// cache disables caching entirely.
type CatalogCache interface {
	GetDepartments(ctx context.Context) ([]domain.Department, error)
	GetDepartmentsStale(ctx context.Context) ([]domain.Department, error)
	SetDepartments(ctx context.Context, departments []domain.Department) error
	GetSubjects(ctx context.Context, department string) ([]domain.Subject, error)
	GetSubjectsStale(ctx context.Context, department string) ([]domain.Subject, error)
	SetSubjects(ctx context.Context, department string, subjects []domain.Subject) error
	InvalidateSubjects(ctx context.Context, department string) error
}

// HierarchyRegistry is the source of truth for which retrieval scopes
// exist. It fronts the catalog service with a cache and degrades to the
// last-known-good copy when the catalog is unreachable, so an upstream
// outage never blocks the client.
type HierarchyRegistry struct {
	catalog domain.CatalogClient
	cache   CatalogCache
}

// NewHierarchyRegistry creates a new hierarchy registry
func NewHierarchyRegistry(catalog domain.CatalogClient, cache CatalogCache) *HierarchyRegistry {
	return &HierarchyRegistry{
		catalog: catalog,
		cache:   cache,
	}
}

// ListDepartments returns the department catalog, preferring the fresh
// cache, then the catalog service, then the stale cache. It fails with
// ErrUpstreamUnavailable only when all three are empty-handed.
func (r *HierarchyRegistry) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	if r.cache != nil {
		cached, err := r.cache.GetDepartments(ctx)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	departments, err := r.catalog.ListDepartments(ctx)
	if err != nil {
		if stale := r.staleDepartments(ctx, err); stale != nil {
			return stale, nil
		}
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	if r.cache != nil {
		if err := r.cache.SetDepartments(ctx, departments); err != nil {
			log.Warn().Err(err).Msg("failed to cache departments")
		}
	}

	return departments, nil
}

func (r *HierarchyRegistry) staleDepartments(ctx context.Context, cause error) []domain.Department {
	if r.cache == nil || !errors.Is(cause, domain.ErrUpstreamUnavailable) {
		return nil
	}
	stale, err := r.cache.GetDepartmentsStale(ctx)
	if err != nil || stale == nil {
		return nil
	}
	log.Warn().Err(cause).Msg("catalog unreachable, serving last-known-good departments")
	return stale
}

// ListSubjects returns the subjects of one department. An empty list is a
// valid answer for a department with no subjects yet.
func (r *HierarchyRegistry) ListSubjects(ctx context.Context, department string) ([]domain.Subject, error) {
	if r.cache != nil {
		cached, err := r.cache.GetSubjects(ctx, department)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	subjects, err := r.catalog.ListSubjects(ctx, department)
	if err != nil {
		if r.cache != nil && errors.Is(err, domain.ErrUpstreamUnavailable) {
			stale, cacheErr := r.cache.GetSubjectsStale(ctx, department)
			if cacheErr == nil && stale != nil {
				log.Warn().Err(err).Str("department", department).Msg("catalog unreachable, serving last-known-good subjects")
				return stale, nil
			}
		}
		return nil, fmt.Errorf("failed to list subjects for %q: %w", department, err)
	}

	if subjects == nil {
		subjects = []domain.Subject{}
	}

	if r.cache != nil {
		if err := r.cache.SetSubjects(ctx, department, subjects); err != nil {
			log.Warn().Err(err).Str("department", department).Msg("failed to cache subjects")
		}
	}

	return subjects, nil
}

// CreateSubject registers a subject under a department. Creation is
// idempotent: two uploaders racing on the same (department, name) both get
// the same stored record back. The department's cached subject list is
// invalidated so the next ListSubjects reflects the new entry.
func (r *HierarchyRegistry) CreateSubject(ctx context.Context, department, name string) (*domain.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: subject name is empty", domain.ErrInvalidName)
	}

	subject, err := r.catalog.CreateSubject(ctx, department, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create subject %q: %w", name, err)
	}

	if r.cache != nil {
		if err := r.cache.InvalidateSubjects(ctx, department); err != nil {
			log.Warn().Err(err).Str("department", department).Msg("failed to invalidate subject cache")
		}
	}

	return subject, nil
}

// DepartmentExists reports whether a department with the given name is in
// the catalog.
func (r *HierarchyRegistry) DepartmentExists(ctx context.Context, name string) (bool, error) {
	departments, err := r.ListDepartments(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range departments {
		if d.Name == name {
			return true, nil
		}
	}
	return false, nil
}
