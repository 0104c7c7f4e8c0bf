package service

import (
	"campus-assistant/internal/domain"
	"campus-assistant/internal/security"
)

// ScopeResolver turns an untrusted ScopeRequest into a ResolvedScope the
// retrieval layer can trust. Resolution is pure: it reads the user and the
// request, touches nothing else, and either returns a scope or a
// *domain.ScopeError.
type ScopeResolver struct {
	policy *security.RoleAccessPolicy
}

// NewScopeResolver creates a new scope resolver
func NewScopeResolver(policy *security.RoleAccessPolicy) *ScopeResolver {
	return &ScopeResolver{policy: policy}
}

// Resolve normalizes and authorizes a scope selection for one user.
//
// Non-admin users cannot widen their reach: any department filter they
// supply is discarded in favor of their home department. A department
// filter on the "all" scope is honored only for admins and only after the
// filter-selection policy allows it.
func (r *ScopeResolver) Resolve(user domain.User, req domain.ScopeRequest) (domain.ResolvedScope, error) {
	filter := req.DepartmentFilter
	if user.Role != domain.RoleAdmin {
		filter = user.HomeDepartment
	}

	var scope domain.ResolvedScope

	switch req.Kind {
	case domain.ScopeAll:
		scope = domain.ResolvedScope{Kind: domain.ScopeAll}
		// Only an explicit admin filter narrows the all scope. A non-admin's
		// home department is an authorization boundary for the other kinds,
		// not a filter here.
		if user.Role == domain.RoleAdmin && req.DepartmentFilter != "" {
			if d := r.policy.Check(user.Role, security.ActionSelectFilter, req.DepartmentFilter, user.HomeDepartment); !d.Allowed {
				return domain.ResolvedScope{}, &domain.ScopeError{Kind: domain.ScopeForbidden, Reason: d.Reason}
			}
			scope.Department = req.DepartmentFilter
		}

	case domain.ScopeDepartment:
		if filter == "" {
			return domain.ResolvedScope{}, &domain.ScopeError{
				Kind:   domain.ScopeMissingDepartment,
				Reason: "department scope requires a department",
			}
		}
		scope = domain.ResolvedScope{Kind: domain.ScopeDepartment, Department: filter}

	case domain.ScopeSubject:
		if req.Subject == "" {
			return domain.ResolvedScope{}, &domain.ScopeError{
				Kind:   domain.ScopeMissingSubject,
				Reason: "subject scope requires a subject",
			}
		}
		if filter == "" {
			return domain.ResolvedScope{}, &domain.ScopeError{
				Kind:   domain.ScopeMissingDepartment,
				Reason: "subject scope requires a department",
			}
		}
		scope = domain.ResolvedScope{Kind: domain.ScopeSubject, Department: filter, Subject: req.Subject}

	case domain.ScopeGeneral:
		scope = domain.ResolvedScope{Kind: domain.ScopeGeneral}

	default:
		return domain.ResolvedScope{}, &domain.ScopeError{
			Kind:   domain.ScopeForbidden,
			Reason: "unknown scope kind",
		}
	}

	action := security.ActionQuery
	switch scope.Kind {
	case domain.ScopeAll:
		action = security.ActionQueryAll
	case domain.ScopeGeneral:
		action = security.ActionQueryGeneral
	}

	if d := r.policy.Check(user.Role, action, scope.Department, user.HomeDepartment); !d.Allowed {
		return domain.ResolvedScope{}, &domain.ScopeError{Kind: domain.ScopeForbidden, Reason: d.Reason}
	}

	return scope, nil
}
