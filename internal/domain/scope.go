package domain

import "fmt"

// AssistantVariant identifies one of the named chat personas, each bound
// to its own session and default scope.
type AssistantVariant string

const (
	VariantCollege    AssistantVariant = "college"
	VariantDepartment AssistantVariant = "department"
	VariantSubject    AssistantVariant = "subject"
	VariantGeneral    AssistantVariant = "general"
)

// ParseVariant validates an assistant variant string
func ParseVariant(s string) (AssistantVariant, error) {
	switch AssistantVariant(s) {
	case VariantCollege, VariantDepartment, VariantSubject, VariantGeneral:
		return AssistantVariant(s), nil
	}
	return "", fmt.Errorf("unknown assistant variant: %q", s)
}

// ScopeKind is the department/subject restriction class applied to a
// retrieval query. "all" and "general" both carry no department by default
// but route to different backend endpoints.
type ScopeKind string

const (
	ScopeAll        ScopeKind = "all"
	ScopeDepartment ScopeKind = "department"
	ScopeSubject    ScopeKind = "subject"
	ScopeGeneral    ScopeKind = "general"
)

// ParseScopeKind validates a scope kind string
func ParseScopeKind(s string) (ScopeKind, error) {
	switch ScopeKind(s) {
	case ScopeAll, ScopeDepartment, ScopeSubject, ScopeGeneral:
		return ScopeKind(s), nil
	}
	return "", fmt.Errorf("unknown scope kind: %q", s)
}

// ScopeRequest is the raw, untrusted scope selection for a single query.
// DepartmentFilter and Subject come straight from the client and carry no
// authority until resolved.
type ScopeRequest struct {
	Variant          AssistantVariant `json:"variant" validate:"required,oneof=college department subject general"`
	Kind             ScopeKind        `json:"scope_kind" validate:"required,oneof=all department subject general"`
	DepartmentFilter string           `json:"department,omitempty"`
	Subject          string           `json:"subject,omitempty"`
}

// ResolvedScope is the normalized, policy-checked retrieval scope. It is
// derived per request and never persisted.
//
// Invariants: Kind == subject implies both Department and Subject are set;
// Kind == department implies Department is set; Kind == general never
// carries a department; Kind == all carries one only when an admin chose a
// filter.
type ResolvedScope struct {
	Kind       ScopeKind `json:"kind"`
	Department string    `json:"department,omitempty"`
	Subject    string    `json:"subject,omitempty"`
}

// Equal reports structural equality of two scopes. Session scope-change
// detection relies on this, not on reference identity.
func (s ResolvedScope) Equal(other ResolvedScope) bool {
	return s == other
}
