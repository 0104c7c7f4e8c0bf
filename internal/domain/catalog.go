package domain

import "context"

// Department represents a catalog department. Immutable once created,
// unique by name.
type Department struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// Subject belongs to exactly one department; its composite identity is
// (DepartmentName, Name). DocumentCount is advisory and refreshed after
// uploads.
type Subject struct {
	Name           string `json:"name"`
	DepartmentName string `json:"department_name"`
	DocumentCount  int    `json:"document_count"`
}

// CatalogClient defines the interface to the department/subject catalog
// service
type CatalogClient interface {
	ListDepartments(ctx context.Context) ([]Department, error)
	ListSubjects(ctx context.Context, department string) ([]Subject, error)
	CreateSubject(ctx context.Context, department, name string) (*Subject, error)
}
