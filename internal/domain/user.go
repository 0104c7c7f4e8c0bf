package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role represents a platform role
type Role string

const (
	RoleStudent         Role = "student"
	RoleTeacher         Role = "teacher"
	RoleDepartmentAdmin Role = "department_admin"
	RoleAdmin           Role = "admin"
)

// ParseRole validates and normalizes a role string
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleTeacher, RoleDepartmentAdmin, RoleAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role: %q", s)
}

// User represents an authenticated platform user.
// Admins have no fixed home department; every other role does.
type User struct {
	ID             uuid.UUID `json:"id"`
	Role           Role      `json:"role"`
	HomeDepartment string    `json:"home_department,omitempty"`
}
