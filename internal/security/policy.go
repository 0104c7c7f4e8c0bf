package security

import (
	"fmt"

	"campus-assistant/internal/domain"
)

// Action is a capability checked against the role table
type Action string

const (
	// ActionQuery covers department- and subject-scoped retrieval queries
	ActionQuery Action = "query"
	// ActionQueryAll covers cross-department ("all" scope) queries
	ActionQueryAll Action = "query_all"
	// ActionQueryGeneral covers the general assistant (non-department material)
	ActionQueryGeneral Action = "query_general"
	// ActionSelectFilter covers choosing a department filter on the "all" scope
	ActionSelectFilter Action = "select_filter"
	// ActionUpload covers document upload
	ActionUpload Action = "upload"
	// ActionCreateSubject covers subject creation
	ActionCreateSubject Action = "create_subject"
	// ActionFlushCache covers dropping the catalog cache
	ActionFlushCache Action = "flush_cache"
)

// Decision is the outcome of a policy check
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision           { return Decision{Allowed: true} }
func deny(reason string) Decision { return Decision{Allowed: false, Reason: reason} }

// capability describes how far an action reaches for a given role
type capability int

const (
	capNone capability = iota
	// capOwnDepartment allows the action only within the user's home
	// department (or with no target department at all)
	capOwnDepartment
	// capAnyDepartment allows the action against any department
	capAnyDepartment
)

// RoleAccessPolicy is the single place access rules live. It is a pure
// capability table: no side effects, no I/O. Any future role or action is
// a table entry, not a new branch.
type RoleAccessPolicy struct {
	table map[Action]map[domain.Role]capability
}

// NewRoleAccessPolicy builds the capability table
func NewRoleAccessPolicy() *RoleAccessPolicy {
	return &RoleAccessPolicy{
		table: map[Action]map[domain.Role]capability{
			ActionQuery: {
				domain.RoleStudent:         capOwnDepartment,
				domain.RoleTeacher:         capOwnDepartment,
				domain.RoleDepartmentAdmin: capOwnDepartment,
				domain.RoleAdmin:           capAnyDepartment,
			},
			ActionQueryAll: {
				domain.RoleStudent:         capOwnDepartment,
				domain.RoleTeacher:         capOwnDepartment,
				domain.RoleDepartmentAdmin: capOwnDepartment,
				domain.RoleAdmin:           capAnyDepartment,
			},
			ActionQueryGeneral: {
				domain.RoleStudent: capOwnDepartment,
				domain.RoleTeacher: capOwnDepartment,
			},
			ActionSelectFilter: {
				domain.RoleAdmin: capAnyDepartment,
			},
			ActionUpload: {
				domain.RoleTeacher:         capOwnDepartment,
				domain.RoleDepartmentAdmin: capOwnDepartment,
				domain.RoleAdmin:           capAnyDepartment,
			},
			ActionCreateSubject: {
				domain.RoleTeacher:         capOwnDepartment,
				domain.RoleDepartmentAdmin: capOwnDepartment,
				domain.RoleAdmin:           capAnyDepartment,
			},
			ActionFlushCache: {
				domain.RoleAdmin: capAnyDepartment,
			},
		},
	}
}

// Check decides whether role may perform action against targetDepartment.
// An empty targetDepartment means the action carries no department
// restriction, which every granted capability covers.
func (p *RoleAccessPolicy) Check(role domain.Role, action Action, targetDepartment, userDepartment string) Decision {
	caps, ok := p.table[action]
	if !ok {
		return deny(fmt.Sprintf("unknown action %q", action))
	}

	switch caps[role] {
	case capAnyDepartment:
		return allow()
	case capOwnDepartment:
		if targetDepartment == "" || targetDepartment == userDepartment {
			return allow()
		}
		return deny(fmt.Sprintf("role %s may not target department %q outside its own", role, targetDepartment))
	default:
		return deny(fmt.Sprintf("role %s may not perform %s", role, action))
	}
}
