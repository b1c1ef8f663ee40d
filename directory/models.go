package directory

import (
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GroupRecord models a row in sva_role_groups.
type GroupRecord struct {
	bun.BaseModel `bun:"table:sva_role_groups"`

	ID          uuid.UUID `bun:",pk,type:uuid"`
	Name        string    `bun:"name"`
	Description string    `bun:"description"`
	Admin       bool      `bun:"is_admin"`
	MinCount    int       `bun:"min_count"`
	MaxCount    int       `bun:"max_count"`
}

// RoleRecord models a row in sva_roles. RoleID is the externally owned
// identifier; ID is the local surrogate key.
type RoleRecord struct {
	bun.BaseModel `bun:"table:sva_roles"`

	ID        uuid.UUID `bun:",pk,type:uuid"`
	RoleID    int64     `bun:"role_id"`
	Name      string    `bun:"name"`
	Hidden    bool      `bun:"hidden"`
	GroupName string    `bun:"group_name"`
}

// DependencyRecord models a direct dependency edge.
type DependencyRecord struct {
	bun.BaseModel `bun:"table:sva_role_dependencies"`

	RoleID   int64 `bun:"role_id,pk"`
	TargetID int64 `bun:"target_id,pk"`
	Position int   `bun:"position"`
}

// ParentRecord models a direct parent edge.
type ParentRecord struct {
	bun.BaseModel `bun:"table:sva_role_parents"`

	RoleID   int64 `bun:"role_id,pk"`
	TargetID int64 `bun:"target_id,pk"`
	Position int   `bun:"position"`
}

// ConditionRecord models one runtime condition attached to a role.
type ConditionRecord struct {
	bun.BaseModel `bun:"table:sva_role_conditions"`

	RoleID int64  `bun:"role_id,pk"`
	Name   string `bun:"name,pk"`
}
