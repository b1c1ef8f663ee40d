package rolegraph

import "github.com/goliatone/go-svaroles/pkg/types"

// Bucket selects the grid a rendered row belongs to.
type Bucket int

const (
	// BucketAdmin holds roles whose group is flagged admin (user roles grid).
	BucketAdmin Bucket = 0
	// BucketOther holds every other role (module licenses grid).
	BucketOther Bucket = 1
)

// Row is one selectable role presented to the viewer.
type Row struct {
	RoleID int64
	Label  string
	Group  string
	Bucket Bucket
}

// Edge lists the direct targets of a dependency or parent relation.
type Edge struct {
	RoleID  int64
	Targets []int64
}

// RenderModel is the per-viewer outcome of a build.
type RenderModel struct {
	Rows         []Row
	Dependencies []Edge
	Parents      []Edge
	// Groups are the touched groups. Callers must not rely on their order.
	Groups []types.RoleGroup
	Script Script
}

// Bucket returns the rows assigned to b in computation order.
func (m RenderModel) Bucket(b Bucket) []Row {
	out := make([]Row, 0, len(m.Rows))
	for _, row := range m.Rows {
		if row.Bucket == b {
			out = append(out, row)
		}
	}
	return out
}

// Contains reports whether a row was rendered for roleID.
func (m RenderModel) Contains(roleID int64) bool {
	for _, row := range m.Rows {
		if row.RoleID == roleID {
			return true
		}
	}
	return false
}
