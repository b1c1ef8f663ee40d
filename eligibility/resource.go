package eligibility

import (
	"embed"
	"encoding/json"
	"io/fs"
	"strings"
)

// DefaultResourcePath locates the bundled resource inside DefaultResource.
const DefaultResourcePath = "data/svaenabledroles.json"

// DefaultResource bundles the static list of SVA-enabled roles.
//
//go:embed data/svaenabledroles.json
var DefaultResource embed.FS

// Entry is a single (title, id) pair from the static resource.
type Entry struct {
	RoleTitle string `json:"roleTitle"`
	RoleID    int64  `json:"roleId"`
}

type document struct {
	Roles []Entry `json:"svaEnabledUserRoles"`
}

// ReadEntries decodes the static resource at path.
func ReadEntries(fsys fs.FS, path string) ([]Entry, error) {
	if fsys == nil {
		return nil, fs.ErrNotExist
	}
	path = strings.TrimPrefix(strings.TrimSpace(path), "/")
	raw, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Roles, nil
}
