package migrations

import (
	"errors"
	"io/fs"
	"strings"
	"sync"
)

// CoreSource names the role directory and job migrations shipped with the
// module.
const CoreSource = "svaroles"

// ErrInvalidSource is returned when a migration source has no name or no
// filesystem.
var ErrInvalidSource = errors.New("migrations: source requires a name and a filesystem")

// Source is a named migration filesystem laid out as <dialect>/*.up.sql.
type Source struct {
	Name string
	FS   fs.FS
}

var (
	mu      sync.RWMutex
	sources []Source
)

// Register records a named migration source. Registering a name twice
// replaces the earlier filesystem and keeps its position.
func Register(name string, fsys fs.FS) error {
	name = strings.TrimSpace(name)
	if name == "" || fsys == nil {
		return ErrInvalidSource
	}
	mu.Lock()
	defer mu.Unlock()
	for idx := range sources {
		if sources[idx].Name == name {
			sources[idx].FS = fsys
			return nil
		}
	}
	sources = append(sources, Source{Name: name, FS: fsys})
	return nil
}

// Sources returns the registered sources in registration order.
func Sources() []Source {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}

// Filesystems returns the registered filesystems in registration order.
func Filesystems() []fs.FS {
	registered := Sources()
	out := make([]fs.FS, 0, len(registered))
	for _, src := range registered {
		out = append(out, src.FS)
	}
	return out
}
