package eligibility

import (
	"context"
	"errors"
	"io/fs"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-svaroles/pkg/types"
)

// RegistryConfig wires the sources consulted by Initialize. Resource defaults
// to the bundled DefaultResource when both Resource and Path are empty.
type RegistryConfig struct {
	Resource  fs.FS
	Path      string
	Directory types.RoleDirectory
	Localizer types.Localizer
	Logger    types.Logger
}

// Registry is the append-only set of eligible role ids.
type Registry struct {
	resource  fs.FS
	path      string
	directory types.RoleDirectory
	localizer types.Localizer
	logger    types.Logger

	once sync.Once
	ids  atomic.Pointer[map[int64]struct{}]
}

// NewRegistry constructs an unloaded registry. Nothing is read until
// Initialize runs.
func NewRegistry(cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	resource := cfg.Resource
	path := cfg.Path
	if resource == nil && path == "" {
		resource = DefaultResource
		path = DefaultResourcePath
	}
	return &Registry{
		resource:  resource,
		path:      path,
		directory: cfg.Directory,
		localizer: cfg.Localizer,
		logger:    logger,
	}
}

var _ types.EligibilityChecker = (*Registry)(nil)

// Initialize loads both sources exactly once. Concurrent callers block until
// the first load completes; later calls return immediately. Source failures
// are logged and leave the registry partially populated. The load runs once
// per process, so it ignores cancellation of the triggering request.
func (r *Registry) Initialize(ctx context.Context) {
	if r == nil {
		return
	}
	r.once.Do(func() {
		ctx := context.WithoutCancel(ctx)
		ids := make(map[int64]struct{})
		r.loadStatic(ids)
		r.loadIntegration(ctx, ids)
		r.ids.Store(&ids)
		r.logger.Info("eligible roles loaded", "count", len(ids))
	})
}

// Loaded reports whether Initialize has completed.
func (r *Registry) Loaded() bool {
	return r != nil && r.ids.Load() != nil
}

// Contains reports membership. Before Initialize completes every id is absent.
func (r *Registry) Contains(roleID int64) bool {
	if r == nil {
		return false
	}
	ids := r.ids.Load()
	if ids == nil {
		return false
	}
	_, ok := (*ids)[roleID]
	return ok
}

// IDs returns the loaded ids in ascending order.
func (r *Registry) IDs() []int64 {
	if r == nil {
		return nil
	}
	ids := r.ids.Load()
	if ids == nil {
		return nil
	}
	out := make([]int64, 0, len(*ids))
	for id := range *ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (r *Registry) loadStatic(ids map[int64]struct{}) {
	entries, err := ReadEntries(r.resource, r.path)
	if err != nil {
		r.logger.Error("unable to load eligible roles resource", types.ResourceLoadError(err, r.path), "path", r.path)
		return
	}
	if len(entries) == 0 {
		r.logger.Info("eligible roles resource is empty", "path", r.path)
		return
	}
	for _, entry := range entries {
		if entry.RoleID <= 0 {
			r.logger.Debug("eligible roles resource entry skipped", "title", entry.RoleTitle, "role_id", entry.RoleID)
			continue
		}
		ids[entry.RoleID] = struct{}{}
	}
}

func (r *Registry) loadIntegration(ctx context.Context, ids map[int64]struct{}) {
	label, ok := types.IntegrationLabel(r.localizer)
	if !ok {
		r.logger.Info("integration label unresolved, integration roles not loaded")
		return
	}
	if r.directory == nil {
		r.logger.Info("no role directory configured, integration roles not loaded")
		return
	}
	roles, err := r.directory.ListRoles(ctx)
	if err != nil {
		r.logger.Error("integration role scan failed", errors.Join(types.ErrResourceLoad, err), "label", label)
		return
	}
	added := 0
	for _, role := range roles {
		if role.Group == nil || !role.Group.Matches(label) {
			continue
		}
		ids[role.ID] = struct{}{}
		added++
	}
	r.logger.Debug("integration roles loaded", "label", label, "count", added)
}
