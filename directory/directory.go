package directory

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Config wires the Bun-backed role directory. Roles and Groups default to
// go-repository-bun repositories over DB.
type Config struct {
	DB     *bun.DB
	Roles  repository.Repository[*RoleRecord]
	Groups repository.Repository[*GroupRecord]
	Logger types.Logger
}

// Directory implements types.RoleDirectory over the sva_role* tables.
type Directory struct {
	db     *bun.DB
	roles  repository.Repository[*RoleRecord]
	groups repository.Repository[*GroupRecord]
	logger types.Logger
}

var _ types.RoleDirectory = (*Directory)(nil)

// New constructs a Directory.
func New(cfg Config, opts ...Option) (*Directory, error) {
	if cfg.DB == nil {
		return nil, errors.New("directory: db required")
	}
	options := applyOptions(opts)

	roles := cfg.Roles
	if roles == nil {
		roles = NewRoleRepository(cfg.DB)
	}
	groups := cfg.Groups
	if groups == nil {
		groups = NewGroupRepository(cfg.DB)
	}
	if options.CacheEnabled {
		var err error
		if roles, err = withCache(roles, options); err != nil {
			return nil, err
		}
		if groups, err = withCache(groups, options); err != nil {
			return nil, err
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Directory{
		db:     cfg.DB,
		roles:  roles,
		groups: groups,
		logger: logger,
	}, nil
}

// NewRoleRepository builds the default role record repository. Listing is
// unpaginated so the directory always returns every role.
func NewRoleRepository(db *bun.DB) repository.Repository[*RoleRecord] {
	return repository.NewRepositoryWithConfig(db, repository.ModelHandlers[*RoleRecord]{
		NewRecord: func() *RoleRecord { return &RoleRecord{} },
		GetID: func(rec *RoleRecord) uuid.UUID {
			if rec == nil {
				return uuid.Nil
			}
			return rec.ID
		},
		SetID: func(rec *RoleRecord, id uuid.UUID) {
			if rec != nil {
				rec.ID = id
			}
		},
	}, nil)
}

// NewGroupRepository builds the default group record repository.
func NewGroupRepository(db *bun.DB) repository.Repository[*GroupRecord] {
	return repository.NewRepositoryWithConfig(db, repository.ModelHandlers[*GroupRecord]{
		NewRecord: func() *GroupRecord { return &GroupRecord{} },
		GetID: func(rec *GroupRecord) uuid.UUID {
			if rec == nil {
				return uuid.Nil
			}
			return rec.ID
		},
		SetID: func(rec *GroupRecord, id uuid.UUID) {
			if rec != nil {
				rec.ID = id
			}
		},
	}, nil)
}

func withCache[T any](repo repository.Repository[T], options Options) (repository.Repository[T], error) {
	if _, ok := repo.(*repositorycache.CachedRepository[T]); ok {
		return repo, nil
	}
	cfg := cache.DefaultConfig()
	if options.CacheConfig != nil {
		cfg = *options.CacheConfig
	}
	svc, err := cache.NewCacheService(cfg)
	if err != nil {
		return nil, err
	}
	return repositorycache.New(repo, svc, cache.NewDefaultKeySerializer()), nil
}

// ListRoles returns every role in ascending role id order with its group,
// direct edges and runtime conditions attached. Edge order follows position.
func (d *Directory) ListRoles(ctx context.Context) ([]types.Role, error) {
	groups, err := d.loadGroups(ctx)
	if err != nil {
		return nil, err
	}
	records, _, err := d.roles.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("role_id ASC")
	})
	if err != nil {
		return nil, err
	}

	var deps []DependencyRecord
	if err := d.db.NewSelect().Model(&deps).OrderExpr("role_id ASC, position ASC").Scan(ctx); err != nil {
		return nil, err
	}
	var parents []ParentRecord
	if err := d.db.NewSelect().Model(&parents).OrderExpr("role_id ASC, position ASC").Scan(ctx); err != nil {
		return nil, err
	}
	var conditions []ConditionRecord
	if err := d.db.NewSelect().Model(&conditions).OrderExpr("role_id ASC, name ASC").Scan(ctx); err != nil {
		return nil, err
	}

	depsByRole := make(map[int64][]int64)
	for _, dep := range deps {
		depsByRole[dep.RoleID] = append(depsByRole[dep.RoleID], dep.TargetID)
	}
	parentsByRole := make(map[int64][]int64)
	for _, parent := range parents {
		parentsByRole[parent.RoleID] = append(parentsByRole[parent.RoleID], parent.TargetID)
	}
	conditionsByRole := make(map[int64][]string)
	for _, cond := range conditions {
		conditionsByRole[cond.RoleID] = append(conditionsByRole[cond.RoleID], cond.Name)
	}

	roles := make([]types.Role, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		role := types.Role{
			ID:                rec.RoleID,
			Name:              rec.Name,
			Hidden:            rec.Hidden,
			Dependencies:      depsByRole[rec.RoleID],
			Parents:           parentsByRole[rec.RoleID],
			RuntimeConditions: conditionsByRole[rec.RoleID],
		}
		if group, ok := groups[strings.ToLower(strings.TrimSpace(rec.GroupName))]; ok {
			g := group
			role.Group = &g
		} else if rec.GroupName != "" {
			d.logger.Debug("role references unknown group", "role_id", rec.RoleID, "group", rec.GroupName)
			role.Group = &types.RoleGroup{Name: rec.GroupName}
		}
		roles = append(roles, role)
	}
	return roles, nil
}

func (d *Directory) loadGroups(ctx context.Context) (map[string]types.RoleGroup, error) {
	records, _, err := d.groups.List(ctx, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("name ASC")
	})
	if err != nil {
		return nil, err
	}
	out := make(map[string]types.RoleGroup, len(records))
	for _, rec := range records {
		if rec == nil {
			continue
		}
		group := ToRoleGroup(rec)
		out[group.Key()] = group
	}
	return out, nil
}

// ToRoleGroup converts the Bun model into the domain group.
func ToRoleGroup(rec *GroupRecord) types.RoleGroup {
	if rec == nil {
		return types.RoleGroup{}
	}
	return types.RoleGroup{
		Name:        rec.Name,
		Description: rec.Description,
		Admin:       rec.Admin,
		Min:         rec.MinCount,
		Max:         rec.MaxCount,
	}
}
