package directory

import (
	"context"
	"errors"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrDuplicateRole indicates the role id or group name already exists.
var ErrDuplicateRole = errors.New("directory: role or group already exists")

// AddGroup inserts a role group.
func (d *Directory) AddGroup(ctx context.Context, group types.RoleGroup) error {
	name := strings.TrimSpace(group.Name)
	if name == "" {
		return errors.New("directory: group name required")
	}
	_, err := d.groups.Create(ctx, &GroupRecord{
		ID:          uuid.New(),
		Name:        name,
		Description: group.Description,
		Admin:       group.Admin,
		MinCount:    group.Min,
		MaxCount:    group.Max,
	})
	return mapDuplicate(err)
}

// AddRole inserts a role with its edges and runtime conditions in a single
// transaction. The group is referenced by name and must be added separately.
func (d *Directory) AddRole(ctx context.Context, role types.Role) error {
	if role.ID <= 0 {
		return errors.New("directory: role id required")
	}
	record := &RoleRecord{
		ID:        uuid.New(),
		RoleID:    role.ID,
		Name:      role.Name,
		Hidden:    role.Hidden,
		GroupName: strings.TrimSpace(role.GroupName()),
	}

	return d.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := d.roles.CreateTx(ctx, tx, record); err != nil {
			return mapDuplicate(err)
		}
		if len(role.Dependencies) > 0 {
			deps := make([]DependencyRecord, 0, len(role.Dependencies))
			for idx, target := range dedupe(role.Dependencies) {
				deps = append(deps, DependencyRecord{RoleID: role.ID, TargetID: target, Position: idx})
			}
			if _, err := tx.NewInsert().Model(&deps).Exec(ctx); err != nil {
				return err
			}
		}
		if len(role.Parents) > 0 {
			parents := make([]ParentRecord, 0, len(role.Parents))
			for idx, target := range dedupe(role.Parents) {
				parents = append(parents, ParentRecord{RoleID: role.ID, TargetID: target, Position: idx})
			}
			if _, err := tx.NewInsert().Model(&parents).Exec(ctx); err != nil {
				return err
			}
		}
		if len(role.RuntimeConditions) > 0 {
			conditions := make([]ConditionRecord, 0, len(role.RuntimeConditions))
			seen := make(map[string]struct{}, len(role.RuntimeConditions))
			for _, name := range role.RuntimeConditions {
				name = strings.TrimSpace(name)
				if _, dup := seen[name]; dup || name == "" {
					continue
				}
				seen[name] = struct{}{}
				conditions = append(conditions, ConditionRecord{RoleID: role.ID, Name: name})
			}
			if len(conditions) > 0 {
				if _, err := tx.NewInsert().Model(&conditions).Exec(ctx); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func dedupe(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func mapDuplicate(err error) error {
	if err == nil {
		return nil
	}
	if repository.IsDuplicatedKey(err) {
		return errors.Join(ErrDuplicateRole, err)
	}
	return err
}
