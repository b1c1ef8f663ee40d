package rolegraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-svaroles/pkg/types"
)

var (
	// ErrMissingDirectory indicates the builder has no role directory.
	ErrMissingDirectory = errors.New("go-svaroles: role graph requires a role directory")
	// ErrMissingEligibility indicates the builder has no eligibility checker.
	ErrMissingEligibility = errors.New("go-svaroles: role graph requires an eligibility checker")
	// ErrMissingSecurityContext indicates Build was called without a viewer context.
	ErrMissingSecurityContext = errors.New("go-svaroles: role graph requires a security context")
)

// BuilderConfig wires the collaborators consulted on every build.
type BuilderConfig struct {
	Directory   types.RoleDirectory
	Eligibility types.EligibilityChecker
	Logger      types.Logger
}

// BuildInput carries the viewer specific collaborators.
type BuildInput struct {
	Security  types.SecurityContext
	Localizer types.Localizer
}

// Builder computes render models. It keeps no state between builds.
type Builder struct {
	directory   types.RoleDirectory
	eligibility types.EligibilityChecker
	logger      types.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(cfg BuilderConfig) *Builder {
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Builder{
		directory:   cfg.Directory,
		eligibility: cfg.Eligibility,
		logger:      logger,
	}
}

// Build walks every role in directory order and returns the rows, edges and
// script presentable to the viewer described by input.
func (b *Builder) Build(ctx context.Context, input BuildInput) (RenderModel, error) {
	if b == nil || b.directory == nil {
		return RenderModel{}, ErrMissingDirectory
	}
	if b.eligibility == nil {
		return RenderModel{}, ErrMissingEligibility
	}
	if input.Security == nil {
		return RenderModel{}, ErrMissingSecurityContext
	}
	roles, err := b.directory.ListRoles(ctx)
	if err != nil {
		return RenderModel{}, fmt.Errorf("go-svaroles: list roles: %w", err)
	}

	w := &walk{
		ctx:      ctx,
		builder:  b,
		security: input.Security,
		index:    make(map[int64]types.Role, len(roles)),
		visible:  make(map[int64]bool),
		touched:  make(map[string]struct{}),
	}
	for _, role := range roles {
		w.index[role.ID] = role
	}
	integration, hasIntegration := types.IntegrationLabel(input.Localizer)

	var model RenderModel
	for _, role := range roles {
		if !w.presentable(role.ID) {
			continue
		}

		if deps := w.filter(role.Dependencies); len(deps) > 0 {
			model.Dependencies = append(model.Dependencies, Edge{RoleID: role.ID, Targets: deps})
			model.Script = append(model.Script, DependsInstr{RoleID: role.ID, DependsOn: deps})
		}
		if parents := w.filter(role.Parents); len(parents) > 0 {
			model.Parents = append(model.Parents, Edge{RoleID: role.ID, Targets: parents})
			model.Script = append(model.Script, ParentInstr{RoleID: role.ID, Parents: parents})
		}

		if excluded(role) {
			continue
		}

		// Group-less roles render in the other bucket without a group binding.
		if role.Group == nil {
			b.logger.Debug("role has no group", "role_id", role.ID)
			model.Rows = append(model.Rows, Row{
				RoleID: role.ID,
				Label:  types.Localize(input.Localizer, role.Name),
				Bucket: BucketOther,
			})
			continue
		}

		group := *role.Group
		row := Row{RoleID: role.ID, Group: group.Name, Bucket: BucketOther}
		if group.Admin {
			row.Bucket = BucketAdmin
		}
		if hasIntegration && group.Matches(integration) {
			row.Label = role.Name
		} else {
			row.Label = types.Localize(input.Localizer, role.Name)
		}
		model.Rows = append(model.Rows, row)
		model.Script = append(model.Script, GroupRoleInstr{RoleID: role.ID, Group: group.Name})

		key := group.Key()
		if _, seen := w.touched[key]; !seen {
			w.touched[key] = struct{}{}
			model.Groups = append(model.Groups, group)
		}
	}

	for _, group := range model.Groups {
		model.Script = append(model.Script, GroupDeclInstr{
			Name:        group.Name,
			Description: types.Localize(input.Localizer, group.Description),
			Min:         group.Min,
			Max:         group.Max,
		})
	}

	b.logger.Debug("role graph built",
		"rows", len(model.Rows),
		"dependencies", len(model.Dependencies),
		"parents", len(model.Parents),
		"groups", len(model.Groups),
	)
	return model, nil
}

func excluded(role types.Role) bool {
	if role.ID == types.ReservedAdminRoleID {
		return true
	}
	return role.Group != nil && role.Group.IsBase()
}

type walk struct {
	ctx      context.Context
	builder  *Builder
	security types.SecurityContext
	index    map[int64]types.Role
	visible  map[int64]bool
	touched  map[string]struct{}
}

// presentable applies the eligibility and visibility filters once per id.
func (w *walk) presentable(roleID int64) bool {
	if ok, seen := w.visible[roleID]; seen {
		return ok
	}
	ok := w.evaluate(roleID)
	w.visible[roleID] = ok
	return ok
}

func (w *walk) evaluate(roleID int64) bool {
	if !w.builder.eligibility.Contains(roleID) {
		return false
	}
	role, ok := w.index[roleID]
	if !ok || role.Hidden {
		return false
	}
	allowed, err := w.allows(role)
	if err != nil {
		w.builder.logger.Error("role visibility check failed", types.SecurityCheckError(err, roleID), "role_id", roleID)
		return false
	}
	return allowed
}

func (w *walk) allows(role types.Role) (allowed bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			allowed = false
			err = fmt.Errorf("security predicate panic: %v", rec)
		}
	}()
	return w.security.Allows(w.ctx, role.RuntimeConditions)
}

// filter keeps the presentable ids of refs, deduplicated, in reference order.
func (w *walk) filter(refs []int64) []int64 {
	if len(refs) == 0 {
		return nil
	}
	out := make([]int64, 0, len(refs))
	seen := make(map[int64]struct{}, len(refs))
	for _, id := range refs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if w.presentable(id) {
			out = append(out, id)
		}
	}
	return out
}
