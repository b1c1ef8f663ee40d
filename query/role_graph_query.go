package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/rolegraph"
	"github.com/goliatone/go-svaroles/scope"
)

// RoleGraphInput requests the role selection grids for a viewer.
type RoleGraphInput struct {
	Actor types.ActorRef
}

// Type implements gocommand.Message.
func (RoleGraphInput) Type() string {
	return "query.sva_roles.graph"
}

// Validate implements gocommand.Message.
func (input RoleGraphInput) Validate() error {
	if !input.Actor.Valid() {
		return types.ErrActorRequired
	}
	return nil
}

// Initializer loads eligibility data on first use.
type Initializer interface {
	Initialize(ctx context.Context)
}

// RoleGraphQueryConfig wires the graph query.
type RoleGraphQueryConfig struct {
	Builder    *rolegraph.Builder
	Registry   Initializer
	Security   types.SecurityContextResolver
	Localizers types.LocalizerProvider
	ScopeGuard scope.Guard
	Logger     types.Logger
}

// RoleGraphQuery builds the per-viewer render model.
type RoleGraphQuery struct {
	builder    *rolegraph.Builder
	registry   Initializer
	security   types.SecurityContextResolver
	localizers types.LocalizerProvider
	guard      scope.Guard
	logger     types.Logger
}

// NewRoleGraphQuery constructs the graph query.
func NewRoleGraphQuery(cfg RoleGraphQueryConfig) *RoleGraphQuery {
	return &RoleGraphQuery{
		builder:    cfg.Builder,
		registry:   cfg.Registry,
		security:   cfg.Security,
		localizers: cfg.Localizers,
		guard:      safeScopeGuard(cfg.ScopeGuard),
		logger:     safeLogger(cfg.Logger),
	}
}

var _ gocommand.Querier[RoleGraphInput, rolegraph.RenderModel] = (*RoleGraphQuery)(nil)

// Query lazily initializes the registry, resolves the viewer security context
// and localizer, then builds the render model.
func (q *RoleGraphQuery) Query(ctx context.Context, input RoleGraphInput) (rolegraph.RenderModel, error) {
	if q.builder == nil {
		return rolegraph.RenderModel{}, rolegraph.ErrMissingDirectory
	}
	if q.security == nil {
		return rolegraph.RenderModel{}, types.ErrMissingSecurityResolver
	}
	if err := input.Validate(); err != nil {
		return rolegraph.RenderModel{}, err
	}
	if err := q.guard.Enforce(ctx, input.Actor, types.PolicyActionRolesRead, input.Actor.OfficeID); err != nil {
		return rolegraph.RenderModel{}, err
	}
	if q.registry != nil {
		q.registry.Initialize(ctx)
	}
	security, err := q.security.SecurityContextFor(ctx, input.Actor)
	if err != nil {
		q.logger.Error("unable to resolve viewer security context", err, "office_id", input.Actor.OfficeID, "user_id", input.Actor.UserID)
		return rolegraph.RenderModel{}, err
	}
	var localizer types.Localizer
	if q.localizers != nil {
		localizer = q.localizers.Localizer(input.Actor.Locale)
	}
	return q.builder.Build(ctx, rolegraph.BuildInput{
		Security:  security,
		Localizer: localizer,
	})
}
