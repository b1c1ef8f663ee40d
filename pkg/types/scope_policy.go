package types

import (
	"context"
	"errors"
)

// PolicyAction enumerates the authorization actions enforced by the guard.
// Host applications can remap these actions to their own policies or ACLs.
type PolicyAction string

const (
	PolicyActionRolesRead PolicyAction = "sva_roles:read"
	PolicyActionJobsWrite PolicyAction = "sva_roles.jobs:write"
	PolicyActionJobsRead  PolicyAction = "sva_roles.jobs:read"
)

// PolicyCheck captures the authorization context for a single command/query.
type PolicyCheck struct {
	Actor    ActorRef
	Action   PolicyAction
	OfficeID int64
}

// AuthorizationPolicy governs whether an actor can perform an action.
type AuthorizationPolicy interface {
	Authorize(ctx context.Context, check PolicyCheck) error
}

// AuthorizationPolicyFunc adapts bare functions to AuthorizationPolicy.
type AuthorizationPolicyFunc func(ctx context.Context, check PolicyCheck) error

// Authorize implements AuthorizationPolicy.
func (f AuthorizationPolicyFunc) Authorize(ctx context.Context, check PolicyCheck) error {
	return f(ctx, check)
}

// ErrUnauthorized indicates the authorization policy rejected the actor.
var ErrUnauthorized = errors.New("go-svaroles: actor not authorized")

// AllowAllAuthorizationPolicy allows every action.
type AllowAllAuthorizationPolicy struct{}

// Authorize implements AuthorizationPolicy.
func (AllowAllAuthorizationPolicy) Authorize(context.Context, PolicyCheck) error {
	return nil
}
