package scope

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-svaroles/pkg/types"
)

// Guard authorizes actors for commands and queries. It is intentionally small
// so callers can swap custom guards in tests if needed.
type Guard interface {
	Enforce(ctx context.Context, actor types.ActorRef, action types.PolicyAction, officeID int64) error
}

type guard struct {
	policy types.AuthorizationPolicy
}

// NewGuard builds a Guard from the supplied policy. A nil policy only checks
// that the actor is present.
func NewGuard(policy types.AuthorizationPolicy) Guard {
	return guard{policy: policy}
}

// Ensure returns a non-nil guard so command/query constructors can accept nil
// guards when tests instantiate them directly.
func Ensure(g Guard) Guard {
	if g == nil {
		return guard{}
	}
	return g
}

// NopGuard returns a guard that only requires a valid actor.
func NopGuard() Guard {
	return guard{}
}

// Enforce validates the actor and runs the policy for the action.
func (g guard) Enforce(ctx context.Context, actor types.ActorRef, action types.PolicyAction, officeID int64) error {
	if !actor.Valid() {
		return types.ErrActorRequired
	}
	if g.policy == nil || action == "" {
		return nil
	}
	check := types.PolicyCheck{
		Actor:    actor,
		Action:   action,
		OfficeID: officeID,
	}
	if err := g.policy.Authorize(ctx, check); err != nil {
		return goerrors.Wrap(errors.Join(types.ErrUnauthorized, err), goerrors.CategoryAuthz, "go-svaroles: actor not authorized").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(types.TextCodeUnauthorized).
			WithMetadata(map[string]any{
				"action":    string(action),
				"office_id": officeID,
				"user_id":   actor.UserID,
			})
	}
	return nil
}
