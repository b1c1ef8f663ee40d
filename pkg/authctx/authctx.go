package authctx

import (
	"context"
	"strconv"
	"strings"

	auth "github.com/goliatone/go-auth"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-svaroles/pkg/types"
)

const (
	textCodeActorMissing = "ACTOR_CONTEXT_MISSING"
	textCodeActorInvalid = "ACTOR_CONTEXT_INVALID"
)

type actorKey struct{}

// WithActor stores the acting office/user on ctx.
func WithActor(ctx context.Context, actor types.ActorRef) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (types.ActorRef, bool) {
	if ctx == nil {
		return types.ActorRef{}, false
	}
	actor, ok := ctx.Value(actorKey{}).(types.ActorRef)
	return actor, ok
}

// WithElevation stores an elevated copy of actor on ctx.
func WithElevation(ctx context.Context, actor types.ActorRef) context.Context {
	actor.Elevated = true
	return WithActor(ctx, actor)
}

// IsElevated reports whether ctx carries an elevated actor.
func IsElevated(ctx context.Context) bool {
	actor, ok := ActorFromContext(ctx)
	return ok && actor.Elevated
}

// ResolveActor returns the actor stored by WithActor or, failing that, the
// go-auth actor payload set by the auth middleware. The go-auth tenant id is
// read as the office id and the actor id as the user id.
func ResolveActor(ctx context.Context) (types.ActorRef, error) {
	if ctx == nil {
		return types.ActorRef{}, errors.New("go-svaroles: missing request context", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorMissing)
	}
	if actor, ok := ActorFromContext(ctx); ok {
		return actor, nil
	}
	if actor, ok := auth.ActorFromContext(ctx); ok && actor != nil {
		return ActorRefFromActorContext(actor)
	}
	return types.ActorRef{}, errors.New("go-svaroles: actor not found on request", errors.CategoryAuth).
		WithCode(errors.CodeUnauthorized).
		WithTextCode(textCodeActorMissing)
}

// ActorRefFromActorContext converts the go-auth middleware payload into an
// office/user actor reference.
func ActorRefFromActorContext(actor *auth.ActorContext) (types.ActorRef, error) {
	if actor == nil {
		return types.ActorRef{}, errors.New("go-svaroles: actor context is nil", errors.CategoryAuth).
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	userID, err := parseID(actor.ActorID)
	if err != nil {
		return types.ActorRef{}, errors.Wrap(err, errors.CategoryAuth, "go-svaroles: invalid actor_id on auth context").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	officeID, err := parseID(actor.TenantID)
	if err != nil {
		return types.ActorRef{}, errors.Wrap(err, errors.CategoryAuth, "go-svaroles: invalid tenant_id on auth context").
			WithCode(errors.CodeUnauthorized).
			WithTextCode(textCodeActorInvalid)
	}
	return types.ActorRef{OfficeID: officeID, UserID: userID}, nil
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, strconv.ErrSyntax
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, strconv.ErrRange
	}
	return id, nil
}
