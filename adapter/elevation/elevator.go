// Package elevation provides the default temporary elevated execution context
// used by role job submissions.
package elevation

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/goliatone/go-svaroles/pkg/authctx"
	"github.com/goliatone/go-svaroles/pkg/types"
)

// Config customizes the default elevator.
type Config struct {
	// Authorize, when set, is consulted before an elevated context is
	// produced. A non-nil error aborts the elevation.
	Authorize func(ctx context.Context, actor types.ActorRef) error
	Logger    types.Logger
}

// Elevator produces contexts carrying an elevated copy of the actor identity.
type Elevator struct {
	authorize func(ctx context.Context, actor types.ActorRef) error
	logger    types.Logger
	active    atomic.Int64
}

var _ types.Elevator = (*Elevator)(nil)

// New constructs an Elevator.
func New(cfg Config) *Elevator {
	logger := cfg.Logger
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &Elevator{authorize: cfg.Authorize, logger: logger}
}

// Elevate establishes an elevated context scoped to actor. The returned
// context is cancelled on Release.
func (e *Elevator) Elevate(ctx context.Context, actor types.ActorRef) (types.ElevatedContext, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !actor.Valid() {
		return nil, types.ErrActorRequired
	}
	if e.authorize != nil {
		if err := e.authorize(ctx, actor); err != nil {
			return nil, err
		}
	}
	identity := actor
	identity.Elevated = true
	scoped, cancel := context.WithCancel(authctx.WithElevation(ctx, actor))
	e.active.Add(1)
	e.logger.Debug("elevated context established", "office_id", actor.OfficeID, "user_id", actor.UserID)
	return &elevatedContext{
		ctx:      scoped,
		identity: identity,
		release: func() {
			cancel()
			e.active.Add(-1)
			e.logger.Debug("elevated context released", "office_id", actor.OfficeID, "user_id", actor.UserID)
		},
	}, nil
}

// Active reports the number of unreleased elevated contexts.
func (e *Elevator) Active() int64 {
	return e.active.Load()
}

type elevatedContext struct {
	ctx      context.Context
	identity types.ActorRef
	once     sync.Once
	release  func()
}

func (c *elevatedContext) Context() context.Context { return c.ctx }

func (c *elevatedContext) Identity() types.ActorRef { return c.identity }

// Release is idempotent.
func (c *elevatedContext) Release() {
	c.once.Do(c.release)
}
