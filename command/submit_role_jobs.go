package command

import (
	"context"
	"strings"
	"time"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/scope"
	"github.com/google/uuid"
)

// SubmitRoleJobsInput records one grant/revoke request per target user.
type SubmitRoleJobsInput struct {
	Actor types.ActorRef
	// ActionType is the raw request flag. types.ActionTypeGrant selects a
	// grant; any other non-blank value selects a revoke.
	ActionType string
	// Roles is the opaque selected-roles payload copied verbatim into each job.
	Roles string
	// Targets are raw "<officeId>_<userId>" tokens.
	Targets []string
	Result  *SubmitRoleJobsResult
}

// Type implements gocommand.Message.
func (SubmitRoleJobsInput) Type() string {
	return "command.sva_roles.jobs.submit"
}

// Validate implements gocommand.Message.
func (input SubmitRoleJobsInput) Validate() error {
	switch {
	case !input.Actor.Valid():
		return ErrActorRequired
	case strings.TrimSpace(input.ActionType) == "":
		return ErrActionTypeRequired
	default:
		return nil
	}
}

// SubmitRoleJobsResult captures what a submission recorded, including
// submissions aborted by an insert failure.
type SubmitRoleJobsResult struct {
	TransactionID string
	Action        types.RoleAction
	Jobs          []types.UserRoleJob
	Skipped       []SkippedTarget
}

// SkippedTarget describes a target token that produced no job.
type SkippedTarget struct {
	Index  int
	Token  string
	Reason string
}

// SubmitRoleJobsCommandConfig wires the submission command.
type SubmitRoleJobsCommandConfig struct {
	Repository  types.JobRepository
	Elevator    types.Elevator
	Clock       types.Clock
	IDGen       types.IDGenerator
	Hooks       types.Hooks
	Logger      types.Logger
	Metrics     types.SubmissionMetrics
	ScopeGuard  scope.Guard
	FeatureGate featuregate.FeatureGate
}

// SubmitRoleJobsCommand inserts job rows under a temporary elevated context.
type SubmitRoleJobsCommand struct {
	repo        types.JobRepository
	elevator    types.Elevator
	clock       types.Clock
	idGen       types.IDGenerator
	hooks       types.Hooks
	logger      types.Logger
	metrics     types.SubmissionMetrics
	guard       scope.Guard
	featureGate featuregate.FeatureGate
}

// NewSubmitRoleJobsCommand constructs the submission handler.
func NewSubmitRoleJobsCommand(cfg SubmitRoleJobsCommandConfig) *SubmitRoleJobsCommand {
	return &SubmitRoleJobsCommand{
		repo:        cfg.Repository,
		elevator:    cfg.Elevator,
		clock:       safeClock(cfg.Clock),
		idGen:       safeIDGen(cfg.IDGen),
		hooks:       cfg.Hooks,
		logger:      safeLogger(cfg.Logger),
		metrics:     safeMetrics(cfg.Metrics),
		guard:       safeScopeGuard(cfg.ScopeGuard),
		featureGate: cfg.FeatureGate,
	}
}

var _ gocommand.Commander[SubmitRoleJobsInput] = (*SubmitRoleJobsCommand)(nil)

// Execute elevates, then inserts one job per valid target in target order.
// Malformed tokens are skipped. The first insert failure aborts the remaining
// targets; rows already inserted are kept. The elevated context is released
// on every path.
func (c *SubmitRoleJobsCommand) Execute(ctx context.Context, input SubmitRoleJobsInput) error {
	if c == nil || c.repo == nil {
		return goerrors.New("go-svaroles: role job submission requires a job repository", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal)
	}
	if c.elevator == nil {
		return goerrors.New("go-svaroles: role job submission requires an elevator", goerrors.CategoryInternal).
			WithCode(goerrors.CodeInternal)
	}
	if err := input.Validate(); err != nil {
		return err
	}
	if enabled, err := featureEnabled(ctx, c.featureGate, FeatureRoleJobsSubmit, input.Actor); err != nil {
		return err
	} else if !enabled {
		return goerrors.Wrap(ErrSubmissionDisabled, goerrors.CategoryAuthz, "go-svaroles: role job submission disabled").
			WithCode(goerrors.CodeForbidden).
			WithTextCode(types.TextCodeFeatureDisabled)
	}
	if err := c.guard.Enforce(ctx, input.Actor, types.PolicyActionJobsWrite, input.Actor.OfficeID); err != nil {
		return err
	}

	started := now(c.clock)
	action := types.ResolveRoleAction(input.ActionType)
	result := SubmitRoleJobsResult{
		TransactionID: strings.ToUpper(c.idGen.UUID().String()),
		Action:        action,
	}
	defer func() {
		if input.Result != nil {
			*input.Result = result
		}
	}()

	elevated, err := c.elevator.Elevate(ctx, input.Actor)
	if err != nil {
		wrapped := types.ElevationError(err, input.Actor)
		c.logger.Error("unable to establish elevated context", wrapped,
			"transaction_id", result.TransactionID,
			"office_id", input.Actor.OfficeID,
			"user_id", input.Actor.UserID,
		)
		c.metrics.SubmissionFinished(action, types.SubmissionOutcomeElevationFailed, elapsedSince(c.clock, started))
		return wrapped
	}
	defer elevated.Release()

	creator := elevated.Identity()
	if !creator.Valid() {
		creator = input.Actor
	}
	scoped := elevated.Context()
	if scoped == nil {
		scoped = ctx
	}

	for idx, token := range input.Targets {
		target, reason := parseTarget(token)
		if reason != "" {
			c.logger.Info("role job target skipped",
				"transaction_id", result.TransactionID,
				"index", idx,
				"token", token,
				"reason", reason,
			)
			c.metrics.TargetSkipped(reason)
			result.Skipped = append(result.Skipped, SkippedTarget{Index: idx, Token: token, Reason: reason})
			continue
		}

		job := types.UserRoleJob{
			ID:                c.idGen.UUID(),
			TransactionID:     result.TransactionID,
			CreatedByOfficeID: creator.OfficeID,
			CreatedByUserID:   creator.UserID,
			CreatedOn:         now(c.clock),
			Action:            action,
			Roles:             input.Roles,
			OfficeID:          target.OfficeID,
			UserID:            target.UserID,
			Status:            types.JobStatusPending,
		}
		inserted, err := c.repo.InsertJob(scoped, job)
		if err != nil {
			wrapped := types.InsertError(err, result.TransactionID, idx, target.OfficeID, target.UserID)
			c.logger.Error("role job insert failed", wrapped,
				"transaction_id", result.TransactionID,
				"index", idx,
				"office_id", target.OfficeID,
				"user_id", target.UserID,
			)
			c.metrics.SubmissionFinished(action, types.SubmissionOutcomeInsertFailed, elapsedSince(c.clock, started))
			return wrapped
		}
		if inserted != nil {
			job = *inserted
		}
		c.metrics.JobInserted(action)
		result.Jobs = append(result.Jobs, job)
	}

	c.metrics.SubmissionFinished(action, types.SubmissionOutcomeCommitted, elapsedSince(c.clock, started))
	c.logger.Info("role jobs submitted",
		"transaction_id", result.TransactionID,
		"action", string(action),
		"inserted", len(result.Jobs),
		"skipped", len(result.Skipped),
	)
	emitJobsSubmittedHook(ctx, c.hooks, c.logger, types.JobsSubmittedEvent{
		TransactionID: result.TransactionID,
		Actor:         input.Actor,
		Action:        action,
		Roles:         input.Roles,
		Inserted:      len(result.Jobs),
		Skipped:       len(result.Skipped),
		OccurredAt:    now(c.clock),
	})
	return nil
}

// JobIDs returns the ids of the inserted jobs in target order.
func (r SubmitRoleJobsResult) JobIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.Jobs))
	for _, job := range r.Jobs {
		ids = append(ids, job.ID)
	}
	return ids
}

func elapsedSince(clock types.Clock, started time.Time) time.Duration {
	return now(clock).Sub(started)
}
