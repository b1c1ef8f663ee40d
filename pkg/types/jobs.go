package types

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoleAction is the change a job applies to its target user.
type RoleAction string

const (
	RoleActionGrant  RoleAction = "grant"
	RoleActionRevoke RoleAction = "revoke"
)

// ActionTypeGrant is the request flag value selecting RoleActionGrant. Any
// other non-blank value selects RoleActionRevoke.
const ActionTypeGrant = "fromRoleActionAdd"

// ResolveRoleAction maps the raw action-type request flag to a RoleAction.
func ResolveRoleAction(actionType string) RoleAction {
	if actionType == ActionTypeGrant {
		return RoleActionGrant
	}
	return RoleActionRevoke
}

// JobStatus tracks processing of a job row by the external job processor.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// ParseJobStatus normalizes a status filter value; unknown values return "".
func ParseJobStatus(value string) JobStatus {
	switch JobStatus(strings.ToLower(strings.TrimSpace(value))) {
	case JobStatusPending:
		return JobStatusPending
	case JobStatusProcessing:
		return JobStatusProcessing
	case JobStatusCompleted:
		return JobStatusCompleted
	case JobStatusFailed:
		return JobStatusFailed
	default:
		return ""
	}
}

// UserRoleJob is one durable grant/revoke request for a single target user.
type UserRoleJob struct {
	ID                uuid.UUID
	TransactionID     string
	CreatedByOfficeID int64
	CreatedByUserID   int64
	CreatedOn         time.Time
	Action            RoleAction
	Roles             string
	OfficeID          int64
	UserID            int64
	Status            JobStatus
}

// JobFilter narrows job listings.
type JobFilter struct {
	Actor         ActorRef
	OfficeID      int64
	TransactionID string
	Status        JobStatus
	Pagination    Pagination
}

// Type implements gocommand.Message for query inputs.
func (JobFilter) Type() string {
	return "query.sva_roles.jobs"
}

// Validate implements gocommand.Message.
func (filter JobFilter) Validate() error {
	if !filter.Actor.Valid() {
		return ErrActorRequired
	}
	return nil
}

// JobPage represents a paginated set of jobs.
type JobPage struct {
	Jobs       []UserRoleJob
	Total      int
	NextOffset int
	HasMore    bool
}

// JobRepository persists job rows one at a time and lists them back.
type JobRepository interface {
	InsertJob(ctx context.Context, job UserRoleJob) (*UserRoleJob, error)
	ListJobs(ctx context.Context, filter JobFilter) (JobPage, error)
}

// ElevatedContext is a temporary privileged execution scope. It is owned by a
// single submission and must be released exactly once.
type ElevatedContext interface {
	Context() context.Context
	Identity() ActorRef
	Release()
}

// Elevator establishes elevated execution contexts.
type Elevator interface {
	Elevate(ctx context.Context, actor ActorRef) (ElevatedContext, error)
}

// ElevatorFunc adapts bare functions to Elevator.
type ElevatorFunc func(ctx context.Context, actor ActorRef) (ElevatedContext, error)

// Elevate implements Elevator.
func (f ElevatorFunc) Elevate(ctx context.Context, actor ActorRef) (ElevatedContext, error) {
	return f(ctx, actor)
}

// SubmissionMetrics observes role job submissions.
type SubmissionMetrics interface {
	JobInserted(action RoleAction)
	TargetSkipped(reason string)
	SubmissionFinished(action RoleAction, outcome string, elapsed time.Duration)
}

// Submission outcomes reported to SubmissionMetrics.
const (
	SubmissionOutcomeCommitted       = "committed"
	SubmissionOutcomeElevationFailed = "elevation_failed"
	SubmissionOutcomeInsertFailed    = "insert_failed"
)

// NopSubmissionMetrics discards every observation.
type NopSubmissionMetrics struct{}

func (NopSubmissionMetrics) JobInserted(RoleAction)                               {}
func (NopSubmissionMetrics) TargetSkipped(string)                                 {}
func (NopSubmissionMetrics) SubmissionFinished(RoleAction, string, time.Duration) {}
