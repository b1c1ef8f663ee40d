package query

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/scope"
)

// JobListQuery lists submitted role jobs for admin surfaces.
type JobListQuery struct {
	repo  types.JobRepository
	guard scope.Guard
}

// NewJobListQuery builds the list query.
func NewJobListQuery(repo types.JobRepository, guard scope.Guard) *JobListQuery {
	return &JobListQuery{
		repo:  repo,
		guard: safeScopeGuard(guard),
	}
}

var _ gocommand.Querier[types.JobFilter, types.JobPage] = (*JobListQuery)(nil)

// Query forwards to the repository.
func (q *JobListQuery) Query(ctx context.Context, filter types.JobFilter) (types.JobPage, error) {
	if q.repo == nil {
		return types.JobPage{}, types.ErrMissingJobRepository
	}
	if err := filter.Validate(); err != nil {
		return types.JobPage{}, err
	}
	if err := q.guard.Enforce(ctx, filter.Actor, types.PolicyActionJobsRead, filter.OfficeID); err != nil {
		return types.JobPage{}, err
	}
	return q.repo.ListJobs(ctx, filter)
}
