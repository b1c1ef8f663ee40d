package jobs

import (
	"context"
	"errors"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryConfig wires the Bun-backed job repository.
type RepositoryConfig struct {
	DB         *bun.DB
	Repository repository.Repository[*Record]
	Clock      types.Clock
	IDGen      types.IDGenerator
}

type jobStore interface {
	repository.Repository[*Record]
}

// Repository implements types.JobRepository.
type Repository struct {
	jobStore
	clock types.Clock
	idGen types.IDGenerator
}

// NewRepository constructs the default job repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.Repository == nil && cfg.DB == nil {
		return nil, errors.New("jobs: db or repository required")
	}
	repo := cfg.Repository
	if repo == nil {
		repo = repository.NewRepository(cfg.DB, repository.ModelHandlers[*Record]{
			NewRecord: func() *Record { return &Record{} },
			GetID: func(rec *Record) uuid.UUID {
				if rec == nil {
					return uuid.Nil
				}
				return rec.ID
			},
			SetID: func(rec *Record, id uuid.UUID) {
				if rec != nil {
					rec.ID = id
				}
			},
		})
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	idGen := cfg.IDGen
	if idGen == nil {
		idGen = types.UUIDGenerator{}
	}
	return &Repository{
		jobStore: repo,
		clock:    clock,
		idGen:    idGen,
	}, nil
}

var (
	_ repository.Repository[*Record] = (*Repository)(nil)
	_ types.JobRepository            = (*Repository)(nil)
)

// InsertJob persists one fully populated job row. Missing ids, timestamps and
// statuses are filled in before the insert.
func (r *Repository) InsertJob(ctx context.Context, job types.UserRoleJob) (*types.UserRoleJob, error) {
	if job.TransactionID == "" {
		return nil, errors.New("jobs: transaction id required")
	}
	record := fromDomain(job)
	if record.ID == uuid.Nil {
		record.ID = r.idGen.UUID()
	}
	if record.CreatedOn.IsZero() {
		record.CreatedOn = r.clock.Now()
	}
	if record.Status == "" {
		record.Status = string(types.JobStatusPending)
	}
	created, err := r.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	out := toDomain(created)
	return &out, nil
}

// ListJobs returns jobs newest first, filtered by target office, transaction
// and status.
func (r *Repository) ListJobs(ctx context.Context, filter types.JobFilter) (types.JobPage, error) {
	pagination := normalizePagination(filter.Pagination, 50, 200)
	criteria := []repository.SelectCriteria{
		func(q *bun.SelectQuery) *bun.SelectQuery {
			if filter.OfficeID > 0 {
				q = q.Where("office_id = ?", filter.OfficeID)
			}
			if filter.TransactionID != "" {
				q = q.Where("transaction_id = ?", filter.TransactionID)
			}
			if filter.Status != "" {
				q = q.Where("status = ?", string(filter.Status))
			}
			return q.OrderExpr("created_on DESC").
				OrderExpr("user_id ASC").
				Limit(pagination.Limit).
				Offset(pagination.Offset)
		},
	}

	rows, total, err := r.List(ctx, criteria...)
	if err != nil {
		return types.JobPage{}, err
	}
	jobs := make([]types.UserRoleJob, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, toDomain(row))
	}
	return types.JobPage{
		Jobs:       jobs,
		Total:      total,
		NextOffset: pagination.Offset + pagination.Limit,
		HasMore:    pagination.Offset+pagination.Limit < total,
	}, nil
}

func fromDomain(job types.UserRoleJob) *Record {
	return &Record{
		ID:                job.ID,
		TransactionID:     job.TransactionID,
		CreatedByOfficeID: job.CreatedByOfficeID,
		CreatedByUserID:   job.CreatedByUserID,
		CreatedOn:         job.CreatedOn,
		Action:            string(job.Action),
		Roles:             job.Roles,
		OfficeID:          job.OfficeID,
		UserID:            job.UserID,
		Status:            string(job.Status),
	}
}

func toDomain(rec *Record) types.UserRoleJob {
	if rec == nil {
		return types.UserRoleJob{}
	}
	return types.UserRoleJob{
		ID:                rec.ID,
		TransactionID:     rec.TransactionID,
		CreatedByOfficeID: rec.CreatedByOfficeID,
		CreatedByUserID:   rec.CreatedByUserID,
		CreatedOn:         rec.CreatedOn,
		Action:            types.RoleAction(rec.Action),
		Roles:             rec.Roles,
		OfficeID:          rec.OfficeID,
		UserID:            rec.UserID,
		Status:            types.JobStatus(rec.Status),
	}
}

func normalizePagination(p types.Pagination, def, max int) types.Pagination {
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > max {
		p.Limit = max
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
