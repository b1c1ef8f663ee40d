package service_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-svaroles/command"
	"github.com/goliatone/go-svaroles/directory"
	"github.com/goliatone/go-svaroles/jobs"
	"github.com/goliatone/go-svaroles/pkg/telemetry"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/query"
	"github.com/goliatone/go-svaroles/service"
	_ "github.com/mattn/go-sqlite3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestService_RenderSubmitAndList(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applyMigrations(t, db)

	dir, err := directory.New(directory.Config{DB: db})
	require.NoError(t, err)
	seedDirectory(t, ctx, dir)

	clock := fixedClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	jobRepo, err := jobs.NewRepository(jobs.RepositoryConfig{DB: db, Clock: clock})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	var events []types.JobsSubmittedEvent
	svc := service.New(service.Config{
		RoleDirectory: dir,
		JobRepository: jobRepo,
		SecurityResolver: types.SecurityContextResolverFunc(func(context.Context, types.ActorRef) (types.SecurityContext, error) {
			return types.NewGrantedConditions("feeds"), nil
		}),
		Metrics: telemetry.NewJobMetrics(reg, ""),
		Hooks: types.Hooks{
			AfterJobsSubmitted: func(_ context.Context, event types.JobsSubmittedEvent) {
				events = append(events, event)
			},
		},
		Clock: clock,
	})
	require.NoError(t, svc.HealthCheck(ctx))
	require.True(t, svc.Ready())

	actor := types.ActorRef{OfficeID: 5, UserID: 100, Locale: "en"}

	model, err := svc.Queries().RoleGraph.Query(ctx, query.RoleGraphInput{Actor: actor})
	require.NoError(t, err)
	require.True(t, svc.Registry().Loaded())

	rowIDs := make([]int64, 0, len(model.Rows))
	for _, row := range model.Rows {
		rowIDs = append(rowIDs, row.RoleID)
	}
	require.Equal(t, []int64{12, 13, 70}, rowIDs)
	require.False(t, model.Contains(58), "ungranted runtime condition hides the role")
	require.False(t, model.Contains(99), "ineligible role is never rendered")
	require.Equal(t, "Feed Export", model.Rows[2].Label)
	require.Contains(t, model.Script.String(), "addDepends(12,[13]);")
	require.Contains(t, model.Script.String(), "addGroup('Users','User roles',1,3);")

	var result command.SubmitRoleJobsResult
	err = svc.Commands().SubmitRoleJobs.Execute(ctx, command.SubmitRoleJobsInput{
		Actor:      actor,
		ActionType: types.ActionTypeGrant,
		Roles:      "12,13",
		Targets:    []string{"5_100", "bad", "7_200"},
		Result:     &result,
	})
	require.NoError(t, err)
	require.Len(t, result.Jobs, 2)
	require.Len(t, result.Skipped, 1)

	page, err := svc.Queries().JobList.Query(ctx, types.JobFilter{
		Actor:         actor,
		TransactionID: result.TransactionID,
	})
	require.NoError(t, err)
	require.Equal(t, 2, page.Total)

	targets := make([]int64, 0, len(page.Jobs))
	for _, job := range page.Jobs {
		require.Equal(t, types.RoleActionGrant, job.Action)
		require.Equal(t, types.JobStatusPending, job.Status)
		require.Equal(t, "12,13", job.Roles)
		require.Equal(t, int64(5), job.CreatedByOfficeID)
		require.Equal(t, int64(100), job.CreatedByUserID)
		targets = append(targets, job.OfficeID)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	require.Equal(t, []int64{5, 7}, targets)

	require.Len(t, events, 1)
	require.Equal(t, 2, events[0].Inserted)
	require.Equal(t, 1, events[0].Skipped)

	count, err := testutil.GatherAndCount(reg, "svaroles_jobs_inserted_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestService_PolicyScopesSubmissionsByOffice(t *testing.T) {
	ctx := context.Background()
	repo := &memoryJobs{}
	policy := types.AuthorizationPolicyFunc(func(_ context.Context, check types.PolicyCheck) error {
		if check.Action == types.PolicyActionJobsWrite && check.OfficeID == 9 {
			return errors.New("office 9 is read only")
		}
		return nil
	})
	svc := service.New(service.Config{
		RoleDirectory:       types.RoleDirectoryFunc(func(context.Context) ([]types.Role, error) { return nil, nil }),
		JobRepository:       repo,
		AuthorizationPolicy: policy,
	})

	err := svc.Commands().SubmitRoleJobs.Execute(ctx, command.SubmitRoleJobsInput{
		Actor:      types.ActorRef{OfficeID: 9, UserID: 1},
		ActionType: "fromRoleActionRemove",
		Roles:      "12",
		Targets:    []string{"9_1"},
	})
	require.ErrorIs(t, err, types.ErrUnauthorized)
	require.Zero(t, repo.inserted)

	err = svc.Commands().SubmitRoleJobs.Execute(ctx, command.SubmitRoleJobsInput{
		Actor:      types.ActorRef{OfficeID: 5, UserID: 1},
		ActionType: "fromRoleActionRemove",
		Roles:      "12",
		Targets:    []string{"9_1"},
	})
	require.NoError(t, err)
	require.Equal(t, 1, repo.inserted)
}

func TestService_HealthCheckReportsMissingDependencies(t *testing.T) {
	ctx := context.Background()

	svc := service.New(service.Config{})
	require.ErrorIs(t, svc.HealthCheck(ctx), types.ErrMissingRoleDirectory)
	require.False(t, svc.Ready())

	svc = service.New(service.Config{
		RoleDirectory: types.RoleDirectoryFunc(func(context.Context) ([]types.Role, error) { return nil, nil }),
	})
	require.ErrorIs(t, svc.HealthCheck(ctx), types.ErrMissingJobRepository)

	svc = service.New(service.Config{
		RoleDirectory: types.RoleDirectoryFunc(func(context.Context) ([]types.Role, error) { return nil, nil }),
		JobRepository: &memoryJobs{},
	})
	require.ErrorIs(t, svc.HealthCheck(ctx), types.ErrMissingSecurityResolver)

	var nilService *service.Service
	require.ErrorIs(t, nilService.HealthCheck(ctx), types.ErrServiceNotReady)
	require.NotNil(t, nilService.ScopeGuard())
}

func seedDirectory(t *testing.T, ctx context.Context, dir *directory.Directory) {
	t.Helper()
	require.NoError(t, dir.AddGroup(ctx, types.RoleGroup{Name: "Users", Description: "users.description", Admin: true, Min: 1, Max: 3}))
	require.NoError(t, dir.AddGroup(ctx, types.RoleGroup{Name: "Integration", Description: "integration.description", Max: 1}))

	roles := []types.Role{
		{ID: 12, Name: "Producer Maintenance", Group: &types.RoleGroup{Name: "Users"}, Dependencies: []int64{13, 99}},
		{ID: 13, Name: "Producer Inquiry", Group: &types.RoleGroup{Name: "Users"}},
		{ID: 58, Name: "Reports", Group: &types.RoleGroup{Name: "Users"}, RuntimeConditions: []string{"reports"}},
		{ID: 70, Name: "Feed Export", Group: &types.RoleGroup{Name: "Integration"}, RuntimeConditions: []string{"feeds"}},
		{ID: 99, Name: "Legacy", Group: &types.RoleGroup{Name: "Users"}},
		{ID: 137, Name: "Column Admin", Group: &types.RoleGroup{Name: "Users"}},
	}
	for _, role := range roles {
		require.NoError(t, dir.AddRole(ctx, role))
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	return db
}

func applyMigrations(t *testing.T, db *bun.DB) {
	t.Helper()
	files, err := filepath.Glob("../data/sql/migrations/sqlite/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	sort.Strings(files)
	for _, file := range files {
		content, err := os.ReadFile(file)
		require.NoError(t, err)
		for _, stmt := range strings.Split(string(content), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			_, err := db.Exec(stmt)
			require.NoError(t, err)
		}
	}
}

type memoryJobs struct {
	inserted int
}

func (m *memoryJobs) InsertJob(_ context.Context, job types.UserRoleJob) (*types.UserRoleJob, error) {
	m.inserted++
	return &job, nil
}

func (m *memoryJobs) ListJobs(context.Context, types.JobFilter) (types.JobPage, error) {
	return types.JobPage{}, nil
}
