package command

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/scope"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var testActor = types.ActorRef{OfficeID: 1, UserID: 42}

func TestSubmitRoleJobs_RoundTrip(t *testing.T) {
	repo := &memoryJobRepo{}
	elevator := &fakeElevator{}
	logger := &recordingLogger{}
	metrics := &recordingMetrics{}
	var event types.JobsSubmittedEvent
	cmd := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{
		Repository: repo,
		Elevator:   elevator,
		Clock:      fixedClock{t: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)},
		Logger:     logger,
		Metrics:    metrics,
		Hooks: types.Hooks{AfterJobsSubmitted: func(_ context.Context, e types.JobsSubmittedEvent) {
			event = e
		}},
	})

	var result SubmitRoleJobsResult
	err := cmd.Execute(context.Background(), SubmitRoleJobsInput{
		Actor:      testActor,
		ActionType: types.ActionTypeGrant,
		Roles:      "[12,58]",
		Targets:    []string{"5_100", "7_200", "0_300", "9_"},
		Result:     &result,
	})
	require.NoError(t, err)

	require.Len(t, repo.jobs, 2)
	require.Equal(t, int64(5), repo.jobs[0].OfficeID)
	require.Equal(t, int64(100), repo.jobs[0].UserID)
	require.Equal(t, int64(7), repo.jobs[1].OfficeID)
	require.Equal(t, int64(200), repo.jobs[1].UserID)
	for _, job := range repo.jobs {
		require.Equal(t, result.TransactionID, job.TransactionID)
		require.Equal(t, types.RoleActionGrant, job.Action)
		require.Equal(t, "[12,58]", job.Roles)
		require.Equal(t, testActor.OfficeID, job.CreatedByOfficeID)
		require.Equal(t, testActor.UserID, job.CreatedByUserID)
		require.Equal(t, types.JobStatusPending, job.Status)
		require.True(t, job.ctxElevated, "rows are inserted under the elevated context")
	}
	require.NotEmpty(t, result.TransactionID)
	require.Equal(t, strings.ToUpper(result.TransactionID), result.TransactionID)
	_, err = uuid.Parse(result.TransactionID)
	require.NoError(t, err)

	require.Equal(t, []SkippedTarget{
		{Index: 2, Token: "0_300", Reason: SkipReasonZeroID},
		{Index: 3, Token: "9_", Reason: SkipReasonMalformed},
	}, result.Skipped)
	require.Equal(t, 2, logger.infoCount("role job target skipped"))
	require.Equal(t, 1, elevator.releases)
	require.Equal(t, []string{types.SubmissionOutcomeCommitted}, metrics.outcomes)
	require.Equal(t, 2, metrics.inserted)

	require.Equal(t, result.TransactionID, event.TransactionID)
	require.Equal(t, 2, event.Inserted)
	require.Equal(t, 2, event.Skipped)
	require.Len(t, result.JobIDs(), 2)
}

func TestSubmitRoleJobs_RevokeForAnyOtherActionType(t *testing.T) {
	repo := &memoryJobRepo{}
	cmd := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{Repository: repo, Elevator: &fakeElevator{}})

	err := cmd.Execute(context.Background(), SubmitRoleJobsInput{
		Actor:      testActor,
		ActionType: "fromRoleActionRemove",
		Targets:    []string{"3_30"},
	})
	require.NoError(t, err)
	require.Len(t, repo.jobs, 1)
	require.Equal(t, types.RoleActionRevoke, repo.jobs[0].Action)
}

func TestSubmitRoleJobs_InsertFailureReleasesOnce(t *testing.T) {
	repo := &memoryJobRepo{failOnCall: 2, failErr: errors.New("constraint violation")}
	elevator := &fakeElevator{}
	logger := &recordingLogger{}
	metrics := &recordingMetrics{}
	hookCalled := false
	cmd := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{
		Repository: repo,
		Elevator:   elevator,
		Logger:     logger,
		Metrics:    metrics,
		Hooks: types.Hooks{AfterJobsSubmitted: func(context.Context, types.JobsSubmittedEvent) {
			hookCalled = true
		}},
	})

	var result SubmitRoleJobsResult
	err := cmd.Execute(context.Background(), SubmitRoleJobsInput{
		Actor:      testActor,
		ActionType: types.ActionTypeGrant,
		Targets:    []string{"1_10", "2_20", "3_30"},
		Result:     &result,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, types.ErrInsert)
	require.True(t, types.IsTextCode(err, types.TextCodeInsertFailed))

	require.Equal(t, 1, elevator.releases)
	require.Equal(t, 2, repo.calls, "the third target is never attempted")
	require.Len(t, repo.jobs, 1, "earlier rows are not rolled back")
	require.Len(t, result.Jobs, 1)
	require.Len(t, logger.errors, 1)
	require.Equal(t, []string{types.SubmissionOutcomeInsertFailed}, metrics.outcomes)
	require.False(t, hookCalled)
}

func TestSubmitRoleJobs_ElevationFailure(t *testing.T) {
	repo := &memoryJobRepo{}
	elevator := &fakeElevator{err: errors.New("delegation service down")}
	metrics := &recordingMetrics{}
	cmd := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{Repository: repo, Elevator: elevator, Metrics: metrics})

	err := cmd.Execute(context.Background(), SubmitRoleJobsInput{
		Actor:      testActor,
		ActionType: types.ActionTypeGrant,
		Targets:    []string{"1_10"},
	})
	require.ErrorIs(t, err, types.ErrElevation)
	require.True(t, types.IsTextCode(err, types.TextCodeElevationFailed))
	require.Zero(t, repo.calls)
	require.Zero(t, elevator.releases)
	require.Equal(t, []string{types.SubmissionOutcomeElevationFailed}, metrics.outcomes)
}

func TestSubmitRoleJobs_FeatureGateAndGuard(t *testing.T) {
	repo := &memoryJobRepo{}
	elevator := &fakeElevator{}
	gate := &stubFeatureGate{enabled: false}
	cmd := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{Repository: repo, Elevator: elevator, FeatureGate: gate})

	input := SubmitRoleJobsInput{Actor: testActor, ActionType: types.ActionTypeGrant, Targets: []string{"1_10"}}
	err := cmd.Execute(context.Background(), input)
	require.ErrorIs(t, err, ErrSubmissionDisabled)
	require.True(t, types.IsTextCode(err, types.TextCodeFeatureDisabled))
	require.Equal(t, []string{FeatureRoleJobsSubmit}, gate.keys)
	require.Zero(t, elevator.elevations)

	gate.err = errors.New("gate offline")
	require.ErrorIs(t, cmd.Execute(context.Background(), input), gate.err)

	denied := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{
		Repository: repo,
		Elevator:   elevator,
		ScopeGuard: scope.NewGuard(types.AuthorizationPolicyFunc(func(context.Context, types.PolicyCheck) error {
			return errors.New("not a delegated administrator")
		})),
	})
	err = denied.Execute(context.Background(), input)
	require.ErrorIs(t, err, types.ErrUnauthorized)
	require.Zero(t, elevator.elevations)
	require.Empty(t, repo.jobs)
}

func TestSubmitRoleJobs_Validation(t *testing.T) {
	cmd := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{Repository: &memoryJobRepo{}, Elevator: &fakeElevator{}})

	err := cmd.Execute(context.Background(), SubmitRoleJobsInput{ActionType: types.ActionTypeGrant})
	require.ErrorIs(t, err, ErrActorRequired)

	err = cmd.Execute(context.Background(), SubmitRoleJobsInput{Actor: testActor, ActionType: "  "})
	require.ErrorIs(t, err, ErrActionTypeRequired)

	require.Error(t, NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{}).Execute(context.Background(), SubmitRoleJobsInput{}))
	require.Error(t, NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{Repository: &memoryJobRepo{}}).Execute(context.Background(), SubmitRoleJobsInput{}))
}

func TestSubmitRoleJobs_HookPanicIsRecovered(t *testing.T) {
	logger := &recordingLogger{}
	cmd := NewSubmitRoleJobsCommand(SubmitRoleJobsCommandConfig{
		Repository: &memoryJobRepo{},
		Elevator:   &fakeElevator{},
		Logger:     logger,
		Hooks: types.Hooks{AfterJobsSubmitted: func(context.Context, types.JobsSubmittedEvent) {
			panic("listener bug")
		}},
	})

	err := cmd.Execute(context.Background(), SubmitRoleJobsInput{Actor: testActor, ActionType: types.ActionTypeGrant})
	require.NoError(t, err)
	require.Len(t, logger.errors, 1)
}

func TestParseTarget(t *testing.T) {
	cases := []struct {
		token  string
		want   Target
		reason string
	}{
		{token: "5_100", want: Target{OfficeID: 5, UserID: 100}},
		{token: " 7_200 ", want: Target{OfficeID: 7, UserID: 200}},
		{token: "0_300", reason: SkipReasonZeroID},
		{token: "9_0", reason: SkipReasonZeroID},
		{token: "-1_4", reason: SkipReasonNegativeID},
		{token: "9_", reason: SkipReasonMalformed},
		{token: "_9", reason: SkipReasonMalformed},
		{token: "1_2_3", reason: SkipReasonMalformed},
		{token: "abc_1", reason: SkipReasonMalformed},
		{token: "", reason: SkipReasonMalformed},
	}
	for _, tc := range cases {
		t.Run(tc.token, func(t *testing.T) {
			got, err := ParseTarget(tc.token)
			if tc.reason == "" {
				require.NoError(t, err)
				require.Equal(t, tc.want, got)
				return
			}
			require.Error(t, err)
			require.True(t, types.IsTextCode(err, types.TextCodeMalformedTarget))
			_, reason := parseTarget(tc.token)
			require.Equal(t, tc.reason, reason)
		})
	}
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type storedJob struct {
	types.UserRoleJob
	ctxElevated bool
}

type memoryJobRepo struct {
	mu         sync.Mutex
	jobs       []storedJob
	calls      int
	failOnCall int
	failErr    error
}

func (m *memoryJobRepo) InsertJob(ctx context.Context, job types.UserRoleJob) (*types.UserRoleJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failOnCall > 0 && m.calls == m.failOnCall {
		return nil, m.failErr
	}
	elevated, _ := ctx.Value(elevatedKey{}).(bool)
	m.jobs = append(m.jobs, storedJob{UserRoleJob: job, ctxElevated: elevated})
	out := job
	return &out, nil
}

func (m *memoryJobRepo) ListJobs(context.Context, types.JobFilter) (types.JobPage, error) {
	return types.JobPage{}, nil
}

type elevatedKey struct{}

type fakeElevator struct {
	err        error
	elevations int
	releases   int
}

func (f *fakeElevator) Elevate(ctx context.Context, actor types.ActorRef) (types.ElevatedContext, error) {
	f.elevations++
	if f.err != nil {
		return nil, f.err
	}
	identity := actor
	identity.Elevated = true
	return &fakeElevatedContext{
		ctx:      context.WithValue(ctx, elevatedKey{}, true),
		identity: identity,
		release:  func() { f.releases++ },
	}, nil
}

type fakeElevatedContext struct {
	ctx      context.Context
	identity types.ActorRef
	release  func()
}

func (c *fakeElevatedContext) Context() context.Context { return c.ctx }
func (c *fakeElevatedContext) Identity() types.ActorRef { return c.identity }
func (c *fakeElevatedContext) Release()                 { c.release() }

type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []error
}

func (l *recordingLogger) Debug(string, ...any) {}

func (l *recordingLogger) Info(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Error(_ string, err error, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, err)
}

func (l *recordingLogger) infoCount(msg string) int {
	count := 0
	for _, info := range l.infos {
		if info == msg {
			count++
		}
	}
	return count
}

type recordingMetrics struct {
	inserted int
	skipped  []string
	outcomes []string
}

func (m *recordingMetrics) JobInserted(types.RoleAction) { m.inserted++ }

func (m *recordingMetrics) TargetSkipped(reason string) { m.skipped = append(m.skipped, reason) }

func (m *recordingMetrics) SubmissionFinished(_ types.RoleAction, outcome string, _ time.Duration) {
	m.outcomes = append(m.outcomes, outcome)
}

type stubFeatureGate struct {
	enabled bool
	err     error
	keys    []string
}

func (s *stubFeatureGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	s.keys = append(s.keys, key)
	if s.err != nil {
		return false, s.err
	}
	return s.enabled, nil
}
