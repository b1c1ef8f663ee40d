package command

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/scope"
)

func safeClock(clock types.Clock) types.Clock {
	if clock != nil {
		return clock
	}
	return types.SystemClock{}
}

func safeIDGen(idGen types.IDGenerator) types.IDGenerator {
	if idGen != nil {
		return idGen
	}
	return types.UUIDGenerator{}
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func safeMetrics(metrics types.SubmissionMetrics) types.SubmissionMetrics {
	if metrics != nil {
		return metrics
	}
	return types.NopSubmissionMetrics{}
}

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

func now(clock types.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now()
}

// emitJobsSubmittedHook runs the hook and converts panics into log entries.
func emitJobsSubmittedHook(ctx context.Context, hooks types.Hooks, logger types.Logger, event types.JobsSubmittedEvent) {
	if hooks.AfterJobsSubmitted == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("jobs submitted hook panicked", fmt.Errorf("%v", rec), "transaction_id", event.TransactionID)
		}
	}()
	hooks.AfterJobsSubmitted(ctx, event)
}
