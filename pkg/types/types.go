package types

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ActorRef identifies the office/user pair initiating a request. Elevated is set
// on the copy carried by a temporary elevated execution context.
type ActorRef struct {
	OfficeID int64
	UserID   int64
	Locale   string
	Elevated bool
}

// Valid reports whether both identifiers are present.
func (a ActorRef) Valid() bool {
	return a.OfficeID > 0 && a.UserID > 0
}

// Pagination supports query pagination across admin panels.
type Pagination struct {
	Limit  int
	Offset int
}

// JobsSubmittedEvent is emitted after a role job submission finishes its target
// loop, including submissions where every target was skipped.
type JobsSubmittedEvent struct {
	TransactionID string
	Actor         ActorRef
	Action        RoleAction
	Roles         string
	Inserted      int
	Skipped       int
	OccurredAt    time.Time
}

// Hooks groups optional callbacks invoked after key workflows complete.
type Hooks struct {
	AfterJobsSubmitted func(context.Context, JobsSubmittedEvent)
}

// Clock abstracts time retrieval for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID creation.
type IDGenerator interface {
	UUID() uuid.UUID
}

// Logger captures basic logging hooks used by the service.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, err error, fields ...any)
}

// SystemClock defers to time.Now for production usage.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

// UUIDGenerator produces UUIDv4 identifiers.
type UUIDGenerator struct{}

// UUID returns a randomly generated UUID.
func (UUIDGenerator) UUID() uuid.UUID { return uuid.New() }

// NopLogger discards all log lines.
type NopLogger struct{}

// Debug implements Logger.
func (NopLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NopLogger) Info(string, ...any) {}

// Error implements Logger.
func (NopLogger) Error(string, error, ...any) {}

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = errors.New("go-svaroles: actor reference required")
	// ErrServiceNotReady indicates the service has not been properly configured.
	ErrServiceNotReady = errors.New("go-svaroles: service not ready")
	// ErrMissingRoleDirectory occurs when no role directory was supplied.
	ErrMissingRoleDirectory = errors.New("go-svaroles: missing role directory")
	// ErrMissingJobRepository occurs when no job repository was supplied.
	ErrMissingJobRepository = errors.New("go-svaroles: missing job repository")
	// ErrMissingElevator occurs when submissions lack an elevated context provider.
	ErrMissingElevator = errors.New("go-svaroles: missing elevator")
	// ErrMissingSecurityResolver occurs when graph queries cannot resolve the viewer security context.
	ErrMissingSecurityResolver = errors.New("go-svaroles: missing security context resolver")
	// ErrMissingLocalizer occurs when no localizer provider was supplied.
	ErrMissingLocalizer = errors.New("go-svaroles: missing localizer provider")
)
