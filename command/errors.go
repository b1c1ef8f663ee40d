package command

import (
	"errors"

	"github.com/goliatone/go-svaroles/pkg/types"
)

var (
	// ErrActorRequired indicates an actor reference was not supplied.
	ErrActorRequired = types.ErrActorRequired
	// ErrActionTypeRequired indicates the submission omitted the action type flag.
	ErrActionTypeRequired = errors.New("go-svaroles: role action type required")
	// ErrSubmissionDisabled indicates role job submission is disabled via feature gate.
	ErrSubmissionDisabled = errors.New("go-svaroles: role job submission disabled")
)
