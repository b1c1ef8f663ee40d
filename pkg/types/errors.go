package types

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to rich errors so transports can map failures without
// string matching.
const (
	TextCodeResourceLoadFailed = "ELIGIBLE_ROLES_RESOURCE_LOAD_FAILED"
	TextCodeSecurityCheck      = "SECURITY_CHECK_FAILED"
	TextCodeElevationFailed    = "ELEVATION_FAILED"
	TextCodeInsertFailed       = "JOB_INSERT_FAILED"
	TextCodeMalformedTarget    = "MALFORMED_TARGET"
	TextCodeFeatureDisabled    = "FEATURE_DISABLED"
	TextCodeUnauthorized       = "ACTOR_NOT_AUTHORIZED"
)

var (
	// ErrResourceLoad reports the static eligible role resource could not be read.
	ErrResourceLoad = errors.New("go-svaroles: eligible role resource unavailable")
	// ErrSecurityCheck reports the security predicate failed for a role.
	ErrSecurityCheck = errors.New("go-svaroles: security check failed")
	// ErrElevation reports a temporary elevated context could not be established.
	ErrElevation = errors.New("go-svaroles: elevated context unavailable")
	// ErrInsert reports the persistence layer rejected a job row.
	ErrInsert = errors.New("go-svaroles: job insert rejected")
	// ErrMalformedTarget reports a target token that is not "<officeId>_<userId>".
	ErrMalformedTarget = errors.New("go-svaroles: malformed target")
)

// ResourceLoadError wraps a static resource failure.
func ResourceLoadError(err error, path string) error {
	return goerrors.Wrap(errors.Join(ErrResourceLoad, err), goerrors.CategoryInternal, "go-svaroles: failed to load eligible roles resource").
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeResourceLoadFailed).
		WithMetadata(map[string]any{"path": path})
}

// SecurityCheckError wraps a failing or panicking security predicate.
func SecurityCheckError(err error, roleID int64) error {
	return goerrors.Wrap(errors.Join(ErrSecurityCheck, err), goerrors.CategoryAuthz, "go-svaroles: security check failed").
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeSecurityCheck).
		WithMetadata(map[string]any{"role_id": roleID})
}

// ElevationError wraps a failure to establish the elevated context.
func ElevationError(err error, actor ActorRef) error {
	return goerrors.Wrap(errors.Join(ErrElevation, err), goerrors.CategoryInternal, "go-svaroles: unable to establish elevated context").
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeElevationFailed).
		WithMetadata(map[string]any{
			"office_id": actor.OfficeID,
			"user_id":   actor.UserID,
		})
}

// InsertError wraps a rejected job row.
func InsertError(err error, transactionID string, index int, officeID, userID int64) error {
	return goerrors.Wrap(errors.Join(ErrInsert, err), goerrors.CategoryInternal, "go-svaroles: job insert failed").
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeInsertFailed).
		WithMetadata(map[string]any{
			"transaction_id": transactionID,
			"index":          index,
			"office_id":      officeID,
			"user_id":        userID,
		})
}

// MalformedTargetError describes a skipped target token.
func MalformedTargetError(token, reason string) error {
	return goerrors.New("go-svaroles: target skipped: "+reason, goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeMalformedTarget).
		WithMetadata(map[string]any{"token": token, "reason": reason})
}

// IsTextCode reports whether err carries a go-errors payload with the code.
func IsTextCode(err error, code string) bool {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}
