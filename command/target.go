package command

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-svaroles/pkg/types"
)

// Skip reasons recorded for rejected target tokens.
const (
	SkipReasonMalformed  = "malformed"
	SkipReasonZeroID     = "zero_id"
	SkipReasonNegativeID = "negative_id"
)

// Target is a parsed "<officeId>_<userId>" token.
type Target struct {
	OfficeID int64
	UserID   int64
}

// ParseTarget parses a raw target token. Tokens must hold exactly two base 10
// integers separated by "_", and both must be positive. Failures return a
// MALFORMED_TARGET rich error whose metadata carries the skip reason.
func ParseTarget(token string) (Target, error) {
	target, reason := parseTarget(token)
	if reason != "" {
		return Target{}, types.MalformedTargetError(token, reason)
	}
	return target, nil
}

func parseTarget(token string) (Target, string) {
	parts := strings.Split(strings.TrimSpace(token), "_")
	if len(parts) != 2 {
		return Target{}, SkipReasonMalformed
	}
	officeID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Target{}, SkipReasonMalformed
	}
	userID, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Target{}, SkipReasonMalformed
	}
	switch {
	case officeID == 0 || userID == 0:
		return Target{}, SkipReasonZeroID
	case officeID < 0 || userID < 0:
		return Target{}, SkipReasonNegativeID
	}
	return Target{OfficeID: officeID, UserID: userID}, ""
}
