package query

import (
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/scope"
)

func safeScopeGuard(g scope.Guard) scope.Guard {
	return scope.Ensure(g)
}

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}
