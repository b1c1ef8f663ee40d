package command

import (
	"context"
	"strconv"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-svaroles/pkg/types"
)

// FeatureRoleJobsSubmit gates the role job submission command.
const FeatureRoleJobsSubmit = "sva_roles.submit"

func featureEnabled(ctx context.Context, gate featuregate.FeatureGate, key string, actor types.ActorRef) (bool, error) {
	if gate == nil {
		return true, nil
	}
	scopeSet := featureScopeSet(actor)
	if scopeSet == nil {
		return gate.Enabled(ctx, key)
	}
	return gate.Enabled(ctx, key, featuregate.WithScopeSet(*scopeSet))
}

// featureScopeSet maps the acting office to the tenant scope.
func featureScopeSet(actor types.ActorRef) *featuregate.ScopeSet {
	tenantID := ""
	if actor.OfficeID > 0 {
		tenantID = strconv.FormatInt(actor.OfficeID, 10)
	}
	user := ""
	if actor.UserID > 0 {
		user = strconv.FormatInt(actor.UserID, 10)
	}
	if tenantID == "" && user == "" {
		return nil
	}
	return &featuregate.ScopeSet{
		System:   true,
		TenantID: tenantID,
		UserID:   user,
	}
}
