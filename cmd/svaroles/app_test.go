package main

import (
	"context"
	"io/fs"
	"testing"

	"github.com/goliatone/go-svaroles/command"
	"github.com/goliatone/go-svaroles/migrations"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/stretchr/testify/require"
)

func TestConfigGate(t *testing.T) {
	gate := configGate{command.FeatureRoleJobsSubmit: false}

	enabled, err := gate.Enabled(context.Background(), command.FeatureRoleJobsSubmit)
	require.NoError(t, err)
	require.False(t, enabled)

	enabled, err = gate.Enabled(context.Background(), "unknown.feature")
	require.NoError(t, err)
	require.True(t, enabled)
}

func TestGrantedConditionsResolver(t *testing.T) {
	resolver := grantedConditionsResolver([]string{"feeds", " "})
	security, err := resolver.SecurityContextFor(context.Background(), types.ActorRef{OfficeID: 1, UserID: 1})
	require.NoError(t, err)

	allowed, err := security.Allows(context.Background(), []string{"feeds"})
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = security.Allows(context.Background(), []string{"feeds", "reports"})
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestActorFromFlags(t *testing.T) {
	t.Cleanup(func() { flagOffice, flagUser, flagLocale = "", "", "" })

	flagOffice, flagUser, flagLocale = "5", "100", "fr"
	actor, err := actorFromFlags()
	require.NoError(t, err)
	require.Equal(t, types.ActorRef{OfficeID: 5, UserID: 100, Locale: "fr"}, actor)

	flagUser = "0"
	_, err = actorFromFlags()
	require.Error(t, err)
}

func TestBaseConfigValidate(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, "localhost:8979", cfg.Server.Addr())

	cfg.Persistence.Driver = "postgres"
	require.Error(t, cfg.Validate())
}

func TestConfigPolicy(t *testing.T) {
	ctx := context.Background()
	policy := newConfigPolicy(AuthorizationConfig{Offices: []int64{5}, JobSubmitters: []int64{100}})
	submitter := types.ActorRef{OfficeID: 5, UserID: 100}
	viewer := types.ActorRef{OfficeID: 5, UserID: 200}

	require.NoError(t, policy.Authorize(ctx, types.PolicyCheck{Actor: viewer, Action: types.PolicyActionRolesRead, OfficeID: 5}))
	require.Error(t, policy.Authorize(ctx, types.PolicyCheck{Actor: types.ActorRef{OfficeID: 6, UserID: 100}, Action: types.PolicyActionRolesRead, OfficeID: 6}))

	require.NoError(t, policy.Authorize(ctx, types.PolicyCheck{Actor: submitter, Action: types.PolicyActionJobsWrite, OfficeID: 5}))
	require.Error(t, policy.Authorize(ctx, types.PolicyCheck{Actor: viewer, Action: types.PolicyActionJobsWrite, OfficeID: 5}))

	require.NoError(t, policy.Authorize(ctx, types.PolicyCheck{Actor: viewer, Action: types.PolicyActionJobsRead, OfficeID: 5}))
	require.Error(t, policy.Authorize(ctx, types.PolicyCheck{Actor: viewer, Action: types.PolicyActionJobsRead, OfficeID: 9}))
	require.NoError(t, policy.Authorize(ctx, types.PolicyCheck{Actor: submitter, Action: types.PolicyActionJobsRead, OfficeID: 9}))

	open := newConfigPolicy(AuthorizationConfig{})
	require.NoError(t, open.Authorize(ctx, types.PolicyCheck{Actor: viewer, Action: types.PolicyActionJobsWrite, OfficeID: 5}))
}

func TestMigrationSourcesRegistered(t *testing.T) {
	sources := migrations.Sources()
	require.NotEmpty(t, sources)
	require.Equal(t, migrations.CoreSource, sources[0].Name)

	entries, err := fs.Glob(sources[0].FS, "sqlite/*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}
