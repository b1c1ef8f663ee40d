package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	gconfig "github.com/goliatone/go-config/config"
	"github.com/goliatone/go-errors"
	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	svaroles "github.com/goliatone/go-svaroles"
	"github.com/goliatone/go-svaroles/command"
	"github.com/goliatone/go-svaroles/directory"
	"github.com/goliatone/go-svaroles/jobs"
	"github.com/goliatone/go-svaroles/migrations"
	"github.com/goliatone/go-svaroles/pkg/telemetry"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// App holds the wired runtime shared by every subcommand.
type App struct {
	config    *gconfig.Container[*BaseConfig]
	logger    *glog.BaseLogger
	sqlDB     *sql.DB
	bunDB     *bun.DB
	directory *directory.Directory
	service   *svaroles.Service
	registry  *prometheus.Registry
}

func (a *App) Config() *BaseConfig {
	return a.config.Raw()
}

func (a *App) GetLogger(name string) glog.Logger {
	return a.logger.GetLogger(name)
}

func (a *App) Close() {
	if a.bunDB != nil {
		_ = a.bunDB.Close()
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
}

func newApp(ctx context.Context, migrate bool) (*App, error) {
	lgr := newLogger(flagVerbose)

	cfg := gconfig.New(defaultConfig()).WithLogger(lgr.GetLogger("config"))
	if err := cfg.Load(ctx); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if flagDSN != "" {
		cfg.Raw().Persistence.Server = flagDSN
	}

	app := &App{config: cfg, logger: lgr}
	if err := WithPersistence(ctx, app, migrate); err != nil {
		app.Close()
		return nil, err
	}
	if err := WithService(app); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func newLogger(verbose bool) *glog.BaseLogger {
	if verbose {
		return glog.NewLogger(
			glog.WithLoggerTypePretty(),
			glog.WithLevel(glog.Trace),
			glog.WithName("svaroles"),
			glog.WithAddSource(true),
			glog.WithRichErrorHandler(errors.ToSlogAttributes),
		)
	}
	return glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithName("svaroles"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)
}

// WithPersistence opens the database and registers every migration source.
// When migrate is set the migrations are applied and the resulting schema is
// checked.
func WithPersistence(ctx context.Context, app *App, migrate bool) error {
	cfg := app.Config().GetPersistence()
	dsn := cfg.GetServer()
	if dsn == "" {
		dsn = "file::memory:?cache=shared"
	}

	db, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return err
	}
	app.sqlDB = db

	persistence.RegisterModel((*directory.GroupRecord)(nil))
	persistence.RegisterModel((*directory.RoleRecord)(nil))
	persistence.RegisterModel((*directory.DependencyRecord)(nil))
	persistence.RegisterModel((*directory.ParentRecord)(nil))
	persistence.RegisterModel((*directory.ConditionRecord)(nil))
	persistence.RegisterModel((*jobs.Record)(nil))

	bunClient, err := persistence.New(cfg, db, sqlitedialect.New())
	if err != nil {
		return err
	}
	bunClient.SetLogger(app.GetLogger("persistence"))

	for _, src := range migrations.Sources() {
		bunClient.RegisterDialectMigrations(
			src.FS,
			persistence.WithDialectSourceLabel(src.Name),
			persistence.WithValidationTargets("postgres", "sqlite"),
		)
	}

	if migrate {
		if err := bunClient.ValidateDialects(ctx); err != nil {
			app.GetLogger("persistence").Warn("dialect validation failed", "error", err)
		}
		if err := bunClient.Migrate(ctx); err != nil {
			return err
		}
		if report := bunClient.Report(); report != nil && !report.IsZero() {
			app.GetLogger("persistence").Info("migrations applied", "report", report.String())
		}
		if err := migrations.ValidateSchema(ctx, db, "sqlite"); err != nil {
			return err
		}
	}

	app.bunDB = bunClient.DB()
	return nil
}

// WithService wires the role directory, job repository and service.
func WithService(app *App) error {
	cfg := app.Config()
	logger := &loggerAdapter{app.GetLogger("svaroles")}

	dir, err := directory.New(directory.Config{DB: app.bunDB, Logger: logger}, directory.WithCache(cfg.Eligibility.CacheDirectory))
	if err != nil {
		return err
	}
	jobRepo, err := jobs.NewRepository(jobs.RepositoryConfig{DB: app.bunDB})
	if err != nil {
		return err
	}

	app.registry = prometheus.NewRegistry()
	app.registry.MustRegister(collectors.NewGoCollector())

	svcCfg := svaroles.Config{
		RoleDirectory:       dir,
		JobRepository:       jobRepo,
		SecurityResolver:    grantedConditionsResolver(cfg.Eligibility.GrantedConditions),
		AuthorizationPolicy: newConfigPolicy(cfg.Authorization),
		DefaultLocale:       cfg.Eligibility.DefaultLocale,
		FeatureGate:         configGate{command.FeatureRoleJobsSubmit: cfg.Features.SubmitEnabled},
		Metrics:             telemetry.NewJobMetrics(app.registry, ""),
		Logger:              logger,
	}
	if path := cfg.Eligibility.ResourcePath; path != "" {
		svcCfg.EligibilityResource = os.DirFS(filepath.Dir(path))
		svcCfg.EligibilityPath = filepath.Base(path)
	}

	app.directory = dir
	app.service = svaroles.New(svcCfg)
	return nil
}

func grantedConditionsResolver(names []string) types.SecurityContextResolver {
	granted := types.NewGrantedConditions(names...)
	return types.SecurityContextResolverFunc(func(context.Context, types.ActorRef) (types.SecurityContext, error) {
		return granted, nil
	})
}

// configGate resolves feature keys from static configuration. Unknown keys are
// enabled.
type configGate map[string]bool

var _ featuregate.FeatureGate = configGate(nil)

func (g configGate) Enabled(_ context.Context, key string, _ ...featuregate.ResolveOption) (bool, error) {
	enabled, ok := g[key]
	if !ok {
		return true, nil
	}
	return enabled, nil
}

// configPolicy authorizes actors from the static authorization settings.
type configPolicy struct {
	offices    map[int64]struct{}
	submitters map[int64]struct{}
}

var _ types.AuthorizationPolicy = configPolicy{}

func newConfigPolicy(cfg AuthorizationConfig) configPolicy {
	return configPolicy{
		offices:    idSet(cfg.Offices),
		submitters: idSet(cfg.JobSubmitters),
	}
}

func (p configPolicy) Authorize(_ context.Context, check types.PolicyCheck) error {
	if !allowed(p.offices, check.Actor.OfficeID) {
		return fmt.Errorf("office %d is not served", check.Actor.OfficeID)
	}
	switch check.Action {
	case types.PolicyActionJobsWrite:
		if !allowed(p.submitters, check.Actor.UserID) {
			return fmt.Errorf("user %d may not submit role jobs", check.Actor.UserID)
		}
	case types.PolicyActionJobsRead:
		if check.OfficeID != 0 && check.OfficeID != check.Actor.OfficeID && !member(p.submitters, check.Actor.UserID) {
			return fmt.Errorf("user %d may not read jobs of office %d", check.Actor.UserID, check.OfficeID)
		}
	}
	return nil
}

func idSet(ids []int64) map[int64]struct{} {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

// allowed treats an empty set as unrestricted.
func allowed(set map[int64]struct{}, id int64) bool {
	return len(set) == 0 || member(set, id)
}

func member(set map[int64]struct{}, id int64) bool {
	_, ok := set[id]
	return ok
}

func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}
