package service

import (
	"context"
	"io/fs"

	featuregate "github.com/goliatone/go-featuregate/gate"
	"github.com/goliatone/go-svaroles/adapter/elevation"
	"github.com/goliatone/go-svaroles/command"
	"github.com/goliatone/go-svaroles/eligibility"
	"github.com/goliatone/go-svaroles/locale"
	"github.com/goliatone/go-svaroles/pkg/types"
	"github.com/goliatone/go-svaroles/query"
	"github.com/goliatone/go-svaroles/rolegraph"
	"github.com/goliatone/go-svaroles/scope"
	"golang.org/x/text/language"
)

// Service is the entry point for go-svaroles. It wires the eligibility
// registry, role graph builder, job repository and command/query facades
// supplied by the host application.
type Service struct {
	cfg        Config
	registry   *eligibility.Registry
	builder    *rolegraph.Builder
	commands   Commands
	queries    Queries
	scopeGuard scope.Guard
}

// Commands exposes the service command handlers.
type Commands struct {
	SubmitRoleJobs *command.SubmitRoleJobsCommand
}

// Queries exposes read-model helpers.
type Queries struct {
	RoleGraph *query.RoleGraphQuery
	JobList   *query.JobListQuery
}

// Config captures all required dependencies so callers can provide their own
// instances (bun-backed directory, job repository, elevator, etc.).
type Config struct {
	RoleDirectory       types.RoleDirectory
	JobRepository       types.JobRepository
	Elevator            types.Elevator
	SecurityResolver    types.SecurityContextResolver
	Localizers          types.LocalizerProvider
	EligibilityResource fs.FS
	EligibilityPath     string
	DefaultLocale       string
	AuthorizationPolicy types.AuthorizationPolicy
	FeatureGate         featuregate.FeatureGate
	Metrics             types.SubmissionMetrics
	Hooks               types.Hooks
	Clock               types.Clock
	IDGenerator         types.IDGenerator
	Logger              types.Logger
}

// New constructs a Service from the supplied configuration.
func New(cfg Config) *Service {
	norm := normalizeConfig(cfg)

	registry := eligibility.NewRegistry(eligibility.RegistryConfig{
		Resource:  norm.EligibilityResource,
		Path:      norm.EligibilityPath,
		Directory: norm.RoleDirectory,
		Localizer: defaultLocalizer(norm),
		Logger:    norm.Logger,
	})

	s := &Service{
		cfg:      norm,
		registry: registry,
		builder: rolegraph.NewBuilder(rolegraph.BuilderConfig{
			Directory:   norm.RoleDirectory,
			Eligibility: registry,
			Logger:      norm.Logger,
		}),
		scopeGuard: scope.Ensure(scope.NewGuard(norm.AuthorizationPolicy)),
	}
	s.commands = s.buildCommands()
	s.queries = s.buildQueries()
	return s
}

func normalizeConfig(cfg Config) Config {
	if cfg.Clock == nil {
		cfg.Clock = types.SystemClock{}
	}
	if cfg.IDGenerator == nil {
		cfg.IDGenerator = types.UUIDGenerator{}
	}
	if cfg.Logger == nil {
		cfg.Logger = types.NopLogger{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = types.NopSubmissionMetrics{}
	}
	if cfg.Elevator == nil {
		cfg.Elevator = elevation.New(elevation.Config{Logger: cfg.Logger})
	}
	if cfg.Localizers == nil {
		fallback := language.English
		if tag, err := language.Parse(cfg.DefaultLocale); err == nil {
			fallback = tag
		}
		if catalog, err := locale.NewDefault(fallback); err == nil {
			cfg.Localizers = catalog
		} else {
			cfg.Logger.Error("go-svaroles: default message catalog failed to load", err)
		}
	}
	return cfg
}

func defaultLocalizer(cfg Config) types.Localizer {
	if cfg.Localizers == nil {
		return nil
	}
	return cfg.Localizers.Localizer(cfg.DefaultLocale)
}

// Commands returns the command facade.
func (s *Service) Commands() Commands {
	return s.commands
}

// Queries returns the query facade.
func (s *Service) Queries() Queries {
	return s.queries
}

// Registry returns the eligibility registry shared by the graph query.
func (s *Service) Registry() *eligibility.Registry {
	if s == nil {
		return nil
	}
	return s.registry
}

// Initialize loads the eligibility registry. Calling it is optional; the graph
// query initializes lazily on first use.
func (s *Service) Initialize(ctx context.Context) {
	if s == nil {
		return
	}
	s.registry.Initialize(ctx)
}

// Ready reports whether the service has the required dependencies wired in.
func (s *Service) Ready() bool {
	return s.HealthCheck(context.Background()) == nil
}

// HealthCheck surfaces missing configuration so upstream transports can fail
// fast.
func (s *Service) HealthCheck(context.Context) error {
	if s == nil {
		return types.ErrServiceNotReady
	}
	if s.cfg.RoleDirectory == nil {
		return types.ErrMissingRoleDirectory
	}
	if s.cfg.JobRepository == nil {
		return types.ErrMissingJobRepository
	}
	if s.cfg.Elevator == nil {
		return types.ErrMissingElevator
	}
	if s.cfg.SecurityResolver == nil {
		return types.ErrMissingSecurityResolver
	}
	if s.cfg.Localizers == nil {
		return types.ErrMissingLocalizer
	}
	return nil
}

// ScopeGuard exposes the guard instance used internally so transports can reuse
// the same policy for HTTP adapters.
func (s *Service) ScopeGuard() scope.Guard {
	if s == nil {
		return scope.NopGuard()
	}
	return scope.Ensure(s.scopeGuard)
}

func (s *Service) buildCommands() Commands {
	return Commands{
		SubmitRoleJobs: command.NewSubmitRoleJobsCommand(command.SubmitRoleJobsCommandConfig{
			Repository:  s.cfg.JobRepository,
			Elevator:    s.cfg.Elevator,
			Clock:       s.cfg.Clock,
			IDGen:       s.cfg.IDGenerator,
			Hooks:       s.cfg.Hooks,
			Logger:      s.cfg.Logger,
			Metrics:     s.cfg.Metrics,
			ScopeGuard:  s.scopeGuard,
			FeatureGate: s.cfg.FeatureGate,
		}),
	}
}

func (s *Service) buildQueries() Queries {
	return Queries{
		RoleGraph: query.NewRoleGraphQuery(query.RoleGraphQueryConfig{
			Builder:    s.builder,
			Registry:   s.registry,
			Security:   s.cfg.SecurityResolver,
			Localizers: s.cfg.Localizers,
			ScopeGuard: s.scopeGuard,
			Logger:     s.cfg.Logger,
		}),
		JobList: query.NewJobListQuery(s.cfg.JobRepository, s.scopeGuard),
	}
}
