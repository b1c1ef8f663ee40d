package main

import (
	"errors"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
)

// BaseConfig holds all configuration for the svaroles CLI.
type BaseConfig struct {
	Server      ServerConfig      `json:"server"`
	Persistence PersistenceConfig `json:"persistence"`
	Eligibility   EligibilityConfig   `json:"eligibility"`
	Features      FeaturesConfig      `json:"features"`
	Authorization AuthorizationConfig `json:"authorization"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port string `json:"port" env:"SERVER_PORT" default:"8979"`
	Host string `json:"host" env:"SERVER_HOST" default:"localhost"`
	// TokenSecret enables bearer token authentication with go-auth HS256 tokens.
	TokenSecret string `json:"token_secret" env:"SVA_ROLES_TOKEN_SECRET"`
	TokenIssuer string `json:"token_issuer" default:"svaroles"`
	// TrustActorHeaders accepts X-Office-ID/X-User-ID as the actor. Only
	// for deployments behind an authenticating proxy.
	TrustActorHeaders bool `json:"trust_actor_headers" env:"SVA_ROLES_TRUST_ACTOR_HEADERS" default:"false"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// PersistenceConfig implements persistence.Config.
type PersistenceConfig struct {
	Debug          bool          `json:"debug" default:"false"`
	Driver         string        `json:"driver" default:"sqlite"`
	Server         string        `json:"server" env:"DB_SERVER" default:"file:svaroles.db?_journal_mode=WAL&cache=shared&_fk=1"`
	PingTimeout    time.Duration `json:"ping_timeout" default:"5s"`
	OtelIdentifier string        `json:"otel_identifier" default:"svaroles"`
}

func (c PersistenceConfig) GetDebug() bool                { return c.Debug }
func (c PersistenceConfig) GetDriver() string             { return c.Driver }
func (c PersistenceConfig) GetServer() string             { return c.Server }
func (c PersistenceConfig) GetPingTimeout() time.Duration { return c.PingTimeout }
func (c PersistenceConfig) GetOtelIdentifier() string     { return c.OtelIdentifier }

// EligibilityConfig selects the eligible roles resource and viewer defaults.
type EligibilityConfig struct {
	// ResourcePath overrides the bundled eligible roles document.
	ResourcePath  string `json:"resource_path" env:"SVA_ROLES_RESOURCE"`
	DefaultLocale string `json:"default_locale" default:"en"`
	// GrantedConditions lists the runtime conditions granted to every viewer.
	GrantedConditions []string `json:"granted_conditions"`
	CacheDirectory    bool     `json:"cache_directory" default:"true"`
}

// FeaturesConfig toggles gated operations.
type FeaturesConfig struct {
	SubmitEnabled bool `json:"submit_enabled" env:"SVA_ROLES_SUBMIT_ENABLED" default:"true"`
}

// AuthorizationConfig restricts which actors may use the service.
type AuthorizationConfig struct {
	// Offices limits every operation to actors of these offices. Empty allows
	// any office.
	Offices []int64 `json:"offices"`
	// JobSubmitters lists the user ids allowed to submit role jobs and read
	// jobs of other offices. Empty leaves submission open to any actor.
	JobSubmitters []int64 `json:"job_submitters"`
}

// GetPersistence returns persistence config.
func (c *BaseConfig) GetPersistence() persistence.Config {
	return c.Persistence
}

// Validate implements config.Validable interface.
func (c *BaseConfig) Validate() error {
	driver := strings.ToLower(strings.TrimSpace(c.Persistence.Driver))
	if driver != "sqlite" && driver != "sqlite3" {
		return errors.New("svaroles: only the sqlite persistence driver is supported")
	}
	return nil
}

func defaultConfig() *BaseConfig {
	return &BaseConfig{
		Server: ServerConfig{
			Host:        "localhost",
			Port:        "8979",
			TokenIssuer: "svaroles",
		},
		Persistence: PersistenceConfig{
			Driver:         "sqlite",
			Server:         "file:svaroles.db?_journal_mode=WAL&cache=shared&_fk=1",
			PingTimeout:    5 * time.Second,
			OtelIdentifier: "svaroles",
		},
		Eligibility: EligibilityConfig{
			DefaultLocale:  "en",
			CacheDirectory: true,
		},
		Features: FeaturesConfig{
			SubmitEnabled: true,
		},
	}
}
