package types

import (
	"context"
	"strings"
)

const (
	// BaseGroupName is the reserved role group never rendered as rows.
	BaseGroupName = "baseGroup"
	// ReservedAdminRoleID is the column admin role, never rendered as a row.
	ReservedAdminRoleID int64 = 137
	// IntegrationLabelKey resolves the name of the integration role group.
	IntegrationLabelKey = "~Integration"
)

// RoleGroup is a named bucket of related roles with selection bounds.
type RoleGroup struct {
	Name        string
	Description string
	Admin       bool
	Min         int
	Max         int
}

// Key returns the case-insensitive identity of the group.
func (g RoleGroup) Key() string {
	return strings.ToLower(strings.TrimSpace(g.Name))
}

// IsBase reports whether the group is the reserved base group.
func (g RoleGroup) IsBase() bool {
	return strings.EqualFold(strings.TrimSpace(g.Name), BaseGroupName)
}

// Matches compares the group name against a label ignoring case. Blank values
// never match.
func (g RoleGroup) Matches(label string) bool {
	name := strings.TrimSpace(g.Name)
	label = strings.TrimSpace(label)
	if name == "" || label == "" {
		return false
	}
	return strings.EqualFold(name, label)
}

// Role mirrors an externally owned security role. Dependencies and Parents
// reference other roles by id; references may form cycles.
type Role struct {
	ID                int64
	Name              string
	Hidden            bool
	Group             *RoleGroup
	Dependencies      []int64
	Parents           []int64
	RuntimeConditions []string
}

// GroupName returns the owning group name or an empty string.
func (r Role) GroupName() string {
	if r.Group == nil {
		return ""
	}
	return r.Group.Name
}

// RoleDirectory exposes every known role in a stable, deterministic order.
type RoleDirectory interface {
	ListRoles(ctx context.Context) ([]Role, error)
}

// RoleDirectoryFunc adapts bare functions to RoleDirectory.
type RoleDirectoryFunc func(ctx context.Context) ([]Role, error)

// ListRoles implements RoleDirectory.
func (f RoleDirectoryFunc) ListRoles(ctx context.Context) ([]Role, error) {
	return f(ctx)
}

// EligibilityChecker answers whether a role id participates in the workflow.
type EligibilityChecker interface {
	Contains(roleID int64) bool
}

// SecurityContext evaluates a role's runtime conditions for the viewing user.
type SecurityContext interface {
	Allows(ctx context.Context, conditions []string) (bool, error)
}

// SecurityContextFunc adapts bare functions to SecurityContext.
type SecurityContextFunc func(ctx context.Context, conditions []string) (bool, error)

// Allows implements SecurityContext.
func (f SecurityContextFunc) Allows(ctx context.Context, conditions []string) (bool, error) {
	return f(ctx, conditions)
}

// SecurityContextResolver returns the security context of a viewing actor.
type SecurityContextResolver interface {
	SecurityContextFor(ctx context.Context, actor ActorRef) (SecurityContext, error)
}

// SecurityContextResolverFunc adapts bare functions to SecurityContextResolver.
type SecurityContextResolverFunc func(ctx context.Context, actor ActorRef) (SecurityContext, error)

// SecurityContextFor implements SecurityContextResolver.
func (f SecurityContextResolverFunc) SecurityContextFor(ctx context.Context, actor ActorRef) (SecurityContext, error) {
	return f(ctx, actor)
}

// AllowAllSecurityContext accepts every condition set.
type AllowAllSecurityContext struct{}

// Allows implements SecurityContext.
func (AllowAllSecurityContext) Allows(context.Context, []string) (bool, error) {
	return true, nil
}

// GrantedConditions allows a role when every runtime condition it declares was
// granted. Roles without conditions are always allowed.
type GrantedConditions map[string]struct{}

// NewGrantedConditions builds a condition set from the supplied names.
func NewGrantedConditions(names ...string) GrantedConditions {
	set := make(GrantedConditions, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	return set
}

// Allows implements SecurityContext.
func (g GrantedConditions) Allows(_ context.Context, conditions []string) (bool, error) {
	for _, condition := range conditions {
		if _, ok := g[condition]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// Localizer resolves message keys for a single locale.
type Localizer interface {
	Translate(key string) (string, bool)
}

// LocalizerProvider returns the localizer for a locale. Blank locales resolve
// to the provider default.
type LocalizerProvider interface {
	Localizer(locale string) Localizer
}

// Localize returns the translation for key, falling back to the key itself.
func Localize(l Localizer, key string) string {
	if l == nil {
		return key
	}
	if value, ok := l.Translate(key); ok {
		return value
	}
	return key
}

// IntegrationLabel resolves the integration group label. The boolean is false
// when the label is blank or missing.
func IntegrationLabel(l Localizer) (string, bool) {
	if l == nil {
		return "", false
	}
	value, ok := l.Translate(IntegrationLabelKey)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
