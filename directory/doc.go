// Package directory mirrors the externally owned security role directory in
// SQL tables and exposes it as a types.RoleDirectory.
package directory
