// Package jobs persists SVA user role jobs in sva_user_role_jobs. Rows are
// inserted one at a time and never mutated here; an external processor
// advances their status.
package jobs
