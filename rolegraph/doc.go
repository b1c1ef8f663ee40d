// Package rolegraph computes which SVA-enabled roles a viewer may select and
// the dependency/parent edges between them, and serializes the result into
// the instruction script consumed by the client-side role validator.
//
// Edges are always direct. The role graph may contain cycles; no transitive
// closure or cycle detection is attempted.
package rolegraph
