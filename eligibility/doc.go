// Package eligibility holds the set of role ids that may appear in the SVA
// bulk grant/revoke workflow. The set is loaded once from a static JSON
// resource plus every role owned by the integration role group, and is never
// shrunk afterwards.
package eligibility
