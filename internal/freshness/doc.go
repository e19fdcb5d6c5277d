// Package freshness decides whether a project generated from a template is
// current with the template's history.
//
// Evaluator applies an ordered, short-circuiting set of tolerances: an exact
// commit match, an index that already matches the recorded commit, a project
// ahead of the latest commit (non-strict mode only), and a grace period that
// starts at the oldest template commit the project has not applied yet.
package freshness
