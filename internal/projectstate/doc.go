// Package projectstate reads and writes the state file that records which
// template revision a project was generated from.
//
// The state is kept as an untyped document so unknown keys survive a
// load and save cycle unchanged. Decode exposes the typed fields the rest
// of the application relies on.
package projectstate
