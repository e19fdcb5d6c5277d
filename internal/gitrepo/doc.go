// Package gitrepo classifies template repository references recorded in
// project state as local checkouts or remote URLs.
package gitrepo
