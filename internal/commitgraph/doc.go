// Package commitgraph exposes read-only access to a template repository's
// commit history.
//
// Graph is the query surface consumed by the freshness evaluator: resolving
// identifiers to commits, comparing the repository index with a commit,
// testing ancestry and listing the commits of a revision range. GitCLIGraph
// runs git plumbing commands through execshell, GoGitGraph reads the object
// store in-process with go-git, and MemoryGraph holds a synthetic history for
// tests.
package commitgraph
