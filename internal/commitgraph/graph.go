package commitgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	unresolvableCommitTemplateConstant      = "unable to resolve commit %q"
	unresolvableCommitCauseTemplateConstant = "unable to resolve commit %q: %v"
	unsupportedBackendTemplateConstant      = "unsupported commit graph backend %q"
	repositoryPathRequiredMessageConstant   = "repository path must be provided"
	gitExecutorMissingMessageConstant       = "git executor not configured"
)

// Backend names a Graph implementation.
type Backend string

// Supported backends.
const (
	BackendGit   Backend = Backend("git")
	BackendGoGit Backend = Backend("go-git")
)

// Commit is a resolved point in the template history.
type Commit struct {
	Hash        string
	CommittedAt time.Time
	Parents     []string
}

// CommittedDate truncates the commit timestamp to its calendar date in the provided location.
func (commit Commit) CommittedDate(location *time.Location) time.Time {
	if location == nil {
		location = time.Local
	}
	localTime := commit.CommittedAt.In(location)
	return time.Date(localTime.Year(), localTime.Month(), localTime.Day(), 0, 0, 0, 0, location)
}

// Graph answers the commit history questions needed to decide template freshness.
type Graph interface {
	// Resolve maps an identifier (hash, branch, tag, HEAD) to a commit.
	Resolve(executionContext context.Context, identifier string) (Commit, error)
	// DiffEmpty reports whether the repository index matches the tree of the identified commit.
	DiffEmpty(executionContext context.Context, identifier string) (bool, error)
	// IsAncestor reports whether ancestor is reachable from descendant. A commit is its own ancestor.
	IsAncestor(executionContext context.Context, ancestor string, descendant string) (bool, error)
	// CommitsBetween lists commits reachable from to but not from from, oldest first.
	CommitsBetween(executionContext context.Context, from string, to string) ([]Commit, error)
}

// UnresolvableCommitError indicates an identifier does not name a commit in the repository.
type UnresolvableCommitError struct {
	Identifier string
	Cause      error
}

// Error describes the unknown identifier.
func (resolutionError UnresolvableCommitError) Error() string {
	if resolutionError.Cause == nil {
		return fmt.Sprintf(unresolvableCommitTemplateConstant, resolutionError.Identifier)
	}
	return fmt.Sprintf(unresolvableCommitCauseTemplateConstant, resolutionError.Identifier, resolutionError.Cause)
}

// Unwrap exposes the backend failure.
func (resolutionError UnresolvableCommitError) Unwrap() error {
	return resolutionError.Cause
}

// UnsupportedBackendError indicates Open received an unknown backend name.
type UnsupportedBackendError struct {
	Backend Backend
}

// Error describes the unknown backend.
func (backendError UnsupportedBackendError) Error() string {
	return fmt.Sprintf(unsupportedBackendTemplateConstant, backendError.Backend)
}

// ErrRepositoryPathRequired indicates an empty repository path.
var ErrRepositoryPathRequired = errors.New(repositoryPathRequiredMessageConstant)

// ErrGitExecutorNotConfigured indicates the git CLI backend was requested without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ParseBackend normalizes a backend name, defaulting to the git CLI backend.
func ParseBackend(rawBackend string) (Backend, error) {
	normalizedBackend := Backend(strings.ToLower(strings.TrimSpace(rawBackend)))
	switch normalizedBackend {
	case "", BackendGit:
		return BackendGit, nil
	case BackendGoGit:
		return BackendGoGit, nil
	default:
		return "", UnsupportedBackendError{Backend: Backend(rawBackend)}
	}
}

// Open constructs the Graph for the requested backend over the repository at repositoryPath.
func Open(backend Backend, repositoryPath string, executor GitExecutor) (Graph, error) {
	switch backend {
	case BackendGit:
		gitCLIGraph, creationError := NewGitCLIGraph(executor, repositoryPath)
		if creationError != nil {
			return nil, creationError
		}
		return gitCLIGraph, nil
	case BackendGoGit:
		goGitGraph, openError := OpenGoGitGraph(repositoryPath)
		if openError != nil {
			return nil, openError
		}
		return goGitGraph, nil
	default:
		return nil, UnsupportedBackendError{Backend: backend}
	}
}
