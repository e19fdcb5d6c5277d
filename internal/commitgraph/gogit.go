package commitgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	repositoryOpenFailureTemplateConstant  = "failed to open repository %s: %w"
	indexReadFailureTemplateConstant       = "failed to read repository index: %w"
	treeReadFailureTemplateConstant        = "failed to read tree of commit %s: %w"
	historyWalkFailureTemplateConstant     = "failed to walk history of commit %s: %w"
	repositoryNotConfiguredMessageConstant = "go-git repository not configured"
)

// ErrRepositoryNotConfigured indicates a nil go-git repository was supplied.
var ErrRepositoryNotConfigured = errors.New(repositoryNotConfiguredMessageConstant)

// GoGitGraph answers Graph queries by reading the repository object store with go-git.
type GoGitGraph struct {
	repository *git.Repository
}

// OpenGoGitGraph opens the repository containing repositoryPath.
func OpenGoGitGraph(repositoryPath string) (*GoGitGraph, error) {
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	repository, openError := git.PlainOpenWithOptions(trimmedRepositoryPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, fmt.Errorf(repositoryOpenFailureTemplateConstant, trimmedRepositoryPath, openError)
	}
	return NewGoGitGraph(repository)
}

// NewGoGitGraph wraps an already opened repository.
func NewGoGitGraph(repository *git.Repository) (*GoGitGraph, error) {
	if repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return &GoGitGraph{repository: repository}, nil
}

// Resolve implements Graph.
func (graph *GoGitGraph) Resolve(_ context.Context, identifier string) (Commit, error) {
	commitObject, resolveError := graph.commitObject(identifier)
	if resolveError != nil {
		return Commit{}, resolveError
	}
	return convertCommit(commitObject), nil
}

// DiffEmpty implements Graph by comparing staged index entries with the commit tree. Submodule entries are ignored.
func (graph *GoGitGraph) DiffEmpty(_ context.Context, identifier string) (bool, error) {
	commitObject, resolveError := graph.commitObject(identifier)
	if resolveError != nil {
		return false, resolveError
	}

	repositoryIndex, indexError := graph.repository.Storer.Index()
	if indexError != nil {
		return false, fmt.Errorf(indexReadFailureTemplateConstant, indexError)
	}

	tree, treeError := commitObject.Tree()
	if treeError != nil {
		return false, fmt.Errorf(treeReadFailureTemplateConstant, commitObject.Hash, treeError)
	}

	type treeEntry struct {
		hash plumbing.Hash
		mode filemode.FileMode
	}
	treeEntries := map[string]treeEntry{}
	walkError := tree.Files().ForEach(func(file *object.File) error {
		treeEntries[file.Name] = treeEntry{hash: file.Hash, mode: file.Mode}
		return nil
	})
	if walkError != nil {
		return false, fmt.Errorf(treeReadFailureTemplateConstant, commitObject.Hash, walkError)
	}

	stagedEntryCount := 0
	for _, indexEntry := range repositoryIndex.Entries {
		if indexEntry.Mode == filemode.Submodule {
			continue
		}
		stagedEntryCount++
		matchingEntry, exists := treeEntries[indexEntry.Name]
		if !exists || matchingEntry.hash != indexEntry.Hash || matchingEntry.mode != indexEntry.Mode {
			return false, nil
		}
	}
	return stagedEntryCount == len(treeEntries), nil
}

// IsAncestor implements Graph.
func (graph *GoGitGraph) IsAncestor(_ context.Context, ancestor string, descendant string) (bool, error) {
	ancestorCommit, ancestorError := graph.commitObject(ancestor)
	if ancestorError != nil {
		return false, ancestorError
	}
	descendantCommit, descendantError := graph.commitObject(descendant)
	if descendantError != nil {
		return false, descendantError
	}
	return ancestorCommit.IsAncestor(descendantCommit)
}

// CommitsBetween implements Graph. Commits are walked newest first by committer time and returned reversed.
func (graph *GoGitGraph) CommitsBetween(_ context.Context, from string, to string) ([]Commit, error) {
	fromCommit, fromError := graph.commitObject(from)
	if fromError != nil {
		return nil, fromError
	}
	toCommit, toError := graph.commitObject(to)
	if toError != nil {
		return nil, toError
	}

	excluded := map[plumbing.Hash]bool{}
	excludedWalkError := object.NewCommitPreorderIter(fromCommit, nil, nil).ForEach(func(commitObject *object.Commit) error {
		excluded[commitObject.Hash] = true
		return nil
	})
	if excludedWalkError != nil {
		return nil, fmt.Errorf(historyWalkFailureTemplateConstant, fromCommit.Hash, excludedWalkError)
	}

	newestFirst := make([]Commit, 0)
	pendingWalkError := object.NewCommitIterCTime(toCommit, excluded, nil).ForEach(func(commitObject *object.Commit) error {
		if excluded[commitObject.Hash] {
			return nil
		}
		newestFirst = append(newestFirst, convertCommit(commitObject))
		return nil
	})
	if pendingWalkError != nil {
		return nil, fmt.Errorf(historyWalkFailureTemplateConstant, toCommit.Hash, pendingWalkError)
	}

	oldestFirst := make([]Commit, len(newestFirst))
	for index, commit := range newestFirst {
		oldestFirst[len(newestFirst)-1-index] = commit
	}
	return oldestFirst, nil
}

func (graph *GoGitGraph) commitObject(identifier string) (*object.Commit, error) {
	hash, resolveError := graph.repository.ResolveRevision(plumbing.Revision(strings.TrimSpace(identifier)))
	if resolveError != nil {
		return nil, UnresolvableCommitError{Identifier: identifier, Cause: resolveError}
	}
	commitObject, commitError := graph.repository.CommitObject(*hash)
	if commitError != nil {
		return nil, UnresolvableCommitError{Identifier: identifier, Cause: commitError}
	}
	return commitObject, nil
}

func convertCommit(commitObject *object.Commit) Commit {
	parents := make([]string, 0, len(commitObject.ParentHashes))
	for _, parentHash := range commitObject.ParentHashes {
		parents = append(parents, parentHash.String())
	}
	return Commit{Hash: commitObject.Hash.String(), CommittedAt: commitObject.Committer.When, Parents: parents}
}
