package commitgraph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	commitHashRequiredMessageConstant = "commit hash must be provided"
	duplicateCommitTemplateConstant   = "commit %q already exists"
	unknownParentTemplateConstant     = "parent %q of commit %q is unknown"
)

// ErrCommitHashRequired indicates an empty hash was supplied to MemoryGraph.
var ErrCommitHashRequired = errors.New(commitHashRequiredMessageConstant)

// MemoryGraph is an in-memory commit history with named references and a staged index snapshot.
type MemoryGraph struct {
	mutex       sync.RWMutex
	commits     map[string]Commit
	generations map[string]int
	trees       map[string]string
	references  map[string]string
	indexTree   string
}

// NewMemoryGraph constructs an empty MemoryGraph.
func NewMemoryGraph() *MemoryGraph {
	return &MemoryGraph{
		commits:     map[string]Commit{},
		generations: map[string]int{},
		trees:       map[string]string{},
		references:  map[string]string{},
	}
}

// AddCommit records a commit whose parents must already exist. Each commit gets a distinct tree unless SetTree overrides it.
func (graph *MemoryGraph) AddCommit(hash string, committedAt time.Time, parents ...string) error {
	trimmedHash := strings.TrimSpace(hash)
	if len(trimmedHash) == 0 {
		return ErrCommitHashRequired
	}

	graph.mutex.Lock()
	defer graph.mutex.Unlock()

	if _, exists := graph.commits[trimmedHash]; exists {
		return fmt.Errorf(duplicateCommitTemplateConstant, trimmedHash)
	}

	generation := 0
	for _, parentHash := range parents {
		parentGeneration, parentExists := graph.generations[parentHash]
		if !parentExists {
			return fmt.Errorf(unknownParentTemplateConstant, parentHash, trimmedHash)
		}
		if parentGeneration+1 > generation {
			generation = parentGeneration + 1
		}
	}

	graph.commits[trimmedHash] = Commit{Hash: trimmedHash, CommittedAt: committedAt, Parents: append([]string{}, parents...)}
	graph.generations[trimmedHash] = generation
	graph.trees[trimmedHash] = trimmedHash
	return nil
}

// SetTree assigns a tree identifier to a commit so several commits can share identical content.
func (graph *MemoryGraph) SetTree(hash string, tree string) error {
	graph.mutex.Lock()
	defer graph.mutex.Unlock()

	if _, exists := graph.commits[hash]; !exists {
		return UnresolvableCommitError{Identifier: hash}
	}
	graph.trees[hash] = tree
	return nil
}

// SetReference points a symbolic name such as a branch or tag at a commit.
func (graph *MemoryGraph) SetReference(name string, hash string) error {
	graph.mutex.Lock()
	defer graph.mutex.Unlock()

	if _, exists := graph.commits[hash]; !exists {
		return UnresolvableCommitError{Identifier: hash}
	}
	graph.references[name] = hash
	return nil
}

// StageCommit makes the index match the tree of the identified commit, as a checkout would.
func (graph *MemoryGraph) StageCommit(identifier string) error {
	graph.mutex.Lock()
	defer graph.mutex.Unlock()

	hash, resolveError := graph.resolveHash(identifier)
	if resolveError != nil {
		return resolveError
	}
	graph.indexTree = graph.trees[hash]
	return nil
}

// Resolve implements Graph.
func (graph *MemoryGraph) Resolve(_ context.Context, identifier string) (Commit, error) {
	graph.mutex.RLock()
	defer graph.mutex.RUnlock()

	hash, resolveError := graph.resolveHash(identifier)
	if resolveError != nil {
		return Commit{}, resolveError
	}
	return graph.copyCommit(hash), nil
}

// DiffEmpty implements Graph. An unstaged index differs from every commit.
func (graph *MemoryGraph) DiffEmpty(_ context.Context, identifier string) (bool, error) {
	graph.mutex.RLock()
	defer graph.mutex.RUnlock()

	hash, resolveError := graph.resolveHash(identifier)
	if resolveError != nil {
		return false, resolveError
	}
	if len(graph.indexTree) == 0 {
		return false, nil
	}
	return graph.trees[hash] == graph.indexTree, nil
}

// IsAncestor implements Graph.
func (graph *MemoryGraph) IsAncestor(_ context.Context, ancestor string, descendant string) (bool, error) {
	graph.mutex.RLock()
	defer graph.mutex.RUnlock()

	ancestorHash, ancestorError := graph.resolveHash(ancestor)
	if ancestorError != nil {
		return false, ancestorError
	}
	descendantHash, descendantError := graph.resolveHash(descendant)
	if descendantError != nil {
		return false, descendantError
	}

	_, reachable := graph.reachableFrom(descendantHash)[ancestorHash]
	return reachable, nil
}

// CommitsBetween implements Graph. Commits are ordered by commit time, ancestors first on ties.
func (graph *MemoryGraph) CommitsBetween(_ context.Context, from string, to string) ([]Commit, error) {
	graph.mutex.RLock()
	defer graph.mutex.RUnlock()

	fromHash, fromError := graph.resolveHash(from)
	if fromError != nil {
		return nil, fromError
	}
	toHash, toError := graph.resolveHash(to)
	if toError != nil {
		return nil, toError
	}

	excluded := graph.reachableFrom(fromHash)
	pending := make([]Commit, 0)
	for hash := range graph.reachableFrom(toHash) {
		if _, isExcluded := excluded[hash]; isExcluded {
			continue
		}
		pending = append(pending, graph.copyCommit(hash))
	}

	sort.Slice(pending, func(leftIndex int, rightIndex int) bool {
		left := pending[leftIndex]
		right := pending[rightIndex]
		if !left.CommittedAt.Equal(right.CommittedAt) {
			return left.CommittedAt.Before(right.CommittedAt)
		}
		if graph.generations[left.Hash] != graph.generations[right.Hash] {
			return graph.generations[left.Hash] < graph.generations[right.Hash]
		}
		return left.Hash < right.Hash
	})
	return pending, nil
}

func (graph *MemoryGraph) resolveHash(identifier string) (string, error) {
	trimmedIdentifier := strings.TrimSpace(identifier)
	if _, exists := graph.commits[trimmedIdentifier]; exists {
		return trimmedIdentifier, nil
	}
	if referencedHash, exists := graph.references[trimmedIdentifier]; exists {
		return referencedHash, nil
	}
	return "", UnresolvableCommitError{Identifier: identifier}
}

func (graph *MemoryGraph) reachableFrom(hash string) map[string]struct{} {
	reachable := map[string]struct{}{}
	queue := []string{hash}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if _, visited := reachable[current]; visited {
			continue
		}
		reachable[current] = struct{}{}
		queue = append(queue, graph.commits[current].Parents...)
	}
	return reachable
}

func (graph *MemoryGraph) copyCommit(hash string) Commit {
	commit := graph.commits[hash]
	commit.Parents = append([]string{}, commit.Parents...)
	return commit
}
