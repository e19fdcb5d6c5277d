package commitgraph_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/scaffoldsync/internal/commitgraph"
)

var testReferenceTime = time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)

// buildBranchingGraph creates c1 <- c2 <- c3 on main and c1 <- d2 on a diverged branch.
func buildBranchingGraph(testInstance *testing.T) *commitgraph.MemoryGraph {
	testInstance.Helper()
	graph := commitgraph.NewMemoryGraph()
	require.NoError(testInstance, graph.AddCommit("c1", testReferenceTime.AddDate(0, 0, -3)))
	require.NoError(testInstance, graph.AddCommit("c2", testReferenceTime.AddDate(0, 0, -2), "c1"))
	require.NoError(testInstance, graph.AddCommit("c3", testReferenceTime.AddDate(0, 0, -1), "c2"))
	require.NoError(testInstance, graph.AddCommit("d2", testReferenceTime.AddDate(0, 0, -2), "c1"))
	require.NoError(testInstance, graph.SetReference("main", "c3"))
	return graph
}

func TestMemoryGraphRejectsInvalidCommits(testInstance *testing.T) {
	graph := commitgraph.NewMemoryGraph()
	require.ErrorIs(testInstance, graph.AddCommit(" ", testReferenceTime), commitgraph.ErrCommitHashRequired)
	require.Error(testInstance, graph.AddCommit("c2", testReferenceTime, "missing"))
	require.NoError(testInstance, graph.AddCommit("c1", testReferenceTime))
	require.Error(testInstance, graph.AddCommit("c1", testReferenceTime))
}

func TestMemoryGraphResolve(testInstance *testing.T) {
	graph := buildBranchingGraph(testInstance)

	testCases := []struct {
		name         string
		identifier   string
		expectedHash string
		expectError  bool
	}{
		{name: "hash", identifier: "c2", expectedHash: "c2"},
		{name: "reference", identifier: "main", expectedHash: "c3"},
		{name: "unknown", identifier: "nope", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commit, resolveError := graph.Resolve(context.Background(), testCase.identifier)
			if testCase.expectError {
				var unresolvable commitgraph.UnresolvableCommitError
				require.ErrorAs(testInstance, resolveError, &unresolvable)
				require.Equal(testInstance, testCase.identifier, unresolvable.Identifier)
				return
			}
			require.NoError(testInstance, resolveError)
			require.Equal(testInstance, testCase.expectedHash, commit.Hash)
		})
	}
}

func TestMemoryGraphIsAncestor(testInstance *testing.T) {
	graph := buildBranchingGraph(testInstance)

	testCases := []struct {
		name       string
		ancestor   string
		descendant string
		expected   bool
	}{
		{name: "self", ancestor: "c2", descendant: "c2", expected: true},
		{name: "direct_parent", ancestor: "c2", descendant: "c3", expected: true},
		{name: "root", ancestor: "c1", descendant: "main", expected: true},
		{name: "reversed", ancestor: "c3", descendant: "c1", expected: false},
		{name: "diverged", ancestor: "d2", descendant: "c3", expected: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			isAncestor, ancestryError := graph.IsAncestor(context.Background(), testCase.ancestor, testCase.descendant)
			require.NoError(testInstance, ancestryError)
			require.Equal(testInstance, testCase.expected, isAncestor)
		})
	}
}

func TestMemoryGraphCommitsBetween(testInstance *testing.T) {
	graph := buildBranchingGraph(testInstance)

	testCases := []struct {
		name           string
		from           string
		to             string
		expectedHashes []string
	}{
		{name: "linear", from: "c1", to: "c3", expectedHashes: []string{"c2", "c3"}},
		{name: "same_commit", from: "c3", to: "c3", expectedHashes: []string{}},
		{name: "reversed_range", from: "c3", to: "c1", expectedHashes: []string{}},
		{name: "diverged", from: "d2", to: "c3", expectedHashes: []string{"c2", "c3"}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			commits, listError := graph.CommitsBetween(context.Background(), testCase.from, testCase.to)
			require.NoError(testInstance, listError)
			hashes := make([]string, 0, len(commits))
			for _, commit := range commits {
				hashes = append(hashes, commit.Hash)
			}
			require.Equal(testInstance, testCase.expectedHashes, hashes)
		})
	}
}

func TestMemoryGraphCommitsBetweenOrdersTiesByAncestry(testInstance *testing.T) {
	graph := commitgraph.NewMemoryGraph()
	require.NoError(testInstance, graph.AddCommit("base", testReferenceTime.Add(-time.Hour)))
	require.NoError(testInstance, graph.AddCommit("z-first", testReferenceTime, "base"))
	require.NoError(testInstance, graph.AddCommit("a-second", testReferenceTime, "z-first"))

	commits, listError := graph.CommitsBetween(context.Background(), "base", "a-second")
	require.NoError(testInstance, listError)
	require.Len(testInstance, commits, 2)
	require.Equal(testInstance, "z-first", commits[0].Hash)
}

func TestMemoryGraphDiffEmpty(testInstance *testing.T) {
	graph := buildBranchingGraph(testInstance)

	diffEmpty, diffError := graph.DiffEmpty(context.Background(), "c3")
	require.NoError(testInstance, diffError)
	require.False(testInstance, diffEmpty)

	require.NoError(testInstance, graph.StageCommit("main"))
	require.NoError(testInstance, graph.SetTree("c2", "c3"))

	for _, identifier := range []string{"c3", "c2"} {
		diffEmpty, diffError = graph.DiffEmpty(context.Background(), identifier)
		require.NoError(testInstance, diffError)
		require.True(testInstance, diffEmpty, identifier)
	}

	diffEmpty, diffError = graph.DiffEmpty(context.Background(), "c1")
	require.NoError(testInstance, diffError)
	require.False(testInstance, diffEmpty)

	_, diffError = graph.DiffEmpty(context.Background(), "unknown")
	require.Error(testInstance, diffError)
}

func TestCommittedDateTruncatesToCalendarDate(testInstance *testing.T) {
	commit := commitgraph.Commit{CommittedAt: time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC)}

	committedDate := commit.CommittedDate(time.UTC)

	require.Equal(testInstance, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), committedDate)
}

func TestParseBackend(testInstance *testing.T) {
	testCases := []struct {
		name            string
		rawBackend      string
		expectedBackend commitgraph.Backend
		expectError     bool
	}{
		{name: "default", rawBackend: "", expectedBackend: commitgraph.BackendGit},
		{name: "git", rawBackend: " GIT ", expectedBackend: commitgraph.BackendGit},
		{name: "go_git", rawBackend: "go-git", expectedBackend: commitgraph.BackendGoGit},
		{name: "unknown", rawBackend: "svn", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			backend, parseError := commitgraph.ParseBackend(testCase.rawBackend)
			if testCase.expectError {
				var unsupported commitgraph.UnsupportedBackendError
				require.ErrorAs(testInstance, parseError, &unsupported)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedBackend, backend)
		})
	}
}
