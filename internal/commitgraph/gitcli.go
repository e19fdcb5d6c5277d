package commitgraph

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/temirov/scaffoldsync/internal/execshell"
)

const (
	gitShowSubcommandConstant              = "show"
	gitNoPatchFlagConstant                 = "-s"
	gitCommitFormatFlagConstant            = "--format=%H%x09%ct%x09%P"
	gitCommitPeelSuffixConstant            = "^{commit}"
	gitPathSeparatorArgumentConstant       = "--"
	gitDiffIndexSubcommandConstant         = "diff-index"
	gitCachedFlagConstant                  = "--cached"
	gitQuietFlagConstant                   = "--quiet"
	gitMergeBaseSubcommandConstant         = "merge-base"
	gitIsAncestorFlagConstant              = "--is-ancestor"
	gitRevListSubcommandConstant           = "rev-list"
	gitReverseFlagConstant                 = "--reverse"
	gitTimestampFlagConstant               = "--timestamp"
	gitParentsFlagConstant                 = "--parents"
	gitRevisionRangeTemplateConstant       = "%s..%s"
	gitCommitFieldSeparatorConstant        = "\t"
	gitCommitFieldCountConstant            = 3
	gitTerminalPromptEnvironmentConstant   = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant      = "0"
	gitDifferenceExitCodeConstant          = 1
	malformedCommitOutputTemplateConstant  = "unexpected git commit output %q"
	malformedTimestampTemplateConstant     = "unexpected git commit timestamp %q: %w"
	diffIndexFailureTemplateConstant       = "failed to compare index with %s: %w"
	ancestryFailureTemplateConstant        = "failed to check whether %s is an ancestor of %s: %w"
	revisionListingFailureTemplateConstant = "failed to list commits %s: %w"
)

// GitExecutor runs git commands on behalf of GitCLIGraph.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// GitCLIGraph answers Graph queries by running git plumbing commands in a repository.
type GitCLIGraph struct {
	executor       GitExecutor
	repositoryPath string
}

// NewGitCLIGraph constructs a GitCLIGraph for the repository at repositoryPath.
func NewGitCLIGraph(executor GitExecutor, repositoryPath string) (*GitCLIGraph, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	trimmedRepositoryPath := strings.TrimSpace(repositoryPath)
	if len(trimmedRepositoryPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	return &GitCLIGraph{executor: executor, repositoryPath: trimmedRepositoryPath}, nil
}

// Resolve implements Graph using git show.
func (graph *GitCLIGraph) Resolve(executionContext context.Context, identifier string) (Commit, error) {
	executionResult, executionError := graph.executeGit(executionContext,
		gitShowSubcommandConstant,
		gitNoPatchFlagConstant,
		gitCommitFormatFlagConstant,
		strings.TrimSpace(identifier)+gitCommitPeelSuffixConstant,
		gitPathSeparatorArgumentConstant,
	)
	if executionError != nil {
		var failedError execshell.CommandFailedError
		if errors.As(executionError, &failedError) {
			return Commit{}, UnresolvableCommitError{Identifier: identifier, Cause: executionError}
		}
		return Commit{}, executionError
	}
	return parseShowOutput(executionResult.StandardOutput)
}

// DiffEmpty implements Graph using git diff-index against the staged index.
func (graph *GitCLIGraph) DiffEmpty(executionContext context.Context, identifier string) (bool, error) {
	commit, resolveError := graph.Resolve(executionContext, identifier)
	if resolveError != nil {
		return false, resolveError
	}

	_, executionError := graph.executeGit(executionContext,
		gitDiffIndexSubcommandConstant,
		gitCachedFlagConstant,
		gitQuietFlagConstant,
		commit.Hash,
		gitPathSeparatorArgumentConstant,
	)
	differs, interpretError := interpretExitStatus(executionError)
	if interpretError != nil {
		return false, fmt.Errorf(diffIndexFailureTemplateConstant, commit.Hash, interpretError)
	}
	return !differs, nil
}

// IsAncestor implements Graph using git merge-base --is-ancestor.
func (graph *GitCLIGraph) IsAncestor(executionContext context.Context, ancestor string, descendant string) (bool, error) {
	ancestorCommit, ancestorError := graph.Resolve(executionContext, ancestor)
	if ancestorError != nil {
		return false, ancestorError
	}
	descendantCommit, descendantError := graph.Resolve(executionContext, descendant)
	if descendantError != nil {
		return false, descendantError
	}

	_, executionError := graph.executeGit(executionContext,
		gitMergeBaseSubcommandConstant,
		gitIsAncestorFlagConstant,
		ancestorCommit.Hash,
		descendantCommit.Hash,
	)
	notAncestor, interpretError := interpretExitStatus(executionError)
	if interpretError != nil {
		return false, fmt.Errorf(ancestryFailureTemplateConstant, ancestorCommit.Hash, descendantCommit.Hash, interpretError)
	}
	return !notAncestor, nil
}

// CommitsBetween implements Graph using git rev-list --reverse over from..to.
func (graph *GitCLIGraph) CommitsBetween(executionContext context.Context, from string, to string) ([]Commit, error) {
	fromCommit, fromError := graph.Resolve(executionContext, from)
	if fromError != nil {
		return nil, fromError
	}
	toCommit, toError := graph.Resolve(executionContext, to)
	if toError != nil {
		return nil, toError
	}

	revisionRange := fmt.Sprintf(gitRevisionRangeTemplateConstant, fromCommit.Hash, toCommit.Hash)
	executionResult, executionError := graph.executeGit(executionContext,
		gitRevListSubcommandConstant,
		gitReverseFlagConstant,
		gitTimestampFlagConstant,
		gitParentsFlagConstant,
		revisionRange,
	)
	if executionError != nil {
		return nil, fmt.Errorf(revisionListingFailureTemplateConstant, revisionRange, executionError)
	}
	return parseRevListOutput(executionResult.StandardOutput)
}

func (graph *GitCLIGraph) executeGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return graph.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     graph.repositoryPath,
		EnvironmentVariables: map[string]string{gitTerminalPromptEnvironmentConstant: gitTerminalPromptDisabledConstant},
	})
}

// interpretExitStatus maps exit code 1 to a negative answer and any other failure to an error.
func interpretExitStatus(executionError error) (bool, error) {
	if executionError == nil {
		return false, nil
	}
	var failedError execshell.CommandFailedError
	if errors.As(executionError, &failedError) && failedError.Result.ExitCode == gitDifferenceExitCodeConstant {
		return true, nil
	}
	return false, executionError
}

func parseShowOutput(output string) (Commit, error) {
	trimmedOutput := strings.TrimSpace(output)
	fields := strings.SplitN(trimmedOutput, gitCommitFieldSeparatorConstant, gitCommitFieldCountConstant)
	if len(fields) < gitCommitFieldCountConstant-1 || len(fields[0]) == 0 {
		return Commit{}, fmt.Errorf(malformedCommitOutputTemplateConstant, output)
	}

	committedAt, timestampError := parseUnixTimestamp(fields[1])
	if timestampError != nil {
		return Commit{}, timestampError
	}

	parents := []string{}
	if len(fields) == gitCommitFieldCountConstant {
		parents = strings.Fields(fields[2])
	}
	return Commit{Hash: fields[0], CommittedAt: committedAt, Parents: parents}, nil
}

// parseRevListOutput reads "<timestamp> <hash> <parents...>" lines produced by rev-list --timestamp --parents.
func parseRevListOutput(output string) ([]Commit, error) {
	commits := make([]Commit, 0)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf(malformedCommitOutputTemplateConstant, line)
		}
		committedAt, timestampError := parseUnixTimestamp(fields[0])
		if timestampError != nil {
			return nil, timestampError
		}
		commits = append(commits, Commit{Hash: fields[1], CommittedAt: committedAt, Parents: append([]string{}, fields[2:]...)})
	}
	return commits, nil
}

func parseUnixTimestamp(rawTimestamp string) (time.Time, error) {
	seconds, parseError := strconv.ParseInt(strings.TrimSpace(rawTimestamp), 10, 64)
	if parseError != nil {
		return time.Time{}, fmt.Errorf(malformedTimestampTemplateConstant, rawTimestamp, parseError)
	}
	return time.Unix(seconds, 0), nil
}
