package execshell

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildStartedMessageForAncestryCheckNamesBothRevisions(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"merge-base", "--is-ancestor", "abc123", "def456"},
			WorkingDirectory: "/workspace/template",
		},
	}

	message := formatter.BuildStartedMessage(command)

	require.Equal(t, "Checking whether abc123 is an ancestor of def456 in /workspace/template", message)
}

func TestBuildFailureMessageForDiffIndexIncludesExitCode(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments:        []string{"diff-index", "--cached", "--quiet", "abc123", "--"},
			WorkingDirectory: "/workspace/template",
		},
	}

	message := formatter.BuildFailureMessage(command, ExecutionResult{ExitCode: 1})

	require.Equal(t, "Index differs from abc123 in /workspace/template (exit code 1)", message)
}

func TestBuildSuccessMessageForRevListUsesRange(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name: CommandGit,
		Details: CommandDetails{
			Arguments: []string{"rev-list", "--reverse", "--timestamp", "--parents", "abc123..def456"},
		},
	}

	message := formatter.BuildSuccessMessage(command)

	require.Equal(t, "Listed commits abc123..def456 in current directory", message)
}

func TestBuildExecutionFailureMessageFallsBackToGenericLabel(t *testing.T) {
	formatter := CommandMessageFormatter{}
	command := ShellCommand{
		Name:    CommandGit,
		Details: CommandDetails{Arguments: []string{"--version"}, WorkingDirectory: "/tmp"},
	}

	message := formatter.BuildExecutionFailureMessage(command, errors.New("missing binary"))

	require.Equal(t, "git --version (in /tmp) failed: missing binary", message)
}
