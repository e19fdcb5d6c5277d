package tests

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/scaffoldsync/internal/projectstate"
)

const (
	integrationTemplateFileNameConstant = "cookiecutter.json"
	integrationAuthorNameConstant       = "Template Maintainer"
	integrationAuthorEmailConstant      = "maintainer@example.com"
	integrationGitExecutableConstant    = "git"
)

type integrationProject struct {
	templatePath     string
	projectDirectory string
}

// newIntegrationProject commits two template revisions and records the requested one in a fresh project directory.
func newIntegrationProject(testInstance *testing.T, recordedRevision int) integrationProject {
	testInstance.Helper()
	templatePath := testInstance.TempDir()
	repository, initError := git.PlainInit(templatePath, false)
	require.NoError(testInstance, initError)
	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)

	var hashes []string
	for revision, daysAgo := range []int{14, 2} {
		content := fmt.Sprintf(`{"revision": %d}`, revision)
		require.NoError(testInstance, os.WriteFile(filepath.Join(templatePath, integrationTemplateFileNameConstant), []byte(content), 0o644))
		_, addError := worktree.Add(integrationTemplateFileNameConstant)
		require.NoError(testInstance, addError)
		signature := &object.Signature{Name: integrationAuthorNameConstant, Email: integrationAuthorEmailConstant, When: time.Now().AddDate(0, 0, -daysAgo)}
		hash, commitError := worktree.Commit("template revision", &git.CommitOptions{Author: signature, Committer: signature})
		require.NoError(testInstance, commitError)
		hashes = append(hashes, hash.String())
	}

	projectDirectory := testInstance.TempDir()
	require.NoError(testInstance, projectstate.NewStore(nil).Save(filepath.Join(projectDirectory, projectstate.StateFileName), projectstate.State{
		"template": templatePath,
		"commit":   hashes[recordedRevision],
	}))
	return integrationProject{templatePath: templatePath, projectDirectory: projectDirectory}
}

func requireGitExecutable(testInstance *testing.T) {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(integrationGitExecutableConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}
}

func repositoryRoot(testInstance *testing.T) string {
	testInstance.Helper()
	currentWorkingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)
	return filepath.Dir(currentWorkingDirectory)
}

func runIntegrationCommand(testInstance *testing.T, environment []string, timeout time.Duration, arguments []string) (string, error) {
	testInstance.Helper()
	executionContext, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	command := exec.CommandContext(executionContext, "go", append([]string{"run", "."}, arguments...)...)
	command.Dir = repositoryRoot(testInstance)
	command.Env = append(append([]string{}, os.Environ()...), environment...)

	outputBytes, runError := command.CombinedOutput()
	return string(outputBytes), runError
}
