package check

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/scaffoldsync/internal/commitgraph"
	"github.com/temirov/scaffoldsync/internal/freshness"
	"github.com/temirov/scaffoldsync/internal/projectstate"
)

const (
	defaultBackendConstant            = commitgraph.BackendGit
	defaultProjectDirectoryConstant   = "."
	defaultCheckoutConstant           = "HEAD"
	unsupportedOutputTemplateConstant = "unsupported output format %q (expected one of %s)"
	outputChoiceSeparatorConstant     = ", "
)

// OutputFormat selects how the check report is rendered.
type OutputFormat string

// Supported output formats.
const (
	OutputFormatText OutputFormat = OutputFormat("text")
	OutputFormatYAML OutputFormat = OutputFormat("yaml")
)

// OutputFormats lists every supported output format in display order.
func OutputFormats() []string {
	return []string{string(OutputFormatText), string(OutputFormatYAML)}
}

// UnsupportedOutputError reports an unknown output format.
type UnsupportedOutputError struct {
	Output string
}

// Error describes the unsupported output format.
func (outputError UnsupportedOutputError) Error() string {
	return fmt.Sprintf(unsupportedOutputTemplateConstant, outputError.Output, strings.Join(OutputFormats(), outputChoiceSeparatorConstant))
}

// ParseOutputFormat normalizes a raw output format name.
func ParseOutputFormat(rawOutput string) (OutputFormat, error) {
	normalized := OutputFormat(strings.ToLower(strings.TrimSpace(rawOutput)))
	switch normalized {
	case "", OutputFormatText:
		return OutputFormatText, nil
	case OutputFormatYAML:
		return OutputFormatYAML, nil
	default:
		return "", UnsupportedOutputError{Output: rawOutput}
	}
}

// StateReader loads the recorded template state of a project directory.
type StateReader interface {
	LoadRecord(projectDir string) (projectstate.Record, error)
}

// GraphOpener opens the commit history of a local template repository.
type GraphOpener func(backend commitgraph.Backend, repositoryPath string) (commitgraph.Graph, error)

// FreshnessEvaluator decides whether a recorded commit is current.
type FreshnessEvaluator interface {
	Evaluate(executionContext context.Context, graph commitgraph.Graph, currentCommit string, latestCommit string, policy freshness.Policy) (freshness.Decision, error)
}

// Options configures a check run.
type Options struct {
	ProjectDirectories []string
	TemplatePath       string
	Checkout           string
	Policy             freshness.Policy
	Backend            commitgraph.Backend
	OutputFormat       OutputFormat
}

// ProjectReport captures the outcome for one project directory.
type ProjectReport struct {
	ProjectDirectory    string           `yaml:"project"`
	TemplatePath        string           `yaml:"template,omitempty"`
	CurrentCommit       string           `yaml:"current_commit,omitempty"`
	LatestCommit        string           `yaml:"latest_commit,omitempty"`
	UpToDate            bool             `yaml:"up_to_date"`
	Reason              freshness.Reason `yaml:"reason,omitempty"`
	OldestPendingCommit string           `yaml:"oldest_pending_commit,omitempty"`
	DaysBehind          int              `yaml:"days_behind,omitempty"`
	Error               string           `yaml:"error,omitempty"`
}

// Report aggregates project outcomes in evaluation order.
type Report struct {
	Projects []ProjectReport `yaml:"projects"`
}

// Outdated reports whether any evaluated project is out of date.
func (report Report) Outdated() bool {
	for _, project := range report.Projects {
		if len(project.Error) == 0 && !project.UpToDate {
			return true
		}
	}
	return false
}
