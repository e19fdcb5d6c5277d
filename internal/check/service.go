package check

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/temirov/scaffoldsync/internal/commitgraph"
	"github.com/temirov/scaffoldsync/internal/freshness"
	"github.com/temirov/scaffoldsync/internal/gitrepo"
)

const (
	stateReaderMissingMessageConstant    = "project state reader not configured"
	graphOpenerMissingMessageConstant    = "commit graph opener not configured"
	evaluatorMissingMessageConstant      = "freshness evaluator not configured"
	templateRequiredMessageConstant      = "template repository path is required; supply --template or record a local template path"
	projectOutdatedMessageConstant       = "one or more projects are out of date"
	projectCheckFailureTemplateConstant  = "%s: %w"
	remoteTemplateTemplateConstant       = "template %s is the remote repository %s; clone it and pass --template with the local path"
	templateReferenceTemplateConstant    = "invalid template reference: %w"
	openTemplateFailureTemplateConstant  = "failed to open template repository %s: %w"
	resolveLatestFailureTemplateConstant = "failed to resolve template checkout %s: %w"
	resolveHeadFailureTemplateConstant   = "failed to resolve checked out template commit: %w"
	checkoutMismatchTemplateConstant     = "template clone %s is not checked out at %s (expected %s, found %s)"
	evaluationFailureTemplateConstant    = "failed to evaluate project freshness: %w"
	projectEvaluatedLogMessageConstant   = "Project freshness evaluated"
	projectCheckFailedLogMessageConstant = "Project freshness check failed"
	logFieldProjectConstant              = "project"
	logFieldTemplateConstant             = "template"
	logFieldCurrentCommitConstant        = "current_commit"
	logFieldLatestCommitConstant         = "latest_commit"
	logFieldUpToDateConstant             = "up_to_date"
	logFieldReasonConstant               = "reason"
	logFieldDaysBehindConstant           = "days_behind"
)

// ErrStateReaderNotConfigured indicates the project state dependency was missing.
var ErrStateReaderNotConfigured = errors.New(stateReaderMissingMessageConstant)

// ErrGraphOpenerNotConfigured indicates the commit graph dependency was missing.
var ErrGraphOpenerNotConfigured = errors.New(graphOpenerMissingMessageConstant)

// ErrEvaluatorNotConfigured indicates the freshness evaluator dependency was missing.
var ErrEvaluatorNotConfigured = errors.New(evaluatorMissingMessageConstant)

// ErrTemplateRepositoryRequired indicates neither options nor project state named a template repository.
var ErrTemplateRepositoryRequired = errors.New(templateRequiredMessageConstant)

// ErrProjectOutdated indicates at least one project is behind its template.
var ErrProjectOutdated = errors.New(projectOutdatedMessageConstant)

// RemoteTemplateError indicates the template reference names a remote repository that has no local clone.
type RemoteTemplateError struct {
	Template string
	Remote   gitrepo.RemoteURL
}

// Error describes the remote template.
func (templateError RemoteTemplateError) Error() string {
	return fmt.Sprintf(remoteTemplateTemplateConstant, templateError.Template, templateError.Remote)
}

// Unwrap reports the missing local template repository.
func (templateError RemoteTemplateError) Unwrap() error {
	return ErrTemplateRepositoryRequired
}

// CheckoutMismatchError indicates the template clone has a different commit checked out than the requested checkout.
// The index of the clone must match the latest template tree for the no-changes comparison to hold.
type CheckoutMismatchError struct {
	TemplatePath     string
	Checkout         string
	ExpectedCommit   string
	CheckedOutCommit string
}

// Error describes the mismatching checkout.
func (mismatchError CheckoutMismatchError) Error() string {
	return fmt.Sprintf(checkoutMismatchTemplateConstant, mismatchError.TemplatePath, mismatchError.Checkout, mismatchError.ExpectedCommit, mismatchError.CheckedOutCommit)
}

// Dependencies enumerates external collaborators required by the check service.
type Dependencies struct {
	Logger       *zap.Logger
	StateReader  StateReader
	GraphOpener  GraphOpener
	Evaluator    FreshnessEvaluator
	OutputWriter io.Writer
}

// Service evaluates project freshness and renders the resulting report.
type Service struct {
	logger       *zap.Logger
	stateReader  StateReader
	graphOpener  GraphOpener
	evaluator    FreshnessEvaluator
	outputWriter io.Writer
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies Dependencies) (*Service, error) {
	if dependencies.StateReader == nil {
		return nil, ErrStateReaderNotConfigured
	}
	if dependencies.GraphOpener == nil {
		return nil, ErrGraphOpenerNotConfigured
	}
	if dependencies.Evaluator == nil {
		return nil, ErrEvaluatorNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	outputWriter := dependencies.OutputWriter
	if outputWriter == nil {
		outputWriter = io.Discard
	}

	return &Service{
		logger:       logger,
		stateReader:  dependencies.StateReader,
		graphOpener:  dependencies.GraphOpener,
		evaluator:    dependencies.Evaluator,
		outputWriter: outputWriter,
	}, nil
}

// Run checks every project, writes the report, and returns ErrProjectOutdated when any project is behind.
// Failures of individual projects are combined and returned after the report is written.
func (service *Service) Run(executionContext context.Context, options Options) error {
	report, checkError := service.Check(executionContext, options)

	if renderError := RenderReport(service.outputWriter, options.OutputFormat, report); renderError != nil {
		return multierr.Append(checkError, renderError)
	}
	if checkError != nil {
		return checkError
	}
	if report.Outdated() {
		return ErrProjectOutdated
	}
	return nil
}

// Check evaluates every project directory in order. A failing project is recorded in the report and does not stop the run.
func (service *Service) Check(executionContext context.Context, options Options) (Report, error) {
	projectDirectories := options.ProjectDirectories
	if len(projectDirectories) == 0 {
		projectDirectories = []string{defaultProjectDirectoryConstant}
	}

	report := Report{Projects: make([]ProjectReport, 0, len(projectDirectories))}
	var combinedError error
	for _, projectDirectory := range projectDirectories {
		projectReport, projectError := service.checkProject(executionContext, projectDirectory, options)
		if projectError != nil {
			projectReport.Error = projectError.Error()
			combinedError = multierr.Append(combinedError, fmt.Errorf(projectCheckFailureTemplateConstant, projectDirectory, projectError))
			service.logger.Warn(projectCheckFailedLogMessageConstant,
				zap.String(logFieldProjectConstant, projectDirectory),
				zap.Error(projectError),
			)
		} else {
			service.logger.Info(projectEvaluatedLogMessageConstant,
				zap.String(logFieldProjectConstant, projectDirectory),
				zap.String(logFieldTemplateConstant, projectReport.TemplatePath),
				zap.String(logFieldCurrentCommitConstant, projectReport.CurrentCommit),
				zap.String(logFieldLatestCommitConstant, projectReport.LatestCommit),
				zap.Bool(logFieldUpToDateConstant, projectReport.UpToDate),
				zap.String(logFieldReasonConstant, string(projectReport.Reason)),
				zap.Int(logFieldDaysBehindConstant, projectReport.DaysBehind),
			)
		}
		report.Projects = append(report.Projects, projectReport)
	}

	return report, combinedError
}

func (service *Service) checkProject(executionContext context.Context, projectDirectory string, options Options) (ProjectReport, error) {
	projectReport := ProjectReport{ProjectDirectory: projectDirectory}

	record, recordError := service.stateReader.LoadRecord(projectDirectory)
	if recordError != nil {
		return projectReport, recordError
	}
	projectReport.CurrentCommit = record.Commit

	templateReference := firstNonEmpty(options.TemplatePath, record.Template)
	if len(templateReference) == 0 {
		return projectReport, ErrTemplateRepositoryRequired
	}
	templatePath, templateError := resolveTemplatePath(templateReference)
	if templateError != nil {
		return projectReport, templateError
	}
	projectReport.TemplatePath = templatePath

	graph, openError := service.graphOpener(options.Backend, templatePath)
	if openError != nil {
		return projectReport, fmt.Errorf(openTemplateFailureTemplateConstant, templatePath, openError)
	}

	checkout := firstNonEmpty(options.Checkout, record.Checkout, defaultCheckoutConstant)
	latestCommit, resolveError := graph.Resolve(executionContext, checkout)
	if resolveError != nil {
		return projectReport, fmt.Errorf(resolveLatestFailureTemplateConstant, checkout, resolveError)
	}
	projectReport.LatestCommit = latestCommit.Hash

	checkedOutCommit, headError := graph.Resolve(executionContext, defaultCheckoutConstant)
	if headError != nil {
		return projectReport, fmt.Errorf(resolveHeadFailureTemplateConstant, headError)
	}
	if checkedOutCommit.Hash != latestCommit.Hash {
		return projectReport, CheckoutMismatchError{
			TemplatePath:     templatePath,
			Checkout:         checkout,
			ExpectedCommit:   latestCommit.Hash,
			CheckedOutCommit: checkedOutCommit.Hash,
		}
	}

	decision, evaluationError := service.evaluator.Evaluate(executionContext, graph, record.Commit, latestCommit.Hash, options.Policy)
	if evaluationError != nil {
		return projectReport, fmt.Errorf(evaluationFailureTemplateConstant, evaluationError)
	}

	projectReport.UpToDate = decision.UpToDate
	projectReport.Reason = decision.Reason
	projectReport.DaysBehind = decision.DaysBehind
	if decision.OldestPendingCommit != nil {
		projectReport.OldestPendingCommit = decision.OldestPendingCommit.Hash
	}
	return projectReport, nil
}

func resolveTemplatePath(templateReference string) (string, error) {
	reference, parseError := gitrepo.ParseReference(templateReference)
	if parseError != nil {
		return "", fmt.Errorf(templateReferenceTemplateConstant, parseError)
	}
	if reference.Kind == gitrepo.ReferenceKindRemote {
		return "", RemoteTemplateError{Template: templateReference, Remote: reference.Remote}
	}
	return reference.LocalPath, nil
}

// NewGraphOpener returns a GraphOpener backed by commitgraph.Open.
func NewGraphOpener(executor commitgraph.GitExecutor) GraphOpener {
	return func(backend commitgraph.Backend, repositoryPath string) (commitgraph.Graph, error) {
		return commitgraph.Open(backend, repositoryPath, executor)
	}
}

// NewEvaluator adapts freshness.Evaluator to FreshnessEvaluator.
func NewEvaluator(clock freshness.Clock) FreshnessEvaluator {
	return freshness.NewEvaluator(clock)
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) > 0 {
			return trimmed
		}
	}
	return ""
}
