package check

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/scaffoldsync/internal/commitgraph"
	"github.com/temirov/scaffoldsync/internal/execshell"
	"github.com/temirov/scaffoldsync/internal/freshness"
	"github.com/temirov/scaffoldsync/internal/projectstate"
	"github.com/temirov/scaffoldsync/internal/utils"
	flagutils "github.com/temirov/scaffoldsync/internal/utils/flags"
	pathutils "github.com/temirov/scaffoldsync/internal/utils/path"
)

const (
	commandUseConstant                    = "check [project-dir...]"
	commandShortDescriptionConstant       = "Check whether projects are up to date with their template"
	commandLongDescriptionConstant        = "check reads each project's .cruft.json and compares the recorded template commit with the latest commit of a local template repository."
	flagTemplateNameConstant              = "template"
	flagTemplateUsageConstant             = "Path to a local clone of the template repository (defaults to the template recorded in the project state)"
	flagCheckoutNameConstant              = "checkout"
	flagCheckoutUsageConstant             = "Template branch, tag, or commit treated as latest (defaults to the recorded checkout, then HEAD)"
	flagStrictNameConstant                = "strict"
	flagStrictUsageConstant               = "Treat projects ahead of the latest template commit as out of date"
	flagAllowedDelayDaysNameConstant      = "allowed-delay-days"
	flagAllowedDelayDaysUsageConstant     = "Consider a project current while its oldest missing template commit is at most this many days old"
	flagBackendNameConstant               = "backend"
	flagBackendUsageConstant              = "Commit graph backend"
	flagOutputNameConstant                = "output"
	flagOutputUsageConstant               = "Report format"
	commandExecutionErrorTemplateConstant = "check failed: %w"
	configurationFileLogMessageConstant   = "Check configuration resolved"
	logFieldConfigurationFileConstant     = "config_file"
	logFieldProjectDirectoriesConstant    = "project_dirs"
	logFieldStrictConstant                = "strict"
	logFieldBackendConstant               = "backend"
)

// LoggerProvider supplies a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current check configuration.
type ConfigurationProvider func() CommandConfiguration

// CommandBuilder assembles the check command with configurable dependencies.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	GitExecutor           commitgraph.GitExecutor
	FileSystem            afero.Fs
	Clock                 freshness.Clock
	PathExpander          *pathutils.Expander
}

// Build constructs the check command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   commandUseConstant,
		Short: commandShortDescriptionConstant,
		Long:  commandLongDescriptionConstant,
		RunE:  builder.run,
	}

	defaults := DefaultCommandConfiguration()
	var strictValue bool
	var backendValue string
	var outputValue string

	command.Flags().String(flagTemplateNameConstant, "", flagTemplateUsageConstant)
	command.Flags().String(flagCheckoutNameConstant, "", flagCheckoutUsageConstant)
	flagutils.BindToggle(command.Flags(), &strictValue, flagutils.ToggleDefinition{
		Name:         flagStrictNameConstant,
		Usage:        flagStrictUsageConstant,
		DefaultValue: defaults.Strict,
	})
	command.Flags().Int(flagAllowedDelayDaysNameConstant, 0, flagAllowedDelayDaysUsageConstant)
	flagutils.BindChoice(command.Flags(), &backendValue, flagutils.ChoiceDefinition{
		Name:         flagBackendNameConstant,
		Usage:        flagBackendUsageConstant,
		Choices:      []string{string(commitgraph.BackendGit), string(commitgraph.BackendGoGit)},
		DefaultValue: defaults.Backend,
	})
	flagutils.BindChoice(command.Flags(), &outputValue, flagutils.ChoiceDefinition{
		Name:         flagOutputNameConstant,
		Usage:        flagOutputUsageConstant,
		Choices:      OutputFormats(),
		DefaultValue: defaults.Output,
	})

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	logger := builder.resolveLogger()

	options, optionsError := builder.parseOptions(command, arguments)
	if optionsError != nil {
		return optionsError
	}

	configurationFile, _ := utils.ConfigurationFileFromContext(command.Context())
	logger.Debug(configurationFileLogMessageConstant,
		zap.String(logFieldConfigurationFileConstant, configurationFile),
		zap.Strings(logFieldProjectDirectoriesConstant, options.ProjectDirectories),
		zap.Bool(logFieldStrictConstant, options.Policy.Strict),
		zap.String(logFieldBackendConstant, string(options.Backend)),
	)

	gitExecutor, executorError := builder.resolveGitExecutor(logger, options.Backend)
	if executorError != nil {
		return executorError
	}

	service, serviceError := NewService(Dependencies{
		Logger:       logger,
		StateReader:  projectstate.NewStore(builder.FileSystem),
		GraphOpener:  NewGraphOpener(gitExecutor),
		Evaluator:    NewEvaluator(builder.Clock),
		OutputWriter: command.OutOrStdout(),
	})
	if serviceError != nil {
		return serviceError
	}

	runError := service.Run(command.Context(), options)
	if runError == nil {
		return nil
	}
	if errors.Is(runError, ErrProjectOutdated) {
		return runError
	}
	return fmt.Errorf(commandExecutionErrorTemplateConstant, runError)
}

func (builder *CommandBuilder) parseOptions(command *cobra.Command, arguments []string) (Options, error) {
	configuration := builder.resolveConfiguration()
	flagSet := command.Flags()

	if flagSet.Changed(flagTemplateNameConstant) {
		configuration.TemplatePath, _ = flagSet.GetString(flagTemplateNameConstant)
	}
	if flagSet.Changed(flagCheckoutNameConstant) {
		configuration.Checkout, _ = flagSet.GetString(flagCheckoutNameConstant)
	}
	if flagSet.Changed(flagStrictNameConstant) {
		configuration.Strict, _ = flagSet.GetBool(flagStrictNameConstant)
	}
	if flagSet.Changed(flagAllowedDelayDaysNameConstant) {
		allowedDelayDays, _ := flagSet.GetInt(flagAllowedDelayDaysNameConstant)
		configuration.AllowedDelayDays = freshness.AllowedDelay(allowedDelayDays)
	}
	if flagSet.Changed(flagBackendNameConstant) {
		configuration.Backend, _ = flagSet.GetString(flagBackendNameConstant)
	}
	if flagSet.Changed(flagOutputNameConstant) {
		configuration.Output, _ = flagSet.GetString(flagOutputNameConstant)
	}
	if len(arguments) > 0 {
		configuration.ProjectDirectories = arguments
	}
	configuration = configuration.Sanitize()

	backend, backendError := commitgraph.ParseBackend(configuration.Backend)
	if backendError != nil {
		return Options{}, backendError
	}
	outputFormat, outputError := ParseOutputFormat(configuration.Output)
	if outputError != nil {
		return Options{}, outputError
	}
	policy := freshness.Policy{Strict: configuration.Strict, AllowedDelayDays: configuration.AllowedDelayDays}
	if validationError := policy.Validate(); validationError != nil {
		return Options{}, validationError
	}

	expander := builder.resolvePathExpander()
	return Options{
		ProjectDirectories: expander.ExpandAll(configuration.ProjectDirectories),
		TemplatePath:       expander.Expand(configuration.TemplatePath),
		Checkout:           configuration.Checkout,
		Policy:             policy,
		Backend:            backend,
		OutputFormat:       outputFormat,
	}, nil
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}
	return builder.ConfigurationProvider().Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger, backend commitgraph.Backend) (commitgraph.GitExecutor, error) {
	if builder.GitExecutor != nil || backend != commitgraph.BackendGit {
		return builder.GitExecutor, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	if creationError != nil {
		return nil, creationError
	}
	return shellExecutor, nil
}

func (builder *CommandBuilder) resolvePathExpander() *pathutils.Expander {
	if builder.PathExpander != nil {
		return builder.PathExpander
	}
	return pathutils.NewExpander(nil)
}
