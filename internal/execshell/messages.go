package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	optionPrefixConstant                    = "-"
)

const (
	gitShowSubcommandNameConstant      = "show"
	gitDiffIndexSubcommandNameConstant = "diff-index"
	gitMergeBaseSubcommandNameConstant = "merge-base"
	gitRevListSubcommandNameConstant   = "rev-list"
	gitIsAncestorFlagConstant          = "--is-ancestor"
)

const (
	gitShowStartTemplateConstant                  = "Resolving commit %s in %s"
	gitShowSuccessTemplateConstant                = "Resolved commit %s in %s"
	gitShowFailureTemplateConstant                = "Failed to resolve commit %s in %s (exit code %d%s)"
	gitShowExecutionFailureTemplateConstant       = "Unable to resolve commit %s in %s: %s"
	gitDiffIndexStartTemplateConstant             = "Comparing index with %s in %s"
	gitDiffIndexSuccessTemplateConstant           = "Index matches %s in %s"
	gitDiffIndexFailureTemplateConstant           = "Index differs from %s in %s (exit code %d%s)"
	gitDiffIndexExecutionFailureTemplateConstant  = "Unable to compare index with %s in %s: %s"
	gitIsAncestorStartTemplateConstant            = "Checking whether %s is an ancestor of %s in %s"
	gitIsAncestorSuccessTemplateConstant          = "%s is an ancestor of %s in %s"
	gitIsAncestorFailureTemplateConstant          = "%s is not an ancestor of %s in %s (exit code %d%s)"
	gitIsAncestorExecutionFailureTemplateConstant = "Unable to check ancestry of %s and %s in %s: %s"
	gitRevListStartTemplateConstant               = "Listing commits %s in %s"
	gitRevListSuccessTemplateConstant             = "Listed commits %s in %s"
	gitRevListFailureTemplateConstant             = "Failed to list commits %s in %s (exit code %d%s)"
	gitRevListExecutionFailureTemplateConstant    = "Unable to list commits %s in %s: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if command.Name != CommandGit || len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	workingDirectory := formatter.describeWorkingDirectory(command)
	operands := positionalArguments(command.Details.Arguments[1:])
	standardErrorSuffix := formatter.formatStandardErrorSuffix(result.StandardError)

	switch strings.TrimSpace(command.Details.Arguments[0]) {
	case gitShowSubcommandNameConstant:
		revision := formatter.operandAt(operands, len(operands)-1)
		return formatter.selectTemplate(stage,
			fmt.Sprintf(gitShowStartTemplateConstant, revision, workingDirectory),
			fmt.Sprintf(gitShowSuccessTemplateConstant, revision, workingDirectory),
			fmt.Sprintf(gitShowFailureTemplateConstant, revision, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitShowExecutionFailureTemplateConstant, revision, workingDirectory, formatter.describeFailure(failure)),
		)
	case gitDiffIndexSubcommandNameConstant:
		revision := formatter.operandAt(operands, 0)
		return formatter.selectTemplate(stage,
			fmt.Sprintf(gitDiffIndexStartTemplateConstant, revision, workingDirectory),
			fmt.Sprintf(gitDiffIndexSuccessTemplateConstant, revision, workingDirectory),
			fmt.Sprintf(gitDiffIndexFailureTemplateConstant, revision, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitDiffIndexExecutionFailureTemplateConstant, revision, workingDirectory, formatter.describeFailure(failure)),
		)
	case gitMergeBaseSubcommandNameConstant:
		if !containsArgument(command.Details.Arguments, gitIsAncestorFlagConstant) {
			return formatter.buildGenericMessage(command, result, failure, stage)
		}
		ancestor := formatter.operandAt(operands, 0)
		descendant := formatter.operandAt(operands, 1)
		return formatter.selectTemplate(stage,
			fmt.Sprintf(gitIsAncestorStartTemplateConstant, ancestor, descendant, workingDirectory),
			fmt.Sprintf(gitIsAncestorSuccessTemplateConstant, ancestor, descendant, workingDirectory),
			fmt.Sprintf(gitIsAncestorFailureTemplateConstant, ancestor, descendant, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitIsAncestorExecutionFailureTemplateConstant, ancestor, descendant, workingDirectory, formatter.describeFailure(failure)),
		)
	case gitRevListSubcommandNameConstant:
		revisionRange := formatter.operandAt(operands, len(operands)-1)
		return formatter.selectTemplate(stage,
			fmt.Sprintf(gitRevListStartTemplateConstant, revisionRange, workingDirectory),
			fmt.Sprintf(gitRevListSuccessTemplateConstant, revisionRange, workingDirectory),
			fmt.Sprintf(gitRevListFailureTemplateConstant, revisionRange, workingDirectory, result.ExitCode, standardErrorSuffix),
			fmt.Sprintf(gitRevListExecutionFailureTemplateConstant, revisionRange, workingDirectory, formatter.describeFailure(failure)),
		)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) selectTemplate(stage messageStage, startMessage string, successMessage string, failureMessage string, executionFailureMessage string) string {
	switch stage {
	case messageStageStart:
		return startMessage
	case messageStageSuccess:
		return successMessage
	case messageStageFailure:
		return failureMessage
	case messageStageExecutionFailure:
		return executionFailureMessage
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	return formatter.selectTemplate(stage,
		fmt.Sprintf(genericStartTemplateConstant, commandLabel),
		fmt.Sprintf(genericSuccessTemplateConstant, commandLabel),
		fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError)),
		fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure)),
	)
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return commandLabel
	}
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory))
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) operandAt(operands []string, index int) string {
	if index < 0 || index >= len(operands) {
		return fallbackUnknownValueLabelConstant
	}
	trimmed := strings.TrimSpace(operands[index])
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func positionalArguments(arguments []string) []string {
	positional := make([]string, 0, len(arguments))
	for _, argument := range arguments {
		if strings.HasPrefix(strings.TrimSpace(argument), optionPrefixConstant) {
			continue
		}
		positional = append(positional, argument)
	}
	return positional
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}
