package check

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	successLineTemplateConstant         = "SUCCESS: %s is up to date (%s)\n"
	failureLineTemplateConstant         = "FAILURE: %s is out of date\n"
	lagDetailsTemplateConstant          = "  oldest pending template commit %s is %d day(s) old\n"
	errorLineTemplateConstant           = "ERROR: %s: %s\n"
	yamlIndentationConstant             = 2
	renderReportFailureTemplateConstant = "failed to render check report: %w"
)

// RenderReport writes the report in the requested format.
func RenderReport(writer io.Writer, outputFormat OutputFormat, report Report) error {
	switch outputFormat {
	case OutputFormatYAML:
		return renderYAMLReport(writer, report)
	case OutputFormatText, "":
		return renderTextReport(writer, report)
	default:
		return UnsupportedOutputError{Output: string(outputFormat)}
	}
}

func renderTextReport(writer io.Writer, report Report) error {
	for _, project := range report.Projects {
		var writeError error
		switch {
		case len(project.Error) > 0:
			_, writeError = fmt.Fprintf(writer, errorLineTemplateConstant, project.ProjectDirectory, project.Error)
		case project.UpToDate:
			_, writeError = fmt.Fprintf(writer, successLineTemplateConstant, project.ProjectDirectory, project.Reason)
		default:
			_, writeError = fmt.Fprintf(writer, failureLineTemplateConstant, project.ProjectDirectory)
			if writeError == nil && len(project.OldestPendingCommit) > 0 {
				_, writeError = fmt.Fprintf(writer, lagDetailsTemplateConstant, project.OldestPendingCommit, project.DaysBehind)
			}
		}
		if writeError != nil {
			return fmt.Errorf(renderReportFailureTemplateConstant, writeError)
		}
	}
	return nil
}

func renderYAMLReport(writer io.Writer, report Report) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(yamlIndentationConstant)
	if encodeError := encoder.Encode(report); encodeError != nil {
		return fmt.Errorf(renderReportFailureTemplateConstant, encodeError)
	}
	if closeError := encoder.Close(); closeError != nil {
		return fmt.Errorf(renderReportFailureTemplateConstant, closeError)
	}
	return nil
}
