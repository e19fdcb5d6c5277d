package flags_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/temirov/scaffoldsync/internal/utils/flags"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name          string
		defaultChoice string
		choices       []string
		description   string
		expected      string
	}{
		{name: "highlights_default", defaultChoice: "text", choices: []string{"text", "yaml"}, description: "Report format", expected: "`<TEXT|yaml>` Report format"},
		{name: "drops_duplicates", defaultChoice: "go-git", choices: []string{"git", " GIT ", "go-git"}, description: "", expected: "`<git|GO-GIT>`"},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expected, flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description))
		})
	}
}

func TestBindChoiceValidatesSelection(testInstance *testing.T) {
	command := &cobra.Command{}
	var selected string
	flags.BindChoice(command.Flags(), &selected, flags.ChoiceDefinition{
		Name:         "output",
		Usage:        "Report format",
		Choices:      []string{"text", "yaml"},
		DefaultValue: "text",
	})
	require.Equal(testInstance, "text", selected)

	require.NoError(testInstance, command.ParseFlags([]string{"--output", "YAML"}))
	require.Equal(testInstance, "yaml", selected)

	require.Error(testInstance, command.Flags().Set("output", "json"))
	require.Equal(testInstance, "yaml", selected)
}
