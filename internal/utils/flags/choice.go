package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	choiceTypeConstant                = "string"
	choiceSeparatorConstant           = "|"
	choiceListSeparatorConstant       = ", "
	choicePlaceholderTemplateConstant = "<%s>"
	choiceUsageTemplateConstant       = "`%s` %s"
	choiceInvalidTemplateConstant     = "invalid value %q (expected one of %s)"
)

// ChoiceDefinition describes a string flag restricted to a fixed set of values.
type ChoiceDefinition struct {
	Name         string
	Usage        string
	Choices      []string
	DefaultValue string
}

type choiceValue struct {
	target  *string
	choices []string
}

// BindChoice registers a choice flag writing the lower-cased selection into target.
func BindChoice(flagSet *pflag.FlagSet, target *string, definition ChoiceDefinition) {
	if flagSet == nil || target == nil || len(definition.Name) == 0 {
		return
	}

	*target = definition.DefaultValue
	value := &choiceValue{target: target, choices: normalizeChoices(definition.Choices)}
	flagSet.Var(value, definition.Name, FormatChoiceUsage(definition.DefaultValue, definition.Choices, definition.Usage))
}

// FormatChoiceUsage renders the choices as a placeholder with the default value upper-cased.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	displayed := normalizeChoices(choices)
	for index, choice := range displayed {
		if choice == normalizedDefault {
			displayed[index] = strings.ToUpper(choice)
		}
	}
	placeholder := fmt.Sprintf(choicePlaceholderTemplateConstant, strings.Join(displayed, choiceSeparatorConstant))
	return strings.TrimSpace(fmt.Sprintf(choiceUsageTemplateConstant, placeholder, strings.TrimSpace(description)))
}

func (value *choiceValue) Set(rawValue string) error {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	for _, choice := range value.choices {
		if choice == normalized {
			*value.target = normalized
			return nil
		}
	}
	return fmt.Errorf(choiceInvalidTemplateConstant, rawValue, strings.Join(value.choices, choiceListSeparatorConstant))
}

func (value *choiceValue) String() string {
	if value == nil || value.target == nil {
		return ""
	}
	return *value.target
}

func (value *choiceValue) Type() string {
	return choiceTypeConstant
}

func normalizeChoices(choices []string) []string {
	normalized := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		candidate := strings.ToLower(strings.TrimSpace(choice))
		if len(candidate) == 0 {
			continue
		}
		if _, duplicate := seen[candidate]; duplicate {
			continue
		}
		seen[candidate] = struct{}{}
		normalized = append(normalized, candidate)
	}
	return normalized
}
