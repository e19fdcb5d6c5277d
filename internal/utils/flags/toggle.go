package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleTrueConstant                = "true"
	toggleFalseConstant               = "false"
	toggleTypeConstant                = "bool"
	toggleLongPrefixConstant          = "--"
	toggleShortPrefixConstant         = "-"
	toggleAssignmentConstant          = "="
	toggleTerminatorConstant          = "--"
	toggleInvalidTemplateConstant     = "invalid toggle value %q"
	toggleEnabledPlaceholderConstant  = "<YES|no>"
	toggleDisabledPlaceholderConstant = "<yes|NO>"
	toggleUsageTemplateConstant       = "`%s` %s"
)

var toggleLiterals = map[string]bool{
	"true":  true,
	"yes":   true,
	"on":    true,
	"y":     true,
	"1":     true,
	"false": false,
	"no":    false,
	"off":   false,
	"n":     false,
	"0":     false,
}

var registeredToggles = struct {
	sync.RWMutex
	names map[string]struct{}
}{names: map[string]struct{}{}}

// ToggleDefinition describes a boolean flag that also accepts yes/no style literals.
type ToggleDefinition struct {
	Name         string
	Shorthand    string
	Usage        string
	DefaultValue bool
}

type toggleValue struct {
	target *bool
}

// BindToggle registers a toggle flag writing into target. Bare "--name" enables it.
func BindToggle(flagSet *pflag.FlagSet, target *bool, definition ToggleDefinition) {
	if flagSet == nil || target == nil || len(definition.Name) == 0 {
		return
	}

	*target = definition.DefaultValue
	flag := flagSet.VarPF(&toggleValue{target: target}, definition.Name, definition.Shorthand, toggleUsage(definition))
	flag.NoOptDefVal = toggleTrueConstant

	registeredToggles.Lock()
	defer registeredToggles.Unlock()
	registeredToggles.names[toggleLongPrefixConstant+definition.Name] = struct{}{}
	if len(definition.Shorthand) > 0 {
		registeredToggles.names[toggleShortPrefixConstant+definition.Shorthand] = struct{}{}
	}
}

// ParseToggle interprets a toggle literal. An empty value enables the toggle.
func ParseToggle(rawValue string) (bool, error) {
	normalized := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalized) == 0 {
		return true, nil
	}
	parsed, known := toggleLiterals[normalized]
	if !known {
		return false, fmt.Errorf(toggleInvalidTemplateConstant, rawValue)
	}
	return parsed, nil
}

// NormalizeToggleArguments joins a registered toggle with a following literal so "--strict no" parses as "--strict=no".
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == toggleTerminatorConstant {
			return append(normalized, arguments[index:]...)
		}
		if isRegisteredToggle(current) && index+1 < len(arguments) && isToggleLiteral(arguments[index+1]) {
			normalized = append(normalized, current+toggleAssignmentConstant+arguments[index+1])
			index++
			continue
		}
		normalized = append(normalized, current)
	}
	return normalized
}

func (value *toggleValue) Set(rawValue string) error {
	parsed, parseError := ParseToggle(rawValue)
	if parseError != nil {
		return parseError
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil || !*value.target {
		return toggleFalseConstant
	}
	return toggleTrueConstant
}

func (value *toggleValue) Type() string {
	return toggleTypeConstant
}

func toggleUsage(definition ToggleDefinition) string {
	placeholder := toggleDisabledPlaceholderConstant
	if definition.DefaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	return strings.TrimSpace(fmt.Sprintf(toggleUsageTemplateConstant, placeholder, strings.TrimSpace(definition.Usage)))
}

func isRegisteredToggle(argument string) bool {
	if strings.Contains(argument, toggleAssignmentConstant) {
		return false
	}
	registeredToggles.RLock()
	defer registeredToggles.RUnlock()
	_, registered := registeredToggles.names[argument]
	return registered
}

func isToggleLiteral(argument string) bool {
	_, known := toggleLiterals[strings.ToLower(strings.TrimSpace(argument))]
	return known
}
