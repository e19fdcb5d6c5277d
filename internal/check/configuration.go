package check

import "strings"

// CommandConfiguration captures persistent settings for the check command.
type CommandConfiguration struct {
	ProjectDirectories []string `mapstructure:"project_dirs"`
	TemplatePath       string   `mapstructure:"template"`
	Checkout           string   `mapstructure:"checkout"`
	Strict             bool     `mapstructure:"strict"`
	AllowedDelayDays   *int     `mapstructure:"allowed_delay_days"`
	Backend            string   `mapstructure:"backend"`
	Output             string   `mapstructure:"output"`
}

// DefaultCommandConfiguration returns baseline configuration values for the check command.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		ProjectDirectories: nil,
		TemplatePath:       "",
		Checkout:           "",
		Strict:             true,
		AllowedDelayDays:   nil,
		Backend:            string(defaultBackendConstant),
		Output:             string(OutputFormatText),
	}
}

// Sanitize trims whitespace and applies defaults to unset configuration values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration

	sanitized.ProjectDirectories = sanitizeDirectories(configuration.ProjectDirectories)
	sanitized.TemplatePath = strings.TrimSpace(configuration.TemplatePath)
	sanitized.Checkout = strings.TrimSpace(configuration.Checkout)
	sanitized.Backend = strings.ToLower(strings.TrimSpace(configuration.Backend))
	if len(sanitized.Backend) == 0 {
		sanitized.Backend = string(defaultBackendConstant)
	}
	sanitized.Output = strings.ToLower(strings.TrimSpace(configuration.Output))
	if len(sanitized.Output) == 0 {
		sanitized.Output = string(OutputFormatText)
	}
	if configuration.AllowedDelayDays != nil {
		allowedDelayDays := *configuration.AllowedDelayDays
		sanitized.AllowedDelayDays = &allowedDelayDays
	}

	return sanitized
}

func sanitizeDirectories(raw []string) []string {
	sanitized := make([]string, 0, len(raw))
	for _, candidate := range raw {
		trimmed := strings.TrimSpace(candidate)
		if len(trimmed) == 0 {
			continue
		}
		sanitized = append(sanitized, trimmed)
	}
	return sanitized
}
