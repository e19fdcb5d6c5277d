package utils

import "context"

type configurationFileContextKey struct{}

// WithConfigurationFile records the configuration file that was loaded for the running command.
func WithConfigurationFile(parentContext context.Context, configurationFilePath string) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, configurationFileContextKey{}, configurationFilePath)
}

// ConfigurationFileFromContext returns the configuration file recorded by WithConfigurationFile.
func ConfigurationFileFromContext(executionContext context.Context) (string, bool) {
	if executionContext == nil {
		return "", false
	}
	configurationFilePath, available := executionContext.Value(configurationFileContextKey{}).(string)
	return configurationFilePath, available
}
