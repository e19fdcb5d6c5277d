// Package utils holds the ambient plumbing shared by scaffoldsync commands:
// layered Viper configuration, zap logger construction and flushing, and
// command context values.
package utils
