// Package cli constructs the scaffoldsync command-line interface. It wires the
// Cobra command hierarchy to the layered configuration loader and the zap
// logger, and registers the check command.
package cli
