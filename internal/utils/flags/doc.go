// Package flags provides pflag values shared by scaffoldsync commands: toggles
// that accept yes/no literals and flags restricted to a fixed set of choices.
package flags
