// Package check implements the check command, which reports whether each
// project generated from a template still matches the template history.
//
// CommandBuilder wires the Cobra command, Service evaluates projects through
// the freshness package, and the report renderers print text or YAML.
package check
