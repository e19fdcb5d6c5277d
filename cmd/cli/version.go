package cli

import (
	"context"
	"runtime/debug"
	"strings"
)

const (
	developmentVersionConstant = "dev"
	develBuildVersionConstant  = "(devel)"
)

// Version is overridden at build time with -ldflags "-X github.com/temirov/scaffoldsync/cmd/cli.Version=v1.2.3".
var Version = ""

func resolveVersion(context.Context) string {
	if trimmed := strings.TrimSpace(Version); len(trimmed) > 0 {
		return trimmed
	}
	buildInformation, available := debug.ReadBuildInfo()
	if !available {
		return developmentVersionConstant
	}
	moduleVersion := strings.TrimSpace(buildInformation.Main.Version)
	if len(moduleVersion) == 0 || moduleVersion == develBuildVersionConstant {
		return developmentVersionConstant
	}
	return moduleVersion
}
