// Package pathutils normalizes user supplied filesystem paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	homeShortcutConstant = "~"
)

// HomeDirectoryProvider resolves the current user's home directory.
type HomeDirectoryProvider func() (string, error)

// Expander resolves home directory shortcuts. The home directory is looked up at most once.
type Expander struct {
	homeDirectoryProvider HomeDirectoryProvider
	lookupOnce            sync.Once
	homeDirectory         string
}

// NewExpander constructs an Expander. A nil provider falls back to os.UserHomeDir.
func NewExpander(provider HomeDirectoryProvider) *Expander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &Expander{homeDirectoryProvider: provider}
}

// Expand trims the path and replaces a leading "~" or "~/" with the home directory.
// Paths such as "~other" are returned unchanged.
func (expander *Expander) Expand(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if expander == nil || !strings.HasPrefix(trimmedPath, homeShortcutConstant) {
		return trimmedPath
	}

	remainder := strings.TrimPrefix(trimmedPath, homeShortcutConstant)
	if len(remainder) > 0 && remainder[0] != '/' && remainder[0] != os.PathSeparator {
		return trimmedPath
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return trimmedPath
	}
	return filepath.Join(homeDirectory, remainder)
}

// ExpandAll expands every path, drops blanks, and removes duplicates while keeping the first occurrence.
func (expander *Expander) ExpandAll(candidatePaths []string) []string {
	expanded := make([]string, 0, len(candidatePaths))
	seen := make(map[string]struct{}, len(candidatePaths))
	for _, candidatePath := range candidatePaths {
		expandedPath := expander.Expand(candidatePath)
		if len(expandedPath) == 0 {
			continue
		}
		cleanedPath := filepath.Clean(expandedPath)
		if _, duplicate := seen[cleanedPath]; duplicate {
			continue
		}
		seen[cleanedPath] = struct{}{}
		expanded = append(expanded, expandedPath)
	}
	return expanded
}

func (expander *Expander) resolveHomeDirectory() string {
	expander.lookupOnce.Do(func() {
		homeDirectory, lookupError := expander.homeDirectoryProvider()
		if lookupError != nil {
			return
		}
		expander.homeDirectory = homeDirectory
	})
	return expander.homeDirectory
}
