package plugins

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	// ExecutablePrefixConstant prefixes every plugin executable name.
	ExecutablePrefixConstant = "repos-"

	executablePermissionMaskConstant = 0o111
)

// ExecutableName returns the executable that implements pluginName.
func ExecutableName(pluginName string) string {
	return ExecutablePrefixConstant + pluginName
}

// Discover returns the sorted, deduplicated plugin names found in the directories of searchPath,
// a list in PATH format. Unreadable directories and non-executable files are skipped.
func Discover(searchPath string) []string {
	seenNames := make(map[string]struct{})
	for _, directory := range filepath.SplitList(searchPath) {
		if len(strings.TrimSpace(directory)) == 0 {
			continue
		}
		entries, readError := os.ReadDir(directory)
		if readError != nil {
			continue
		}
		for _, entry := range entries {
			pluginName, isPlugin := strings.CutPrefix(entry.Name(), ExecutablePrefixConstant)
			if !isPlugin || len(pluginName) == 0 {
				continue
			}
			if !isExecutableFile(filepath.Join(directory, entry.Name())) {
				continue
			}
			seenNames[pluginName] = struct{}{}
		}
	}

	pluginNames := make([]string, 0, len(seenNames))
	for pluginName := range seenNames {
		pluginNames = append(pluginNames, pluginName)
	}
	sort.Strings(pluginNames)
	return pluginNames
}

// isExecutableFile follows symlinks so linked plugin binaries are listed.
func isExecutableFile(path string) bool {
	fileInfo, statError := os.Stat(path)
	if statError != nil || fileInfo.IsDir() {
		return false
	}
	return fileInfo.Mode().Perm()&executablePermissionMaskConstant != 0
}
