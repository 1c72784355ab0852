package shell

import (
	"os"
	"path/filepath"
	"strings"
)

// Resolve locates an executable named name using pathEnv, a colon-separated
// search path. If name contains a path separator it is returned unchanged,
// without an existence check. Otherwise each non-empty directory of
// pathEnv is tried in order; the first regular, executable match wins.
func Resolve(name, pathEnv string) (string, bool) {
	if strings.ContainsRune(name, os.PathSeparator) {
		return name, true
	}

	for _, dir := range splitPath(pathEnv) {
		if dir == "" {
			continue
		}

		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}

		if isExecutable(candidate, info) {
			return candidate, true
		}
	}

	return "", false
}

// AllExecutables scans every directory on pathEnv and returns the distinct
// set of executable regular-file names found, for feeding a completion
// candidate list.
func AllExecutables(pathEnv string) []string {
	seen := map[string]struct{}{}
	var names []string

	for _, dir := range splitPath(pathEnv) {
		if dir == "" {
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			full := filepath.Join(dir, entry.Name())
			info, err := entry.Info()
			if err != nil || !isExecutable(full, info) {
				continue
			}

			if _, dup := seen[entry.Name()]; dup {
				continue
			}
			seen[entry.Name()] = struct{}{}
			names = append(names, entry.Name())
		}
	}

	return names
}

func splitPath(pathEnv string) []string {
	if pathEnv == "" {
		return nil
	}
	return strings.Split(pathEnv, string(os.PathListSeparator))
}
