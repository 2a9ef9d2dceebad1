// Package reset removes locally stored state for a factory reset.
package reset

import (
	"os"
	"path/filepath"
	"strings"
)

// Result lists what a factory reset actually touched.
type Result struct {
	Deleted []string
	Skipped []string
}

// knownStateFiles are the only names a reset will remove. Anything else
// found in the state directory is left alone and reported.
var knownStateFiles = []string{
	"config.yaml",
	"ruleset.yaml",
	"profile.json",
	"history.db",
	"audit.log",
}

// FactoryReset deletes the known state files under stateDir, including
// rotated audit backups. It never follows paths outside stateDir.
func FactoryReset(stateDir string) (Result, error) {
	var result Result

	entries, err := os.ReadDir(stateDir)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, err
	}

	for _, entry := range entries {
		name := entry.Name()
		path := filepath.Join(stateDir, name)
		if entry.IsDir() || !removable(name) {
			result.Skipped = append(result.Skipped, path)
			continue
		}
		if err := os.Remove(path); err != nil {
			result.Skipped = append(result.Skipped, path)
			continue
		}
		result.Deleted = append(result.Deleted, path)
	}
	return result, nil
}

func removable(name string) bool {
	for _, known := range knownStateFiles {
		if name == known {
			return true
		}
	}
	// lumberjack backups look like audit-2026-08-29T02-30-00.000.log
	return strings.HasPrefix(name, "audit-") && strings.HasSuffix(name, ".log")
}
