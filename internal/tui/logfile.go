package tui

import (
	"os"
	"path/filepath"
)

// LogFilePath returns the debug log path for a repository's state directory,
// honoring an ARBOR_LOG_FILE override.
func LogFilePath(stateDir string) string {
	if customPath := os.Getenv("ARBOR_LOG_FILE"); customPath != "" {
		return customPath
	}
	return filepath.Join(stateDir, "log", "arbor.log")
}
