// Package paths resolves where rigkit keeps its per-project state.
package paths

import (
	"os"
	"path/filepath"
	"strings"
)

// DirName is the per-project state directory.
const DirName = ".rigkit"

// ResolveProjectDir resolves the .rigkit directory from user input.
//
// Input normalization:
//   - "/path/to/project" -> "/path/to/project/.rigkit"
//   - "/path/to/project/.rigkit" -> "/path/to/project/.rigkit"
//   - "" -> "./.rigkit"
//
// A .rigkit/redirect file holding a relative path is followed, so several
// checkouts of one project can share a history database.
func ResolveProjectDir(path string) string {
	if path == "" {
		path = "."
	}
	path = filepath.Clean(path)
	if filepath.Base(path) != DirName {
		path = filepath.Join(path, DirName)
	}
	return followRedirect(path)
}

func followRedirect(dir string) string {
	content, err := os.ReadFile(filepath.Join(dir, "redirect")) //nolint:gosec // redirect path is within the project dir
	if err != nil {
		return dir
	}
	target := strings.TrimSpace(string(content))
	if target == "" {
		return dir
	}
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Clean(filepath.Join(dir, target))
}

// ConfigFile is the project config inside dir.
func ConfigFile(dir string) string { return filepath.Join(dir, "config.yaml") }

// HistoryDB is the build history database inside dir.
func HistoryDB(dir string) string { return filepath.Join(dir, "history.db") }

// TracesFile is the default JSONL trace output inside dir.
func TracesFile(dir string) string { return filepath.Join(dir, "traces", "traces.jsonl") }

// UserConfigFile returns ~/.config/rigkit/config.yaml, or "" when the home
// directory is unknown.
func UserConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "rigkit", "config.yaml")
}
