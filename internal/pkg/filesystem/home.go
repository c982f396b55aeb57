// Package filesystem resolves gitflow's per-user paths.
package filesystem

import (
	"os"
	"path/filepath"
	"strings"
)

// AppDirName holds the config file, risk rules and the response cache.
const AppDirName = ".gitflow"

// UserHomeDir returns the current user's home directory.
// If the home directory cannot be determined, it returns "." as a fallback.
func UserHomeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return "."
}

// AppDir returns ~/.gitflow joined with elem.
func AppDir(elem ...string) string {
	return filepath.Join(append([]string{UserHomeDir(), AppDirName}, elem...)...)
}

// ExpandHome replaces a leading "~/" with the home directory. ok is false
// when path is relative and was left for the caller to resolve.
func ExpandHome(path string) (expanded string, ok bool) {
	switch {
	case filepath.IsAbs(path):
		return path, true
	case path == "~":
		return UserHomeDir(), true
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(UserHomeDir(), path[2:]), true
	default:
		return path, false
	}
}
