package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// AppName is the name of the application used in paths
	AppName = "dnfv"

	// FallbackName is used when a remote display name sanitizes to nothing.
	FallbackName = "unnamed_file"
)

// GetConfigDir returns the platform-specific config directory for the
// application.
// On Linux: ~/.config/dnfv/
// On macOS: ~/Library/Application Support/dnfv/
// On Windows: %APPDATA%\dnfv\
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}

// GetDefaultOutputDir returns the default download destination,
// ~/dnfilevault-downloads, matching what the hosted service documents.
func GetDefaultOutputDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, "dnfilevault-downloads"), nil
}

// SanitizeName replaces characters that are invalid in filenames on common
// filesystems with underscores and trims surrounding whitespace. An empty
// result falls back to FallbackName.
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	clean := strings.TrimSpace(b.String())
	if clean == "" {
		return FallbackName
	}
	return clean
}

// EnsureDir creates dir (and parents) if it does not exist.
func EnsureDir(dir string) error {
	return os.MkdirAll(dir, DirModeDefault)
}
