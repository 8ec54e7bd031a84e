package config

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "taskbuddy"

// DefaultDataDir returns the OS-appropriate default data directory.
//
//   - macOS:   ~/Library/Application Support/taskbuddy
//   - Linux:   $XDG_DATA_HOME/taskbuddy (fallback ~/.local/share/taskbuddy)
//   - Windows: %LOCALAPPDATA%\taskbuddy (fallback %APPDATA%\taskbuddy)
func DefaultDataDir() string {
	return defaultDataDirForOS(runtime.GOOS)
}

func defaultDataDirForOS(goos string) string {
	home, _ := os.UserHomeDir()

	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, appName)
		}
		if dir := os.Getenv("APPDATA"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, appName)
	default: // linux, freebsd, etc.
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return filepath.Join(dir, appName)
		}
		return filepath.Join(home, ".local", "share", appName)
	}
}

// ResolveDataDir picks the data directory: TASKBUDDY_DIR, then a --dir flag
// in args, then the OS default.
func ResolveDataDir(args []string) string {
	if dir := os.Getenv("TASKBUDDY_DIR"); dir != "" {
		return dir
	}
	for i, a := range args {
		if a == "--dir" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return DefaultDataDir()
}
