// Package paths resolves the desktop application's configuration locations.
//
// The document lives in the platform config directory: Library/Application
// Support/Claude on macOS, %APPDATA%\Claude on Windows, ~/.config/claude
// elsewhere. MCPKIT_CONFIG_DIR overrides resolution for tests and
// non-standard installs.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// ConfigFileName is the desktop application's configuration document.
	ConfigFileName = "claude_desktop_config.json"
	// BackupDirName is the snapshot directory inside the config directory.
	BackupDirName = "backups"
	// ProfileStateFileName tracks the active profile and profile metadata.
	ProfileStateFileName = "profiles.json"
	// EnvConfigDir overrides the resolved configuration directory when set.
	EnvConfigDir = "MCPKIT_CONFIG_DIR"
)

func appDirName() string {
	switch runtime.GOOS {
	case "darwin", "windows":
		return "Claude"
	default:
		return "claude"
	}
}

// ConfigDir returns the desktop application's configuration directory for
// the current platform. The directory is not created.
func ConfigDir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(base, appDirName()), nil
}

// ConfigFile returns the full path of the configuration document.
func ConfigFile() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// BackupDir returns the snapshot directory. The directory is not created.
func BackupDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, BackupDirName), nil
}

// ProfileState returns the path of the profile registry file.
func ProfileState() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ProfileStateFileName), nil
}

// ProfileFile returns the path where a named profile's document is parked
// while another profile is active.
func ProfileFile(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "profile_"+name+".json"), nil
}
