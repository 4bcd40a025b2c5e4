package fsutil

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	// AppName is the name of the application used in paths
	AppName = "osploader"
)

// GetHomeDir returns the current user's home directory.
func GetHomeDir() (string, error) {
	return homedir.Dir()
}

// ExpandHome expands a leading "~" in path to the user's home directory.
func ExpandHome(path string) (string, error) {
	return homedir.Expand(path)
}

// GetConfigDir returns the platform-specific configuration directory for the application
// On Linux: ~/.config/osploader/
// On macOS: ~/Library/Application Support/osploader/
// On Windows: %AppData%\osploader\
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
