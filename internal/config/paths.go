package config

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
)

const (
	// EnvConfigPath is the environment variable for explicit config path
	EnvConfigPath = "DBUS_EXPLORER_CONFIG"
	// ConfigFileName is the default config file name
	ConfigFileName = "dbus-explorer.yaml"
	// ConfigDirName is the config directory name under XDG
	ConfigDirName = "dbus-explorer"
)

// FindConfigPath searches for config file in priority order:
// 1. $DBUS_EXPLORER_CONFIG (explicit path)
// 2. ./dbus-explorer.yaml (working directory)
// 3. $XDG_CONFIG_HOME/dbus-explorer/config.yaml
// 4. ~/.config/dbus-explorer/config.yaml
// 5. /etc/dbus-explorer/config.yaml
//
// Returns empty string if no config file found
func FindConfigPath() string {
	if path := os.Getenv(EnvConfigPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(ConfigFileName) {
		if abs, err := filepath.Abs(ConfigFileName); err == nil {
			return abs
		}
		return ConfigFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home, err := homedir.Dir(); err == nil && home != "" {
		path := filepath.Join(home, ".config", ConfigDirName, "config.yaml")
		if fileExists(path) {
			return path
		}
	}

	systemPath := filepath.Join("/etc", ConfigDirName, "config.yaml")
	if fileExists(systemPath) {
		return systemPath
	}

	return ""
}

// DefaultConfigPath returns the preferred location for a new config file
// Prefers XDG config home, falls back to working directory
func DefaultConfigPath() string {
	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		return filepath.Join(xdgHome, ConfigDirName, "config.yaml")
	}

	if home, err := homedir.Dir(); err == nil && home != "" {
		return filepath.Join(home, ".config", ConfigDirName, "config.yaml")
	}

	return ConfigFileName
}

// ExpandPath resolves a leading "~" in user supplied paths
func ExpandPath(path string) (string, error) {
	return homedir.Expand(path)
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir(configPath string) error {
	dir := filepath.Dir(configPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
