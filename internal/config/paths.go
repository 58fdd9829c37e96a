// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	// AppName is the application name used in configuration directories.
	AppName = "selfdiscovery"
	// FileName is the configuration file looked up in every location.
	FileName = "selfdiscovery.config"
)

// GlobalDir returns the system-wide configuration directory.
func GlobalDir(settings Settings) string {
	if settings.GlobalConfigDir != "" {
		return settings.GlobalConfigDir
	}
	if runtime.GOOS == "windows" {
		base := os.Getenv("PROGRAMDATA")
		if base == "" {
			base = `C:\ProgramData`
		}
		return filepath.Join(base, AppName)
	}
	return filepath.Join("/etc", AppName)
}

// UserDir returns the per-user configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
func UserDir(settings Settings) (string, error) {
	if settings.ConfigDir != "" {
		return settings.ConfigDir, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// FilePaths returns the configuration files to load, in increasing
// precedence. Locations that cannot be determined are left out.
func FilePaths(settings Settings) []string {
	if settings.NoConfigFiles {
		return nil
	}

	paths := []string{filepath.Join(GlobalDir(settings), FileName)}

	if dir, err := UserDir(settings); err == nil {
		paths = append(paths, filepath.Join(dir, FileName))
	}

	if wd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(wd, FileName))
	} else {
		paths = append(paths, FileName)
	}

	return paths
}
