package config

import (
	"os"
	"path/filepath"
)

const appDirName = "hospdir"

// ConfigDirectory returns the directory holding the hospdir config file.
//
// Locations:
//   - Windows: %AppData%\hospdir
//   - macOS: ~/Library/Application Support/hospdir
//   - Unix: $XDG_CONFIG_HOME/hospdir or ~/.config/hospdir
func ConfigDirectory() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), appDirName)
		}
		return filepath.Join(homeDir, ".config", appDirName)
	}
	return filepath.Join(configDir, appDirName)
}

// GetDefaultConfigPath returns the default config file location.
func GetDefaultConfigPath() string {
	return filepath.Join(ConfigDirectory(), "config.csv")
}
