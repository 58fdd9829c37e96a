// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every engine setting read from the environment.
const EnvPrefix = "SELFDISCOVERY"

// Log formats accepted by SELFDISCOVERY_LOG_FORMAT.
const (
	LogFormatText   = "text"
	LogFormatJSON   = "json"
	LogFormatLogfmt = "logfmt"
)

// Settings are knobs for the engine itself. Unlike overrides, they never
// reach discovery providers.
type Settings struct {
	// ConfigDir replaces the per-user configuration directory.
	ConfigDir string `mapstructure:"config_dir"`
	// GlobalConfigDir replaces the system configuration directory.
	GlobalConfigDir string `mapstructure:"global_config_dir"`
	// NoConfigFiles skips every configuration file.
	NoConfigFiles bool `mapstructure:"no_config_files"`
	// LogFormat selects the diagnostic log format.
	LogFormat string `mapstructure:"log_format"`
}

// DefaultSettings returns the settings used when nothing is set.
func DefaultSettings() Settings {
	return Settings{LogFormat: LogFormatText}
}

// LoadSettings reads engine settings from SELFDISCOVERY_* environment
// variables.
func LoadSettings() (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	defaults := DefaultSettings()
	v.SetDefault("config_dir", defaults.ConfigDir)
	v.SetDefault("global_config_dir", defaults.GlobalConfigDir)
	v.SetDefault("no_config_files", defaults.NoConfigFiles)
	v.SetDefault("log_format", defaults.LogFormat)

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return defaults, fmt.Errorf("failed to parse settings: %w", err)
	}

	s.LogFormat = strings.ToLower(s.LogFormat)
	switch s.LogFormat {
	case LogFormatText, LogFormatJSON, LogFormatLogfmt:
	default:
		return defaults, fmt.Errorf("unknown log format %q (want %s, %s or %s)",
			s.LogFormat, LogFormatText, LogFormatJSON, LogFormatLogfmt)
	}

	return s, nil
}
