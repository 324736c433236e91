// Package config loads explorer-exclude configuration from global and local YAML files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/temirov/explorer-exclude/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
	HomeDirectory    string
}

// ApplicationConfiguration holds explorer-exclude defaults.
type ApplicationConfiguration struct {
	Folders  []string            `mapstructure:"folders"`
	Patterns []string            `mapstructure:"patterns"`
	Interval time.Duration       `mapstructure:"interval"`
	Watch    *bool               `mapstructure:"watch"`
	Editor   EditorConfiguration `mapstructure:"editor"`
	Log      LogConfiguration    `mapstructure:"log"`
}

// EditorConfiguration selects the editor whose user settings hold the pattern list.
type EditorConfiguration struct {
	Edition      string `mapstructure:"edition"`
	UserSettings string `mapstructure:"user_settings"`
}

// LogConfiguration controls logging verbosity.
type LogConfiguration struct {
	Level string `mapstructure:"level"`
}

// WatchEnabled reports whether folder watching is switched on.
func (config ApplicationConfiguration) WatchEnabled() bool {
	return config.Watch != nil && *config.Watch
}

// LoadApplicationConfiguration loads configuration from global and local files.
// Relative folders are resolved against the directory of the file that lists them.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if globalPath := globalConfigPath(options.HomeDirectory); globalPath != "" {
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath := ResolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Folders = utils.DeduplicateStrings(merged.Folders)
	merged.Patterns = utils.DeduplicateStrings(merged.Patterns)

	return merged, nil
}

// ResolveLocalConfigPath returns the local configuration file for the working directory,
// or the explicit path resolved against it.
func ResolveLocalConfigPath(workingDirectory, explicitPath string) string {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) || workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return explicitPath
			}
			return absolute
		}
		return filepath.Join(workingDirectory, explicitPath)
	}
	if workingDirectory == "" {
		return ""
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName)
}

func globalConfigPath(homeDirectory string) string {
	if homeDirectory == "" {
		resolvedHome, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		homeDirectory = resolvedHome
	}
	return filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	configDirectory := filepath.Dir(path)
	for folderIndex, folder := range config.Folders {
		if folder != "" && !filepath.IsAbs(folder) {
			config.Folders[folderIndex] = filepath.Join(configDirectory, folder)
		}
	}
	return config, nil
}

// WatchConfigurationFile reloads the configuration whenever the file at path is written
// and passes the result to onChange. It returns an error when the file cannot be read.
func WatchConfigurationFile(path string, options LoadOptions, onChange func(ApplicationConfiguration, error)) error {
	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	reader.OnConfigChange(func(event fsnotify.Event) {
		if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
			return
		}
		onChange(LoadApplicationConfiguration(options))
	})
	reader.WatchConfig()
	return nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if len(override.Folders) > 0 {
		result.Folders = append([]string{}, override.Folders...)
	}
	if len(override.Patterns) > 0 {
		result.Patterns = append([]string{}, override.Patterns...)
	}
	if override.Interval > 0 {
		result.Interval = override.Interval
	}
	if override.Watch != nil {
		result.Watch = cloneBool(override.Watch)
	}
	result.Editor = result.Editor.merge(override.Editor)
	result.Log = result.Log.merge(override.Log)
	return result
}

func (config EditorConfiguration) merge(override EditorConfiguration) EditorConfiguration {
	result := config
	if override.Edition != "" {
		result.Edition = override.Edition
	}
	if override.UserSettings != "" {
		result.UserSettings = override.UserSettings
	}
	return result
}

func (config LogConfiguration) merge(override LogConfiguration) LogConfiguration {
	result := config
	if override.Level != "" {
		result.Level = override.Level
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
