package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.ddi.yaml",               // Project-specific config (highest priority)
	"~/.config/ddi/config.yaml", // User config
	"/etc/ddi/config.yaml",      // System config (lowest priority)
}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. Environment variables
// 3. ./.ddi.yaml
// 4. ~/.config/ddi/config.yaml
// 5. /etc/ddi/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Load from standard paths in reverse priority order (lowest to highest)
		paths := make([]string, len(l.configPaths))
		copy(paths, l.configPaths)
		for i := len(paths)/2 - 1; i >= 0; i-- {
			opp := len(paths) - 1 - i
			paths[i], paths[opp] = paths[opp], paths[i]
		}

		for _, path := range paths {
			expandedPath := expandPath(path)
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile loads configuration from a YAML file and merges it with existing config
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() before reaching here
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	var fileConfig Config
	if err := yaml.Unmarshal(data, &fileConfig); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	mergeConfigs(config, &fileConfig)
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		"DDI_IMAGING_BLOCK_SIZE":    func(v string) error { config.Imaging.BlockSize = v; return nil },
		"DDI_IMAGING_EXTRA_OPTIONS": func(v string) error { config.Imaging.ExtraOptions = v; return nil },
		"DDI_IMAGING_IMAGE_DIR":     func(v string) error { config.Imaging.ImageDir = v; return nil },

		"DDI_UI_DISPLAY_MODE":    func(v string) error { config.UI.DisplayMode = v; return nil },
		"DDI_UI_LOG_PANE_HEIGHT": func(v string) error { return parseInt(v, &config.UI.LogPaneHeight) },
		"DDI_UI_ASCII_ONLY":      func(v string) error { return parseBool(v, &config.UI.ASCIIOnly) },

		"DDI_LOGGING_FILE":    func(v string) error { config.Logging.File = v; return nil },
		"DDI_LOGGING_VERBOSE": func(v string) error { return parseBool(v, &config.Logging.Verbose) },

		"DDI_REMOTE_SSH_PORT": func(v string) error { return parseInt(v, &config.Remote.SSHPort) },
	}

	for envVar, setter := range envMappings {
		if value := os.Getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}
	return nil
}

// mergeConfigs merges non-zero fields from src into dst
func mergeConfigs(dst, src *Config) {
	if src.Version != "" {
		dst.Version = src.Version
	}
	if src.Imaging.BlockSize != "" {
		dst.Imaging.BlockSize = src.Imaging.BlockSize
	}
	if src.Imaging.ExtraOptions != "" {
		dst.Imaging.ExtraOptions = src.Imaging.ExtraOptions
	}
	if src.Imaging.ImageDir != "" {
		dst.Imaging.ImageDir = src.Imaging.ImageDir
	}
	if src.UI.DisplayMode != "" {
		dst.UI.DisplayMode = src.UI.DisplayMode
	}
	if src.UI.LogPaneHeight != 0 {
		dst.UI.LogPaneHeight = src.UI.LogPaneHeight
	}
	if src.UI.MinWidth != 0 {
		dst.UI.MinWidth = src.UI.MinWidth
	}
	if src.UI.MinHeight != 0 {
		dst.UI.MinHeight = src.UI.MinHeight
	}
	if src.UI.ASCIIOnly {
		dst.UI.ASCIIOnly = true
	}
	if src.Logging.File != "" {
		dst.Logging.File = src.Logging.File
	}
	if src.Logging.Verbose {
		dst.Logging.Verbose = true
	}
	if src.Remote.SSHPort != 0 {
		dst.Remote.SSHPort = src.Remote.SSHPort
	}
	if src.Remote.ConnectTimeoutMS != 0 {
		dst.Remote.ConnectTimeoutMS = src.Remote.ConnectTimeoutMS
	}
}

// validateConfigPath rejects paths outside the current tree and home
func validateConfigPath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}
	if strings.Contains(path, "..") {
		return fmt.Errorf("path traversal not allowed: %s", path)
	}
	return nil
}

// expandPath expands a leading ~ to the user's home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
