// Package config manages application configuration from various sources.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/simonheimlicher/dprint-vscode/internal/logging"
)

// FolderConfig holds settings scoped to a single workspace folder, keyed by
// the folder's root path in the Folders map.
type FolderConfig struct {
	// ConfigPath is an explicit dprint configuration file for this folder.
	// Relative paths are resolved against the folder root; a leading "~" is
	// expanded to the user's home directory. Takes precedence over any
	// discovered configuration.
	ConfigPath string `json:"configPath"`
}

// Config is the main configuration structure for the application.
type Config struct {
	WorkingDir string `json:"wd,omitempty"`

	// Path overrides the dprint executable. Empty means "dprint" from PATH.
	Path string `json:"path,omitempty"`

	// Verbose forwards the editor service's stderr output to the log.
	Verbose bool `json:"verbose,omitempty"`

	// ConfigPath is an explicit dprint configuration file applied to every
	// folder that has no entry of its own in Folders.
	ConfigPath string `json:"configPath,omitempty"`

	// DisableUserConfig disables the user-level configuration probe and the
	// global catch-all binding entirely.
	DisableUserConfig bool `json:"disableUserConfig,omitempty"`

	// MaxDiscoverDepth bounds the configuration discovery walk per folder.
	MaxDiscoverDepth int `json:"maxDiscoverDepth,omitempty"`

	// Excludes are doublestar glob patterns skipped during discovery, in
	// addition to the built-in ignore directories.
	Excludes []string `json:"excludes,omitempty"`

	Folders map[string]FolderConfig `json:"folders,omitempty"`

	Debug bool `json:"debug,omitempty"`
}

// Application constants
const (
	defaultDiscoverDepth = 6
	defaultExecutable    = "dprint"
	appName              = "dprintd"
)

// Global configuration instance
var cfg *Config

// Reset clears the global configuration, allowing Load to be called again.
// This is intended for use in tests only.
func Reset() {
	cfg = nil
}

// Load initializes the configuration from environment variables and config
// files. If debug is true, debug mode is enabled and log level is set to
// debug. It returns an error if configuration loading fails.
func Load(workingDir string, debug bool) (*Config, error) {
	if cfg != nil {
		return cfg, nil
	}

	cfg = &Config{
		WorkingDir: workingDir,
		Folders:    make(map[string]FolderConfig),
	}

	configureViper()
	setDefaults(debug)

	// Read global config
	if err := readConfig(viper.ReadInConfig()); err != nil {
		return cfg, err
	}

	// Load and merge local config
	mergeLocalConfig(workingDir)

	// Apply configuration to the struct
	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.MaxDiscoverDepth <= 0 {
		cfg.MaxDiscoverDepth = defaultDiscoverDepth
	}

	defaultLevel := slog.LevelInfo
	if cfg.Debug {
		defaultLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(logging.NewWriter(), &slog.HandlerOptions{
		Level: defaultLevel,
	}))
	slog.SetDefault(logger)

	return cfg, nil
}

// configureViper sets up viper's configuration paths and environment variables.
func configureViper() {
	viper.SetConfigName(fmt.Sprintf(".%s", appName))
	viper.SetConfigType("json")
	viper.AddConfigPath("$HOME")
	viper.AddConfigPath(fmt.Sprintf("$XDG_CONFIG_HOME/%s", appName))
	viper.AddConfigPath(fmt.Sprintf("$HOME/.config/%s", appName))
	viper.SetEnvPrefix(strings.ToUpper(appName))
	viper.AutomaticEnv()
}

// setDefaults configures default values for configuration options.
func setDefaults(debug bool) {
	viper.SetDefault("path", "")
	viper.SetDefault("verbose", false)
	viper.SetDefault("disableUserConfig", false)
	viper.SetDefault("maxDiscoverDepth", defaultDiscoverDepth)

	if v := os.Getenv("DPRINTD_DISABLE_USER_CONFIG"); v == "true" || v == "1" {
		viper.Set("disableUserConfig", true)
	}

	if debug {
		viper.SetDefault("debug", true)
	} else {
		viper.SetDefault("debug", false)
	}
}

// readConfig handles the result of reading a configuration file.
func readConfig(err error) error {
	if err == nil {
		return nil
	}

	// It's okay if the config file doesn't exist
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		return nil
	}

	return fmt.Errorf("failed to read config: %w", err)
}

// mergeLocalConfig loads and merges configuration from the local directory.
func mergeLocalConfig(workingDir string) {
	local := viper.New()
	local.SetConfigName(fmt.Sprintf(".%s", appName))
	local.SetConfigType("json")
	local.AddConfigPath(workingDir)

	// Merge local config if it exists
	if err := local.ReadInConfig(); err == nil {
		viper.MergeConfigMap(local.AllSettings())
	}
}

// Get returns the current configuration.
// It's safe to call this function multiple times.
func Get() *Config {
	return cfg
}

// WorkingDirectory returns the current working directory from the configuration.
func WorkingDirectory() string {
	if cfg == nil {
		panic("config not loaded")
	}
	return cfg.WorkingDir
}

// Executable returns the dprint executable to spawn, honoring the path
// override setting.
func (c *Config) Executable() string {
	if c.Path != "" {
		return c.Path
	}
	return defaultExecutable
}

// FolderConfigPath returns the explicit configuration path for a folder root,
// falling back to the top-level configPath setting. Empty when neither is set.
func (c *Config) FolderConfigPath(root string) string {
	if fc, ok := c.Folders[root]; ok && fc.ConfigPath != "" {
		return fc.ConfigPath
	}
	return c.ConfigPath
}
