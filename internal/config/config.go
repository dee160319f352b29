// Package config provides configuration management for the rendercomments
// tool using Viper for flexible loading from files, environment variables,
// and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with the RENDERCOMMENTS_ prefix, and validation. It manages the
// two preprocessing toggles (debug and enabled, ANDed to gate the
// transform), template search directories, output settings, the preview
// server, and watch-mode options.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	// Debug mirrors the host framework's DEBUG setting. Comments are only
	// rewritten when both Debug and Enabled hold.
	Debug bool `yaml:"debug"`
	// Enabled is the feature toggle, on by default.
	Enabled bool `yaml:"enabled"`

	Templates TemplatesConfig `yaml:"templates"`
	Output    OutputConfig    `yaml:"output"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`

	LogLevel string `yaml:"log_level"`

	TargetFiles []string `yaml:"-"` // CLI arguments, not from config file
}

type TemplatesConfig struct {
	Dirs            []string `yaml:"dirs"`
	Extensions      []string `yaml:"extensions"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Enabled defaults to true when the key is absent entirely
	if viper.IsSet("enabled") {
		config.Enabled = viper.GetBool("enabled")
	} else {
		config.Enabled = true
	}
	if viper.IsSet("debug") {
		config.Debug = viper.GetBool("debug")
	}

	// Handle template dirs set via viper (workaround for viper slice handling)
	if viper.IsSet("templates.dirs") && len(config.Templates.Dirs) == 0 {
		if dirs := viper.GetStringSlice("templates.dirs"); len(dirs) > 0 {
			config.Templates.Dirs = dirs
		}
	}
	if viper.IsSet("templates.exclude_patterns") && len(config.Templates.ExcludePatterns) == 0 {
		if patterns := viper.GetStringSlice("templates.exclude_patterns"); len(patterns) > 0 {
			config.Templates.ExcludePatterns = patterns
		}
	}

	// Keys with underscores do not unmarshal by field name
	if viper.IsSet("log_level") {
		config.LogLevel = viper.GetString("log_level")
	}
	if viper.IsSet("watch.debounce_ms") {
		config.Watch.DebounceMS = viper.GetInt("watch.debounce_ms")
	}
	if viper.IsSet("server.allowed_origins") {
		config.Server.AllowedOrigins = viper.GetStringSlice("server.allowed_origins")
	}

	// Apply defaults
	if len(config.Templates.Dirs) == 0 {
		config.Templates.Dirs = []string{"./templates"}
	}
	if len(config.Templates.Extensions) == 0 {
		config.Templates.Extensions = []string{".html", ".txt"}
	}
	if len(config.Templates.ExcludePatterns) == 0 {
		config.Templates.ExcludePatterns = []string{"*.bak", "*~"}
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.Host == "" {
		config.Server.Host = "localhost"
	}
	if config.Watch.DebounceMS == 0 {
		config.Watch.DebounceMS = 300
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for security and correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateTemplatesConfig(&config.Templates); err != nil {
		return fmt.Errorf("templates config: %w", err)
	}
	if config.Output.Dir != "" {
		if err := validatePath(config.Output.Dir); err != nil {
			return fmt.Errorf("output config: invalid dir '%s': %w", config.Output.Dir, err)
		}
	}
	return nil
}

// validateServerConfig validates server configuration values
func validateServerConfig(config *ServerConfig) error {
	// Allow 0 for system-assigned ports in testing
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}

	if config.Host != "" {
		dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
		for _, char := range dangerousChars {
			if strings.Contains(config.Host, char) {
				return fmt.Errorf("host contains dangerous character: %s", char)
			}
		}
	}

	return nil
}

// validateTemplatesConfig validates template search configuration
func validateTemplatesConfig(config *TemplatesConfig) error {
	for _, dir := range config.Dirs {
		if err := validatePath(dir); err != nil {
			return fmt.Errorf("invalid template dir '%s': %w", dir, err)
		}
	}
	for _, ext := range config.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	cleanPath := filepath.Clean(path)

	// Reject path traversal attempts
	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path contains traversal: %s", path)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
