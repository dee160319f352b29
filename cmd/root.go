// Package cmd provides the command-line interface for rendercomments with
// configuration loading from multiple sources.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags (--config, --debug, etc.)
//  2. RENDERCOMMENTS_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (RENDERCOMMENTS_SERVER_PORT, etc.)
//  4. Configuration file (.rendercomments.yml)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sean-reed/django-render-comments/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rendercomments",
	Short: "Preprocess Django template comments into visible HTML comments",
	Long: `rendercomments rewrites template comments into HTML comments so they
show up in rendered pages during development.

Inline comments {# like this #} and block comments between
{% comment %} and {% endcomment %} become <!-- HTML comments -->.
A !hide marker removes a comment even in debug mode, and a !render
marker lets the comment's contents go through template rendering.

Quick Start:
  rendercomments init             Write a default .rendercomments.yml
  rendercomments process in.html  Preprocess a template to stdout
  rendercomments watch            Reprocess templates on change
  rendercomments serve            Preview templates with live reload`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .rendercomments.yml, can also use RENDERCOMMENTS_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig initializes the configuration system.
//
// Config file priority: --config flag, then the RENDERCOMMENTS_CONFIG_FILE
// environment variable, then .rendercomments.yml in the current directory.
// Individual values can always be overridden with RENDERCOMMENTS_ prefixed
// environment variables (RENDERCOMMENTS_SERVER_PORT, RENDERCOMMENTS_DEBUG).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("RENDERCOMMENTS_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".rendercomments")
	}

	viper.SetEnvPrefix("RENDERCOMMENTS")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable config file falls back to defaults
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger from the resolved log level.
func newLogger(level string) logging.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.ParseLevel(level)
	return logging.NewLogger(cfg)
}
