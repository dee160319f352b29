package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sean-reed/django-render-comments/internal/config"
)

const configFileName = ".rendercomments.yml"

var initCmd = &cobra.Command{
	Use:     "init",
	Aliases: []string{"i"},
	Short:   "Write a default configuration file",
	Long: `Init writes a ` + configFileName + ` with the default settings into the
current directory so they can be edited instead of remembered.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().Bool("force", false, "overwrite an existing config file")
}

func runInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")

	if _, err := os.Stat(configFileName); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configFileName)
	}

	defaults := config.Config{
		Debug:   false,
		Enabled: true,
		Templates: config.TemplatesConfig{
			Dirs:            []string{"./templates"},
			Extensions:      []string{".html", ".txt"},
			ExcludePatterns: []string{"*.bak", "*~"},
		},
		Output: config.OutputConfig{Dir: "processed"},
		Server: config.ServerConfig{
			Port: 8080,
			Host: "localhost",
		},
		Watch:    config.WatchConfig{DebounceMS: 300},
		LogLevel: "info",
	}

	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return fmt.Errorf("marshaling default config: %w", err)
	}

	if err := os.WriteFile(configFileName, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", configFileName, err)
	}

	fmt.Printf("Wrote %s\n", configFileName)
	return nil
}
