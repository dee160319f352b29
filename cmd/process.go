package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sean-reed/django-render-comments/internal/config"
	apperrors "github.com/sean-reed/django-render-comments/internal/errors"
	"github.com/sean-reed/django-render-comments/internal/loader"
	"github.com/sean-reed/django-render-comments/internal/preprocess"
)

var processCmd = &cobra.Command{
	Use:   "process [files...]",
	Short: "Rewrite template comments into HTML comments",
	Long: `Process runs the comment transform over template files.

With file arguments, each named file is processed; a single file with no
output flag is written to stdout, and "-" reads from stdin. Without
arguments every template under the configured template directories is
processed, which requires --write or --out-dir.

The transform only rewrites comments when both debug and enabled hold;
otherwise comments are stripped the way the template engine would drop
them.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().Bool("write", false, "rewrite files in place")
	processCmd.Flags().String("out-dir", "", "write processed files into this directory")
	processCmd.Flags().Bool("debug", false, "treat the run as a debug build (rewrites comments)")
	processCmd.Flags().Bool("enabled", true, "feature toggle for comment rewriting")
	_ = viper.BindPFlag("debug", processCmd.Flags().Lookup("debug"))
	_ = viper.BindPFlag("enabled", processCmd.Flags().Lookup("enabled"))
	_ = viper.BindPFlag("output.dir", processCmd.Flags().Lookup("out-dir"))
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.TargetFiles = args

	logger := newLogger(cfg.LogLevel).WithComponent("process")
	ctx := cmd.Context()

	write, _ := cmd.Flags().GetBool("write")
	outDir := cfg.Output.Dir
	if outDir != "" {
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	enabled := cfg.Debug && cfg.Enabled
	collector := apperrors.NewCollector()

	if len(args) == 1 && args[0] == "-" {
		contents, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		fmt.Print(preprocess.Transform(string(contents), enabled))
		return nil
	}

	if len(args) > 0 {
		if len(args) > 1 && !write && outDir == "" {
			return fmt.Errorf("multiple files need --write or --out-dir")
		}
		for _, file := range args {
			processFile(file, filepath.Base(file), enabled, write, outDir, collector)
		}
	} else {
		if !write && outDir == "" {
			return fmt.Errorf("processing template directories needs --write or --out-dir")
		}
		l := loader.New(cfg, logger)
		err := l.Walk(ctx, func(dir, name string) error {
			processFile(filepath.Join(dir, filepath.FromSlash(name)), name, enabled, write, outDir, collector)
			return nil
		})
		if err != nil {
			return err
		}
	}

	if collector.HasErrors() {
		for _, perr := range collector.All() {
			logger.Error(ctx, &perr, "processing failed", "file", perr.File)
		}
		return fmt.Errorf("%d file(s) failed", collector.Count())
	}

	logger.Debug(ctx, "processing complete", "enabled", enabled)
	return nil
}

// processFile transforms one file. name is the output-relative path used
// under --out-dir; recording failures in the collector keeps a bad file
// from stopping the rest of the run.
func processFile(path, name string, enabled, write bool, outDir string, collector *apperrors.Collector) {
	contents, err := os.ReadFile(path)
	if err != nil {
		collector.Add(path, "read", err)
		return
	}

	processed := preprocess.Transform(string(contents), enabled)

	switch {
	case outDir != "":
		target := filepath.Join(outDir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			collector.Add(path, "write", err)
			return
		}
		if err := os.WriteFile(target, []byte(processed), 0644); err != nil {
			collector.Add(path, "write", err)
		}
	case write:
		if err := os.WriteFile(path, []byte(processed), 0644); err != nil {
			collector.Add(path, "write", err)
		}
	default:
		fmt.Print(processed)
	}
}
