package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sean-reed/django-render-comments/internal/config"
	apperrors "github.com/sean-reed/django-render-comments/internal/errors"
	"github.com/sean-reed/django-render-comments/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Reprocess templates whenever they change",
	Long: `Watch monitors the configured template directories and reruns the
comment transform on changed files, writing results into --out-dir.
Changes are debounced so editor save bursts produce one run.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().String("out-dir", "", "write processed files into this directory")
	watchCmd.Flags().Bool("debug", true, "treat the run as a debug build (rewrites comments)")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	// Watch mode exists to preview comments, so debug defaults on
	cfg.Debug, _ = cmd.Flags().GetBool("debug")

	logger := newLogger(cfg.LogLevel).WithComponent("watch")
	enabled := cfg.Debug && cfg.Enabled
	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	if outDir == "" {
		outDir = "processed"
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.NewFileWatcher(time.Duration(cfg.Watch.DebounceMS)*time.Millisecond, logger)
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer fw.Stop()

	fw.AddFilter(watcher.ExtensionFilter(cfg.Templates.Extensions))
	fw.AddFilter(watcher.NoGitFilter)
	fw.AddFilter(watcher.NoBackupFilter)
	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		collector := apperrors.NewCollector()
		for _, event := range events {
			if event.Type == watcher.EventTypeDeleted {
				continue
			}
			name := relativeName(cfg.Templates.Dirs, event.Path)
			processFile(event.Path, name, enabled, false, outDir, collector)
			logger.Info(ctx, "reprocessed", "file", event.Path, "event", event.Type.String())
		}
		for _, perr := range collector.All() {
			logger.Error(ctx, &perr, "reprocessing failed", "file", perr.File)
		}
		return nil
	})

	watching := 0
	for _, dir := range cfg.Templates.Dirs {
		if err := fw.AddRecursive(dir); err != nil {
			logger.Warn(ctx, err, "failed to watch template dir", "dir", dir)
			continue
		}
		watching++
	}
	if watching == 0 {
		return fmt.Errorf("no template directories could be watched")
	}

	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}

	logger.Info(ctx, "watching for template changes",
		"dirs", strings.Join(cfg.Templates.Dirs, ","), "out_dir", outDir, "enabled", enabled)

	<-ctx.Done()
	logger.Info(ctx, "shutting down")
	return nil
}

// relativeName maps a changed file back to its template name. Files outside
// every search directory keep their base name.
func relativeName(dirs []string, path string) string {
	for _, dir := range dirs {
		if rel, err := filepath.Rel(dir, path); err == nil &&
			rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.Base(path)
}
