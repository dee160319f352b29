package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sean-reed/django-render-comments/internal/config"
	"github.com/sean-reed/django-render-comments/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Preview templates with comments visible and live reload",
	Long: `Serve starts a local preview server. Templates from the configured
directories are served with their comments rewritten into HTML comments,
and connected browsers reload automatically when a template changes.

The preview always runs with debug on; a preview without visible
comments would have nothing to show.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.Flags().String("host", "localhost", "host to bind to")
	_ = viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg.Debug = true

	logger := newLogger(cfg.LogLevel)

	srv, err := server.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating preview server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(ctx)
	}()

	logger.Info(ctx, "preview server started",
		"addr", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info(shutdownCtx, "preview server stopped")
	return nil
}
