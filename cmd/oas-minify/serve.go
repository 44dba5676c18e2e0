package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/prasenjit/oas-minify/internal/api"
	"github.com/prasenjit/oas-minify/internal/events"
	"github.com/prasenjit/oas-minify/internal/render"
	"github.com/prasenjit/oas-minify/internal/stats"
	"github.com/prasenjit/oas-minify/internal/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the minification API server",
	Long: `Starts the oas-minify HTTP service.

The server will:
  - Load stored OpenAPI documents from the data directory (file storage)
  - Expose the API at /_api/
  - Stream finished runs over a WebSocket at /_api/runs/stream

Configuration is loaded from config.yaml in the current directory,
or specify a custom config file with the --config flag.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntP("port", "p", 0, "Override server port")
	serveCmd.Flags().String("storage", "", "Storage type: memory or file")

	// Bind flags to viper
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("storage.type", serveCmd.Flags().Lookup("storage"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	// Resolve relative storage path to absolute.
	storagePath := cfg.Storage.Path
	if storagePath != "" && !filepath.IsAbs(storagePath) {
		if cwd, err := os.Getwd(); err == nil {
			storagePath = filepath.Join(cwd, storagePath)
		}
	}

	store, err := storage.New(cfg.Storage.Type, storagePath)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()
	log.Info("storage ready", "type", cfg.Storage.Type, "path", storagePath)

	format, err := render.ParseFormat(cfg.Minify.Format)
	if err != nil {
		return err
	}

	router := api.NewRouter(store, stats.NewCollector(), events.NewFeed(cfg.Events.MaxRuns), api.Defaults{
		Options: cfg.MinifyOptions(),
		Format:  format,
	}, log)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:        addr,
		Handler:     router.Handler(),
		ReadTimeout: 30 * time.Second,
		// Writes stay open for WebSocket streams
		IdleTimeout: 60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting oas-minify server", "addr", addr, "api", fmt.Sprintf("http://%s/_api/", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	log.Info("server stopped")
	return nil
}
