package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayoubd/filevault"
	"github.com/ayoubd/filevault/config"
	"github.com/ayoubd/filevault/database"
	"github.com/ayoubd/filevault/filesystem"
	filevaulthttp "github.com/ayoubd/filevault/http"
	"github.com/ayoubd/filevault/sessioncache"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the filevault HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 5000, "HTTP server port")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repos, dbCleanup, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer dbCleanup()

	slog.Info("connected to database", "type", cfg.Database.Type)

	cache, err := sessioncache.Open(sessioncache.Options{Path: cfg.Cache.Path})
	if err != nil {
		return fmt.Errorf("open session cache: %w", err)
	}
	defer func() { _ = cache.Close() }()

	if err = os.MkdirAll(cfg.Storage.Path, 0o750); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	root, err := os.OpenRoot(cfg.Storage.Path)
	if err != nil {
		return fmt.Errorf("open storage root: %w", err)
	}
	defer func() { _ = root.Close() }()

	blobs := filesystem.NewStore(root)

	sessions := filevault.NewSessionManager(repos.Users, cache, filevault.SessionConfig{
		TTL: time.Duration(cfg.Session.TTLSeconds) * time.Second,
	})
	files := filevault.NewFileService(repos.Users, repos.Files, blobs, cache)

	handlerConfig := filevaulthttp.HandlerConfig{
		CORS: cfg.CORS,
	}

	handler := filevaulthttp.NewHandler(&handlerConfig, sessions, files)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
