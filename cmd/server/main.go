package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/frontmark/internal/api"
	"github.com/dgallion1/frontmark/internal/config"
	"github.com/dgallion1/frontmark/internal/metastore"
	"github.com/dgallion1/frontmark/internal/notify"
	"github.com/dgallion1/frontmark/internal/pipeline"
	"github.com/dgallion1/frontmark/internal/schema"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the metadata catalog.
	store, err := metastore.Open(cfg.MetaDBPath)
	if err != nil {
		log.Error("failed to open metadata catalog", "path", cfg.MetaDBPath, "error", err)
		os.Exit(1)
	}

	// Compile the metadata schema if one is configured.
	var validator *schema.Validator
	if cfg.SchemaFile != "" {
		raw, err := os.ReadFile(cfg.SchemaFile)
		if err != nil {
			log.Error("failed to read schema file", "path", cfg.SchemaFile, "error", err)
			os.Exit(1)
		}
		validator, err = schema.Compile(raw)
		if err != nil {
			log.Error("invalid metadata schema", "path", cfg.SchemaFile, "error", err)
			os.Exit(1)
		}
		log.Info("metadata schema loaded", "path", cfg.SchemaFile)
	}

	notifier := notify.NewClient(cfg.WebhookURL, cfg.WebhookAPIKey)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, store, validator, notifier, log)
	orch.Start(ctx)

	// Watch the drop folder if one is configured.
	var watcher *pipeline.Watcher
	if cfg.WatchDir != "" {
		watcher, err = pipeline.NewWatcher(orch, cfg.WatchDir, cfg.WatchGlobs, log)
		if err != nil {
			log.Error("failed to start drop folder watcher", "dir", cfg.WatchDir, "error", err)
			os.Exit(1)
		}
		go watcher.Start()
		log.Info("watching drop folder", "dir", cfg.WatchDir, "globs", cfg.WatchGlobs)
	}

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		if watcher != nil {
			watcher.Stop()
		}
		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		notifier.Close()
		store.Close()
	}()

	log.Info("starting frontmark", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
