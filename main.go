package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ClimateCodeFoundation/zontem/internal/config"
	"github.com/ClimateCodeFoundation/zontem/internal/runner"
	"github.com/ClimateCodeFoundation/zontem/internal/server"
	"github.com/ClimateCodeFoundation/zontem/internal/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	setupLogging(cfg.LogLevel)

	deploymentMode := storage.DeploymentLocal
	if cfg.GCSBucket != "" {
		deploymentMode = storage.DeploymentGCS
	}

	store, err := storage.NewClient(ctx, deploymentMode, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	logrus.WithFields(logrus.Fields{
		"zones":    cfg.ZoneCount,
		"baseline": cfg.BaselineStart,
		"storage":  deploymentMode,
		"mode":     cfg.Environment,
	}).Info("starting zontem")

	if cfg.Environment == "serve" {
		runServer(cfg, store)
		return
	}

	// Default is a single batch computation, then exit.
	run := runner.New(cfg, store)
	folder, _, err := run.Execute(ctx)
	if err != nil {
		logrus.Fatalf("Run failed: %v", err)
	}
	logrus.WithField("folder", folder).Info("results published")
}

// runServer serves the computation over HTTP until interrupted.
func runServer(cfg *config.Config, store storage.Client) {
	srv := server.New(cfg, store)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.SetupRoutes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 600 * time.Second, // a run can take minutes
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.WithField("port", cfg.Port).Info("server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logrus.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server shutdown error: %v", err)
	}
}

// setupLogging configures the global logger from the LOG_LEVEL setting.
func setupLogging(level string) {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}
