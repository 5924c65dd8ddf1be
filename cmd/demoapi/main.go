// Command demoapi serves the in-memory hospital API the portal talks to
// during local development.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/carelink/patient-portal/internal/config"
	"github.com/carelink/patient-portal/internal/demoapi"
	"github.com/carelink/patient-portal/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting demo hospital API",
		"port", cfg.DemoAPIPort,
		"seed", cfg.DemoSeedRecord,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.DemoAPIPort,
		Handler:      demoapi.New(logger, cfg.DemoSeedRecord).Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
