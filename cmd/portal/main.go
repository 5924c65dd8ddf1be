package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carelink/patient-portal/internal/api"
	"github.com/carelink/patient-portal/internal/backfill"
	"github.com/carelink/patient-portal/internal/bookings"
	"github.com/carelink/patient-portal/internal/config"
	"github.com/carelink/patient-portal/internal/doctors"
	"github.com/carelink/patient-portal/internal/observability/metrics"
	"github.com/carelink/patient-portal/internal/patients"
	"github.com/carelink/patient-portal/internal/portal"
	"github.com/carelink/patient-portal/internal/reports"
	"github.com/carelink/patient-portal/internal/session"
	"github.com/carelink/patient-portal/pkg/logging"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting patient portal",
		"env", cfg.Env,
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
	)

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger)

	registry := prometheus.NewRegistry()
	cacheMetrics := metrics.NewCacheMetrics(registry)

	sessionStore := session.New(client, logger)
	doctorStore := doctors.New(client, cacheMetrics)
	patientStore := patients.New(client, cacheMetrics)
	bookingStore := bookings.New(client, cacheMetrics)
	reportStore := reports.New(client, cacheMetrics)

	doctorBackfill := backfill.New("doctors", doctorStore,
		func(ctx context.Context, ref string) error {
			_, err := doctorStore.FetchByUser(ctx, ref)
			return err
		},
		logger, cacheMetrics,
	)

	views := portal.NewViews(doctorStore, patientStore, bookingStore, reportStore, doctorBackfill, logger)
	handler := portal.NewHandler(sessionStore, doctorStore, patientStore, bookingStore, views, logger)

	r := portal.NewRouter(&portal.RouterConfig{
		Handler:        handler,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
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

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
