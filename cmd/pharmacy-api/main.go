// Package main provides the pharmacy API service entry point.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/openpharm/go-pims/internal/api/handlers"
	"github.com/openpharm/go-pims/internal/api/middleware"
	"github.com/openpharm/go-pims/internal/config"
	"github.com/openpharm/go-pims/internal/domain/pharmacy"
	"github.com/openpharm/go-pims/internal/infrastructure/memory"
	"github.com/openpharm/go-pims/internal/infrastructure/postgres"
	"github.com/openpharm/go-pims/internal/observability/metrics"
	"github.com/openpharm/go-pims/internal/observability/tracing"
	"github.com/openpharm/go-pims/internal/storage"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg := config.Load()

	// Initialize tracing; the service still runs without a collector
	tracingCfg := tracing.DefaultConfig("pharmacy-api")
	tracingCfg.Environment = cfg.Environment
	tracingCfg.OTLPEndpoint = cfg.OTLPEndpoint
	provider, err := tracing.Init(context.Background(), tracingCfg)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer provider.Shutdown(context.Background())
	}

	m := metrics.New()

	// Bind the storage backend once for the life of the process
	connect := func(ctx context.Context) (pharmacy.Store, error) {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("create pool: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		return postgres.NewStore(pool, logger), nil
	}

	store, backend := storage.Select(
		context.Background(),
		cfg.ProbeTimeout,
		connect,
		memory.NewStore(logger),
		logger,
	)
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}
	m.StorageBackend.WithLabelValues(string(backend)).Set(1)

	// Initialize handlers
	medicineHandler := handlers.NewMedicineHandler(store, logger, m)
	patientHandler := handlers.NewPatientHandler(store, logger)
	prescriptionHandler := handlers.NewPrescriptionHandler(store, logger, m)
	statisticsHandler := handlers.NewStatisticsHandler(store, logger)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS)
	r.Use(middleware.Recover(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Tracing("pharmacy-api"))
	r.Use(m.Middleware)

	r.Get("/health", healthHandler)
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, err := store.ListMedicines(r.Context()); err != nil {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", metrics.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Mount("/medicines", medicineHandler.Routes())
		r.Mount("/patients", patientHandler.Routes())
		r.Mount("/prescriptions", prescriptionHandler.Routes())
		r.Get("/statistics", statisticsHandler.Get)
	})

	// Start server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	}()

	logger.Info("starting pharmacy API",
		zap.String("port", cfg.Port),
		zap.String("backend", string(backend)),
	)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}

	logger.Info("server stopped")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","service":"pharmacy-api","version":"0.1.0"}`)
}
