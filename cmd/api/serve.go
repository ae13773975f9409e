package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/niallroche/data-engineering-mlops/internal/adapter/http/router"
	"github.com/niallroche/data-engineering-mlops/internal/adapter/model"
	"github.com/niallroche/data-engineering-mlops/internal/adapter/repository/audit"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/logger"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/metrics"
	"github.com/niallroche/data-engineering-mlops/internal/usecase"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath)
		},
	}
}

func runServe(ctx context.Context, configPath string) error {
	// Load configuration
	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	m := metrics.New()

	// The model is loaded once; the server does not start without it
	classifier, err := model.NewClassifier(&cfg.Model)
	if err != nil {
		log.Error("Failed to load model", zap.Error(err))
		return fmt.Errorf("failed to load model: %w", err)
	}
	info := classifier.Info()
	log.Info("Model loaded",
		zap.String("backend", info.Backend),
		zap.String("version", info.Version),
		zap.Int("features", info.FeatureCount),
		zap.Ints("classes", info.Classes),
	)

	sink := openAuditSink(cfg, log, m)

	var healthSink repository.AuditSink
	if sink.Driver != config.DriverNone {
		healthSink = sink
	}

	// Setup router
	r := router.Setup(router.Dependencies{
		PredictionUC: usecase.NewPredictionUsecase(classifier, sink, log, m, cfg.Audit.Timeout),
		Classifier:   classifier,
		AuditSink:    healthSink,
		AuditDriver:  sink.Driver,
		Logger:       log,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  2 * cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	serveErr := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("address", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	// Wait for interrupt signal
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
		_ = sink.Close(context.Background())
		return fmt.Errorf("server failed: %w", err)
	}

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush queued audit records and close storage
	if err := sink.Close(shutdownCtx); err != nil {
		log.Warn("Audit sink did not close cleanly", zap.Error(err))
	}

	log.Info("Server exited")
	return nil
}

// openAuditSink opens the configured audit sink. Audit storage is best effort:
// when it can't be opened the server runs without it and reports it as down.
func openAuditSink(cfg *config.Config, log *zap.Logger, m *metrics.Metrics) *audit.Sink {
	sink, err := audit.Open(cfg, log, m)
	if err != nil {
		log.Warn("Failed to open audit sink, predictions will not be audited",
			zap.String("driver", cfg.AuditDriver()),
			zap.Error(err),
		)
		return audit.Unavailable(cfg.AuditDriver(), err, m)
	}
	log.Info("Audit sink ready", zap.String("driver", sink.Driver), zap.Bool("async", cfg.Audit.Async))
	return sink
}
