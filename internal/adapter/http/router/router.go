package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/niallroche/data-engineering-mlops/internal/adapter/http/handler"
	"github.com/niallroche/data-engineering-mlops/internal/adapter/http/middleware"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
	"github.com/niallroche/data-engineering-mlops/internal/usecase"
)

// Dependencies are the collaborators the HTTP layer is built on
type Dependencies struct {
	PredictionUC usecase.PredictionUsecase
	Classifier   service.Classifier
	// AuditSink is nil when auditing is disabled
	AuditSink    repository.AuditSink
	AuditDriver  string
	Logger       *zap.Logger
	MaxBodyBytes int64
	// Gatherer serves /metrics; the default registry is used when nil
	Gatherer prometheus.Gatherer
}

// Setup creates and configures the Gin router
func Setup(deps Dependencies) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(deps.Logger))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handler.NewHealthHandler(deps.Classifier, deps.AuditSink, deps.AuditDriver)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Prometheus metrics
	metricsHandler := promhttp.Handler()
	if deps.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})
	}
	router.GET("/metrics", gin.WrapH(metricsHandler))

	predictionHandler := handler.NewPredictionHandler(deps.PredictionUC)
	limit := middleware.MaxBodySize(deps.MaxBodyBytes)

	// legacy unversioned route, unwrapped responses
	router.POST("/predict", limit, predictionHandler.PredictLegacy)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.POST("/predict", limit, predictionHandler.Predict)
		v1.GET("/model", predictionHandler.ModelInfo)
	}

	return router
}
