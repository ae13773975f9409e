package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
)

// Health statuses
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	classifier  service.Classifier
	sink        repository.AuditSink
	auditDriver string
}

// NewHealthHandler creates a new health handler. sink may be nil when auditing
// is disabled.
func NewHealthHandler(classifier service.Classifier, sink repository.AuditSink, auditDriver string) *HealthHandler {
	return &HealthHandler{
		classifier:  classifier,
		sink:        sink,
		auditDriver: auditDriver,
	}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health. An unreachable audit store only degrades the
// service, since predictions are still served.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	components := make(map[string]string)
	status := StatusHealthy

	if err := h.checkModel(ctx); err != nil {
		components["model"] = "error: " + err.Error()
		status = StatusUnhealthy
	} else {
		components["model"] = "ok"
	}

	switch {
	case h.sink == nil:
		components["audit"] = "disabled"
	default:
		if err := ping(ctx, h.sink); err != nil {
			components["audit"] = "error: " + err.Error()
			if status == StatusHealthy {
				status = StatusDegraded
			}
		} else {
			components["audit"] = "ok"
		}
	}
	if h.auditDriver != "" {
		components["audit_driver"] = h.auditDriver
	}

	httpStatus := http.StatusOK
	if status == StatusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthStatus{
		Status:     status,
		Components: components,
	})
}

// Ready handles GET /ready. Readiness depends only on the model.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.checkModel(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (h *HealthHandler) checkModel(ctx context.Context) error {
	if h.classifier == nil {
		return errModelNotLoaded
	}
	return ping(ctx, h.classifier)
}

func ping(ctx context.Context, v interface{}) error {
	if p, ok := v.(repository.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
