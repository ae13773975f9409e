package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
)

// stubClassifier is a Classifier that can also be pinged
type stubClassifier struct {
	pingErr error
}

func (s *stubClassifier) Classify(context.Context, entity.FeatureVector) (*entity.PredictionResult, error) {
	return &entity.PredictionResult{}, nil
}

func (s *stubClassifier) Info() service.ModelInfo { return service.ModelInfo{Version: "stub"} }

func (s *stubClassifier) Ping(context.Context) error { return s.pingErr }

// stubSink is an AuditSink that can also be pinged
type stubSink struct {
	pingErr error
}

func (s *stubSink) Record(context.Context, *entity.AuditRecord) error { return nil }

func (s *stubSink) Ping(context.Context) error { return s.pingErr }

func getHealth(t *testing.T, h *HealthHandler, path string) (*httptest.ResponseRecorder, HealthStatus) {
	t.Helper()
	router := gin.New()
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	req, _ := http.NewRequest(http.MethodGet, path, http.NoBody)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var status HealthStatus
	if path == "/health" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	}
	return w, status
}

func TestHealthHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{}, &stubSink{}, "postgres")

		w, status := getHealth(t, h, "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, "ok", status.Components["model"])
		assert.Equal(t, "ok", status.Components["audit"])
		assert.Equal(t, "postgres", status.Components["audit_driver"])
	})

	t.Run("audit disabled", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{}, nil, "none")

		w, status := getHealth(t, h, "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, StatusHealthy, status.Status)
		assert.Equal(t, "disabled", status.Components["audit"])
	})

	t.Run("audit store down degrades", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{}, &stubSink{pingErr: errors.New("connection refused")}, "postgres")

		w, status := getHealth(t, h, "/health")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, StatusDegraded, status.Status)
		assert.Equal(t, "error: connection refused", status.Components["audit"])
	})

	t.Run("model down is unhealthy", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{pingErr: errors.New("scorer down")}, &stubSink{}, "bolt")

		w, status := getHealth(t, h, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, StatusUnhealthy, status.Status)
	})

	t.Run("no model", func(t *testing.T) {
		h := NewHealthHandler(nil, nil, "")

		w, status := getHealth(t, h, "/health")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Equal(t, "error: model not loaded", status.Components["model"])
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("ready even when audit store is down", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{}, &stubSink{pingErr: errors.New("down")}, "redis")

		w, _ := getHealth(t, h, "/ready")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "ready")
	})

	t.Run("not ready without model", func(t *testing.T) {
		h := NewHealthHandler(&stubClassifier{pingErr: errors.New("scorer down")}, nil, "none")

		w, _ := getHealth(t, h, "/ready")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "scorer down")
	})
}
