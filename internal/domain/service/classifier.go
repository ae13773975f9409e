package service

import (
	"context"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
)

// ModelInfo describes the model behind a Classifier
type ModelInfo struct {
	Backend      string   `json:"backend"`
	Version      string   `json:"version"`
	FeatureCount int      `json:"feature_count"`
	FeatureNames []string `json:"feature_names,omitempty"`
	Classes      []int    `json:"classes"`
	ClassNames   []string `json:"class_names,omitempty"`
}

// Classifier defines the interface for feature vector classification
type Classifier interface {
	// Classify scores a single feature vector. Implementations must be safe for
	// concurrent use and must return the same result for the same vector.
	Classify(ctx context.Context, features entity.FeatureVector) (*entity.PredictionResult, error)

	// Info returns metadata about the loaded model
	Info() ModelInfo
}

type requestIDKey struct{}

// WithRequestID returns a copy of ctx carrying the caller's request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request id stored by WithRequestID, if any
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
