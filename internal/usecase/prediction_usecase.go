package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/repository"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/metrics"
)

// PredictInput represents one prediction request as received
type PredictInput struct {
	// RawInput is the request body; it is stored verbatim in the audit log
	RawInput  []byte
	RequestID string
}

// PredictionOutput represents the output of a prediction.
// Prediction repeats Label under the field name older clients read.
type PredictionOutput struct {
	Label         int       `json:"label"`
	Prediction    int       `json:"prediction"`
	Confidence    float64   `json:"confidence"`
	ClassName     string    `json:"class_name,omitempty"`
	Probabilities []float64 `json:"probabilities,omitempty"`
	ModelVersion  string    `json:"model_version,omitempty"`
}

// PredictionUsecase defines the interface for the inference pipeline
type PredictionUsecase interface {
	// Predict classifies the features in input and audits the result.
	// Audit failures are never returned.
	Predict(ctx context.Context, input *PredictInput) (*PredictionOutput, error)
	ModelInfo() service.ModelInfo
}

type predictionUsecase struct {
	classifier   service.Classifier
	sink         repository.AuditSink
	logger       *zap.Logger
	metrics      *metrics.Metrics
	auditTimeout time.Duration
}

// NewPredictionUsecase creates a new prediction usecase
func NewPredictionUsecase(
	classifier service.Classifier,
	sink repository.AuditSink,
	logger *zap.Logger,
	m *metrics.Metrics,
	auditTimeout time.Duration,
) PredictionUsecase {
	return &predictionUsecase{
		classifier:   classifier,
		sink:         sink,
		logger:       logger,
		metrics:      m,
		auditTimeout: auditTimeout,
	}
}

func (u *predictionUsecase) Predict(ctx context.Context, input *PredictInput) (*PredictionOutput, error) {
	features, err := ParseFeatures(input.RawInput)
	if err != nil {
		u.metrics.ObservePrediction(metrics.OutcomeInvalidInput, 0, 0)
		return nil, err
	}

	start := time.Now()
	result, err := u.classifier.Classify(service.WithRequestID(ctx, input.RequestID), features)
	elapsed := time.Since(start)
	if err != nil {
		u.metrics.ObservePrediction(outcome(err), elapsed, 0)
		return nil, err
	}
	u.metrics.ObservePrediction(metrics.OutcomeSuccess, elapsed, result.Confidence)

	u.audit(ctx, entity.NewAuditRecord(input.RequestID, input.RawInput, result, elapsed, time.Now()))

	return toPredictionOutput(result), nil
}

func (u *predictionUsecase) ModelInfo() service.ModelInfo {
	return u.classifier.Info()
}

// audit makes one bounded attempt to store record. The attempt outlives a
// disconnected caller but not the audit timeout.
func (u *predictionUsecase) audit(ctx context.Context, record *entity.AuditRecord) {
	defer func() {
		if r := recover(); r != nil {
			u.logger.Error("Audit sink panicked",
				zap.String("request_id", record.RequestID),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), u.auditTimeout)
	defer cancel()

	if err := u.sink.Record(ctx, record); err != nil {
		u.logger.Warn("Failed to record prediction",
			zap.String("request_id", record.RequestID),
			zap.Int("prediction", record.Label),
			zap.Error(err),
		)
	}
}

// ParseFeatures extracts the feature vector from a {"features": [...]} body.
// Every element has to be a JSON number.
func ParseFeatures(raw []byte) (entity.FeatureVector, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: malformed JSON body: %v", service.ErrInvalidInput, err)
	}

	field, ok := body["features"]
	if !ok || isNull(field) {
		return nil, fmt.Errorf("%w: missing features", service.ErrInvalidInput)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(field, &items); err != nil {
		return nil, fmt.Errorf("%w: features must be an array of numbers", service.ErrInvalidInput)
	}

	values := make([]float64, len(items))
	for i, item := range items {
		if isNull(item) {
			return nil, fmt.Errorf("%w: feature %d is not a number", service.ErrInvalidInput, i)
		}
		if err := json.Unmarshal(item, &values[i]); err != nil {
			return nil, fmt.Errorf("%w: feature %d is not a number", service.ErrInvalidInput, i)
		}
	}

	return entity.NewFeatureVector(values), nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func outcome(err error) string {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return metrics.OutcomeInvalidInput
	case errors.Is(err, service.ErrModelInconsistency):
		return metrics.OutcomeModelInconsistency
	default:
		return metrics.OutcomeInferenceError
	}
}

func toPredictionOutput(r *entity.PredictionResult) *PredictionOutput {
	return &PredictionOutput{
		Label:         r.Label,
		Prediction:    r.Label,
		Confidence:    r.Confidence,
		ClassName:     r.ClassName,
		Probabilities: r.Probabilities,
		ModelVersion:  r.ModelVersion,
	}
}
