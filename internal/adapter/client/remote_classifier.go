package client

import (
	"context"
	"fmt"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
)

// BackendRemote identifies the HTTP-backed classifier in ModelInfo
const BackendRemote = "remote"

// RemoteClassifier adapts ModelClient to the Classifier interface.
// The feature schema and class order are fixed by configuration.
type RemoteClassifier struct {
	client *ModelClient
	info   service.ModelInfo
}

// NewRemoteClassifier creates a new RemoteClassifier
func NewRemoteClassifier(client *ModelClient, featureCount int, classes []int, version string) *RemoteClassifier {
	return &RemoteClassifier{
		client: client,
		info: service.ModelInfo{
			Backend:      BackendRemote,
			Version:      version,
			FeatureCount: featureCount,
			Classes:      append([]int(nil), classes...),
		},
	}
}

// Classify validates features locally, then scores them on the model service
func (c *RemoteClassifier) Classify(ctx context.Context, features entity.FeatureVector) (*entity.PredictionResult, error) {
	if err := service.ValidateFeatures(features, c.info.FeatureCount); err != nil {
		return nil, err
	}

	resp, err := c.client.Predict(ctx, features, service.RequestIDFromContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", service.ErrInference, err)
	}

	confidence, err := service.ResolveConfidence(resp.Prediction, c.info.Classes, resp.Probabilities)
	if err != nil {
		return nil, err
	}

	version := resp.ModelVersion
	if version == "" {
		version = c.info.Version
	}

	return &entity.PredictionResult{
		Label:         resp.Prediction,
		Confidence:    confidence,
		Probabilities: resp.Probabilities,
		ModelVersion:  version,
	}, nil
}

// Info returns the configured model metadata
func (c *RemoteClassifier) Info() service.ModelInfo {
	return c.info
}

// Ping checks that the model service is up and has a model loaded
func (c *RemoteClassifier) Ping(ctx context.Context) error {
	health, err := c.client.Health(ctx)
	if err != nil {
		return err
	}
	if !health.ModelLoaded {
		return fmt.Errorf("model service reports no model loaded (status %q)", health.Status)
	}
	return nil
}
