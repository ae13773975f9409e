package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// PredictRequest represents a request to the model service
type PredictRequest struct {
	Features  []float64 `json:"features"`
	RequestID string    `json:"request_id,omitempty"`
}

// PredictResponse represents the response from the model service.
// Probabilities are aligned with the service's class order.
type PredictResponse struct {
	Prediction    int       `json:"prediction"`
	Probabilities []float64 `json:"probabilities"`
	ModelVersion  string    `json:"model_version"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status       string `json:"status"`
	ModelLoaded  bool   `json:"model_loaded"`
	ModelVersion string `json:"model_version"`
}

// ModelClient is an HTTP client for an external model scoring service
type ModelClient struct {
	baseURL string
	rest    *resty.Client
}

// NewModelClient creates a new model service client
func NewModelClient(baseURL string, timeout time.Duration) *ModelClient {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second)
	}
	r.SetHeader("Accept", "application/json")

	return &ModelClient{baseURL: baseURL, rest: r}
}

// Predict sends a single feature vector for scoring
func (c *ModelClient) Predict(ctx context.Context, features []float64, requestID string) (*PredictResponse, error) {
	var result PredictResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(PredictRequest{Features: features, RequestID: requestID}).
		SetResult(&result).
		ForceContentType("application/json").
		Post(c.baseURL + "/predict")
	if err != nil {
		return nil, requestError(resp, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("model service returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return &result, nil
}

// Health checks the model service health
func (c *ModelClient) Health(ctx context.Context) (*HealthResponse, error) {
	var result HealthResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetResult(&result).
		ForceContentType("application/json").
		Get(c.baseURL + "/health")
	if err != nil {
		return nil, requestError(resp, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("model service returned status %d", resp.StatusCode())
	}

	return &result, nil
}

// requestError tells transport failures from bodies resty could not decode
func requestError(resp *resty.Response, err error) error {
	if resp != nil && resp.RawResponse != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return fmt.Errorf("failed to send request: %w", err)
}
