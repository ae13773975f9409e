package entity

// PredictionResult is the outcome of classifying one FeatureVector.
// Results may be shared between requests by the prediction cache and must not be mutated.
type PredictionResult struct {
	Label         int       `json:"label"`
	Confidence    float64   `json:"confidence"`
	Probabilities []float64 `json:"probabilities,omitempty"`
	ClassName     string    `json:"class_name,omitempty"`
	ModelVersion  string    `json:"model_version,omitempty"`
}
