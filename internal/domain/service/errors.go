package service

import (
	"errors"
	"fmt"
	"math"
)

// Error definitions for classification
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInference          = errors.New("inference failed")
	ErrModelInconsistency = errors.New("model inconsistency")
)

// ResolveConfidence derives the confidence of label from a per-class probability
// distribution aligned with classes. Confidence is the maximum of the distribution,
// and that maximum has to belong to label.
func ResolveConfidence(label int, classes []int, probabilities []float64) (float64, error) {
	if len(probabilities) != len(classes) {
		return 0, fmt.Errorf("%w: got %d probabilities for %d classes", ErrInference, len(probabilities), len(classes))
	}

	labelIdx := -1
	maxProb := math.Inf(-1)
	for i, p := range probabilities {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return 0, fmt.Errorf("%w: probability %v for class %d is outside [0,1]", ErrInference, p, classes[i])
		}
		if p > maxProb {
			maxProb = p
		}
		if classes[i] == label {
			labelIdx = i
		}
	}

	if labelIdx < 0 {
		return 0, fmt.Errorf("%w: predicted class %d is not a known class", ErrModelInconsistency, label)
	}
	if probabilities[labelIdx] < maxProb {
		return 0, fmt.Errorf("%w: predicted class %d has probability %v below the maximum %v",
			ErrModelInconsistency, label, probabilities[labelIdx], maxProb)
	}

	return maxProb, nil
}

// ValidateFeatures checks a vector against the expected feature count
func ValidateFeatures(features []float64, expected int) error {
	if len(features) != expected {
		return fmt.Errorf("%w: expected %d features, got %d", ErrInvalidInput, expected, len(features))
	}
	for i, x := range features {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("%w: feature %d is not a finite number", ErrInvalidInput, i)
		}
	}
	return nil
}
