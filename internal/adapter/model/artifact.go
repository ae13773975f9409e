package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Artifact is the serialized form of a trained logistic regression.
//
// Coefficients has one row per class for multinomial models, or a single row for
// binary models where the row scores Classes[1] against Classes[0]. This matches
// the coef_/intercept_/classes_ layout of scikit-learn's LogisticRegression.
type Artifact struct {
	Version      string      `json:"version" yaml:"version"`
	FeatureNames []string    `json:"feature_names,omitempty" yaml:"feature_names,omitempty"`
	Classes      []int       `json:"classes" yaml:"classes"`
	ClassNames   []string    `json:"class_names,omitempty" yaml:"class_names,omitempty"`
	Coefficients [][]float64 `json:"coefficients" yaml:"coefficients"`
	Intercepts   []float64   `json:"intercepts" yaml:"intercepts"`
}

// LoadArtifact reads an artifact from a .json, .yaml or .yml file
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var a Artifact
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &a)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &a)
	default:
		return nil, fmt.Errorf("unsupported model artifact format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode model artifact %s: %w", path, err)
	}

	if err := a.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact %s: %w", path, err)
	}
	return &a, nil
}

// FeatureCount returns the number of features the model was trained on
func (a *Artifact) FeatureCount() int {
	if len(a.Coefficients) == 0 {
		return 0
	}
	return len(a.Coefficients[0])
}

// Binary reports whether the artifact uses the single-row binary layout
func (a *Artifact) Binary() bool {
	return len(a.Classes) == 2 && len(a.Coefficients) == 1
}

// Validate checks shape consistency and that all parameters are finite
func (a *Artifact) Validate() error {
	if len(a.Classes) < 2 {
		return errors.New("at least two classes are required")
	}

	seen := make(map[int]bool, len(a.Classes))
	for _, c := range a.Classes {
		if seen[c] {
			return fmt.Errorf("duplicate class %d", c)
		}
		seen[c] = true
	}

	rows := len(a.Classes)
	if a.Binary() {
		rows = 1
	}
	if len(a.Coefficients) != rows {
		return fmt.Errorf("expected %d coefficient rows for %d classes, got %d", rows, len(a.Classes), len(a.Coefficients))
	}
	if len(a.Intercepts) != rows {
		return fmt.Errorf("expected %d intercepts, got %d", rows, len(a.Intercepts))
	}

	n := a.FeatureCount()
	if n == 0 {
		return errors.New("coefficient rows are empty")
	}
	for i, row := range a.Coefficients {
		if len(row) != n {
			return fmt.Errorf("coefficient row %d has %d values, expected %d", i, len(row), n)
		}
		if !finite(row...) {
			return fmt.Errorf("coefficient row %d contains non-finite values", i)
		}
	}
	if !finite(a.Intercepts...) {
		return errors.New("intercepts contain non-finite values")
	}

	if len(a.FeatureNames) > 0 && len(a.FeatureNames) != n {
		return fmt.Errorf("got %d feature names for %d features", len(a.FeatureNames), n)
	}
	if len(a.ClassNames) > 0 && len(a.ClassNames) != len(a.Classes) {
		return fmt.Errorf("got %d class names for %d classes", len(a.ClassNames), len(a.Classes))
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
