// Package model provides in-process classifiers backed by a trained artifact.
package model

import (
	"context"
	"fmt"
	"math"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
)

// BackendLocal identifies the in-process classifier in ModelInfo
const BackendLocal = "local"

// LogisticRegression scores feature vectors with a loaded artifact.
// Its parameters never change after construction, so it is safe for concurrent use.
type LogisticRegression struct {
	artifact Artifact
	info     service.ModelInfo
}

// Load reads and validates the artifact at path
func Load(path string) (*LogisticRegression, error) {
	a, err := LoadArtifact(path)
	if err != nil {
		return nil, err
	}
	return NewLogisticRegression(a)
}

// NewLogisticRegression creates a classifier from an artifact. The artifact is
// deep-copied so later changes by the caller are not observed.
func NewLogisticRegression(a *Artifact) (*LogisticRegression, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	cp := Artifact{
		Version:      a.Version,
		FeatureNames: append([]string(nil), a.FeatureNames...),
		Classes:      append([]int(nil), a.Classes...),
		ClassNames:   append([]string(nil), a.ClassNames...),
		Coefficients: make([][]float64, len(a.Coefficients)),
		Intercepts:   append([]float64(nil), a.Intercepts...),
	}
	for i, row := range a.Coefficients {
		cp.Coefficients[i] = append([]float64(nil), row...)
	}

	return &LogisticRegression{
		artifact: cp,
		info: service.ModelInfo{
			Backend:      BackendLocal,
			Version:      cp.Version,
			FeatureCount: cp.FeatureCount(),
			FeatureNames: cp.FeatureNames,
			Classes:      cp.Classes,
			ClassNames:   cp.ClassNames,
		},
	}, nil
}

// Info returns metadata about the loaded model
func (m *LogisticRegression) Info() service.ModelInfo {
	return m.info
}

// Classify returns the predicted class and its confidence. The context is not
// consulted: scoring is cheap and always runs to completion.
func (m *LogisticRegression) Classify(_ context.Context, features entity.FeatureVector) (*entity.PredictionResult, error) {
	if err := service.ValidateFeatures(features, m.artifact.FeatureCount()); err != nil {
		return nil, err
	}

	label, probabilities, err := m.score(features)
	if err != nil {
		return nil, err
	}

	confidence, err := service.ResolveConfidence(label, m.artifact.Classes, probabilities)
	if err != nil {
		return nil, err
	}

	return &entity.PredictionResult{
		Label:         label,
		Confidence:    confidence,
		Probabilities: probabilities,
		ClassName:     m.className(label),
		ModelVersion:  m.artifact.Version,
	}, nil
}

// score returns the predicted label (argmax of the decision function) and the
// per-class probability distribution aligned with Classes.
func (m *LogisticRegression) score(x []float64) (int, []float64, error) {
	a := &m.artifact

	decision := make([]float64, len(a.Coefficients))
	for i, row := range a.Coefficients {
		z := a.Intercepts[i]
		for j, w := range row {
			z += w * x[j]
		}
		if math.IsNaN(z) || math.IsInf(z, 0) {
			return 0, nil, fmt.Errorf("%w: decision value for row %d is not finite", service.ErrInference, i)
		}
		decision[i] = z
	}

	if a.Binary() {
		p := sigmoid(decision[0])
		label := a.Classes[0]
		if decision[0] > 0 {
			label = a.Classes[1]
		}
		return label, []float64{1 - p, p}, nil
	}

	best := 0
	for i, z := range decision {
		if z > decision[best] {
			best = i
		}
	}
	return a.Classes[best], softmax(decision), nil
}

func (m *LogisticRegression) className(label int) string {
	if len(m.artifact.ClassNames) == 0 {
		return ""
	}
	for i, c := range m.artifact.Classes {
		if c == label {
			return m.artifact.ClassNames[i]
		}
	}
	return ""
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softmax is shifted by the maximum so large decision values don't overflow
func softmax(z []float64) []float64 {
	maxZ := z[0]
	for _, v := range z[1:] {
		if v > maxZ {
			maxZ = v
		}
	}

	out := make([]float64, len(z))
	var sum float64
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
