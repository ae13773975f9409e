package model

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
)

func TestLogisticRegression_Classify(t *testing.T) {
	m, err := NewLogisticRegression(irisArtifact())
	require.NoError(t, err)

	tests := []struct {
		name      string
		features  entity.FeatureVector
		wantLabel int
		wantName  string
	}{
		{"setosa", entity.FeatureVector{5.1, 3.5, 1.4, 0.2}, 0, "setosa"},
		{"versicolor", entity.FeatureVector{5.9, 3.0, 4.2, 1.5}, 1, "versicolor"},
		{"virginica", entity.FeatureVector{6.3, 3.3, 6.0, 2.5}, 2, "virginica"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := m.Classify(context.Background(), tt.features)

			require.NoError(t, err)
			assert.Equal(t, tt.wantLabel, result.Label)
			assert.Equal(t, tt.wantName, result.ClassName)
			assert.Equal(t, "iris-test", result.ModelVersion)
			assert.GreaterOrEqual(t, result.Confidence, 0.0)
			assert.LessOrEqual(t, result.Confidence, 1.0)

			require.Len(t, result.Probabilities, 3)
			var sum float64
			for _, p := range result.Probabilities {
				sum += p
				assert.LessOrEqual(t, p, result.Confidence)
			}
			assert.InDelta(t, 1.0, sum, 1e-9)
			assert.Equal(t, result.Probabilities[tt.wantLabel], result.Confidence)
		})
	}
}

func TestLogisticRegression_ClassifyIsIdempotent(t *testing.T) {
	m, err := NewLogisticRegression(irisArtifact())
	require.NoError(t, err)

	features := entity.FeatureVector{5.1, 3.5, 1.4, 0.2}
	first, err := m.Classify(context.Background(), features)
	require.NoError(t, err)
	second, err := m.Classify(context.Background(), features)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestLogisticRegression_InvalidInput(t *testing.T) {
	m, err := NewLogisticRegression(irisArtifact())
	require.NoError(t, err)

	tests := []struct {
		name     string
		features entity.FeatureVector
	}{
		{"too short", entity.FeatureVector{5.1, 3.5, 1.4}},
		{"too long", entity.FeatureVector{5.1, 3.5, 1.4, 0.2, 9}},
		{"empty", entity.FeatureVector{}},
		{"NaN", entity.FeatureVector{5.1, math.NaN(), 1.4, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := m.Classify(context.Background(), tt.features)

			assert.Nil(t, result)
			assert.True(t, errors.Is(err, service.ErrInvalidInput))
		})
	}
}

func TestLogisticRegression_NonFiniteDecision(t *testing.T) {
	m, err := NewLogisticRegression(irisArtifact())
	require.NoError(t, err)

	_, err = m.Classify(context.Background(), entity.FeatureVector{math.MaxFloat64, 0, math.MaxFloat64, 0})

	assert.True(t, errors.Is(err, service.ErrInference))
}

func TestLogisticRegression_ExtremeValuesStayInRange(t *testing.T) {
	m, err := NewLogisticRegression(irisArtifact())
	require.NoError(t, err)

	result, err := m.Classify(context.Background(), entity.FeatureVector{0, 0, 1e3, 1e3})

	require.NoError(t, err)
	assert.Equal(t, 2, result.Label)
	assert.InDelta(t, 1.0, result.Confidence, 1e-12)
}

func TestLogisticRegression_Binary(t *testing.T) {
	m, err := NewLogisticRegression(&Artifact{
		Version:      "binary",
		Classes:      []int{3, 7},
		Coefficients: [][]float64{{2, -1}},
		Intercepts:   []float64{0},
	})
	require.NoError(t, err)

	t.Run("positive decision picks second class", func(t *testing.T) {
		result, err := m.Classify(context.Background(), entity.FeatureVector{1, 0})

		require.NoError(t, err)
		assert.Equal(t, 7, result.Label)
		assert.InDelta(t, 1/(1+math.Exp(-2)), result.Confidence, 1e-12)
	})

	t.Run("negative decision picks first class", func(t *testing.T) {
		result, err := m.Classify(context.Background(), entity.FeatureVector{0, 3})

		require.NoError(t, err)
		assert.Equal(t, 3, result.Label)
		assert.InDelta(t, 1-1/(1+math.Exp(3)), result.Confidence, 1e-12)
	})

	t.Run("zero decision is a tie resolved to first class", func(t *testing.T) {
		result, err := m.Classify(context.Background(), entity.FeatureVector{0, 0})

		require.NoError(t, err)
		assert.Equal(t, 3, result.Label)
		assert.Equal(t, 0.5, result.Confidence)
	})
}

func TestLogisticRegression_ConcurrentClassify(t *testing.T) {
	m, err := NewLogisticRegression(irisArtifact())
	require.NoError(t, err)

	inputs := []entity.FeatureVector{
		{5.1, 3.5, 1.4, 0.2},
		{5.9, 3.0, 4.2, 1.5},
		{6.3, 3.3, 6.0, 2.5},
	}
	want := make([]*entity.PredictionResult, len(inputs))
	for i, in := range inputs {
		want[i], err = m.Classify(context.Background(), in)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for n := 0; n < 60; n++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := m.Classify(context.Background(), inputs[i])
			assert.NoError(t, err)
			assert.Equal(t, want[i], got)
		}(n % len(inputs))
	}
	wg.Wait()
}

func TestNewLogisticRegression_CopiesArtifact(t *testing.T) {
	a := irisArtifact()
	m, err := NewLogisticRegression(a)
	require.NoError(t, err)

	before, err := m.Classify(context.Background(), entity.FeatureVector{5.1, 3.5, 1.4, 0.2})
	require.NoError(t, err)

	a.Coefficients[0][0] = 100
	a.Intercepts[2] = 1000

	after, err := m.Classify(context.Background(), entity.FeatureVector{5.1, 3.5, 1.4, 0.2})
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestLogisticRegression_Info(t *testing.T) {
	m, err := NewLogisticRegression(irisArtifact())
	require.NoError(t, err)

	info := m.Info()
	assert.Equal(t, BackendLocal, info.Backend)
	assert.Equal(t, "iris-test", info.Version)
	assert.Equal(t, 4, info.FeatureCount)
	assert.Equal(t, []int{0, 1, 2}, info.Classes)
	assert.Equal(t, []string{"setosa", "versicolor", "virginica"}, info.ClassNames)
}
