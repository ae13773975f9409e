package model

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArtifact(t *testing.T) {
	t.Run("loads shipped JSON artifact", func(t *testing.T) {
		a, err := LoadArtifact(filepath.Join("..", "..", "..", "model", "logistic_model.json"))

		require.NoError(t, err)
		assert.Equal(t, 4, a.FeatureCount())
		assert.Equal(t, []int{0, 1, 2}, a.Classes)
		assert.False(t, a.Binary())
	})

	t.Run("loads YAML artifact", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.yaml")
		content := []byte(`
version: yaml-v1
classes: [0, 1]
coefficients:
  - [0.5, -0.25]
intercepts: [0.1]
`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		a, err := LoadArtifact(path)

		require.NoError(t, err)
		assert.Equal(t, "yaml-v1", a.Version)
		assert.True(t, a.Binary())
		assert.Equal(t, 2, a.FeatureCount())
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.pkl")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

		_, err := LoadArtifact(path)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadArtifact(filepath.Join(t.TempDir(), "absent.json"))

		assert.Error(t, err)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))

		_, err := LoadArtifact(path)

		assert.Error(t, err)
	})

	t.Run("invalid shape is rejected at load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "model.json")
		content := []byte(`{"classes":[0,1,2],"coefficients":[[1,2]],"intercepts":[0]}`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		_, err := LoadArtifact(path)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "coefficient rows")
	})
}

func TestArtifact_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *Artifact)
		wantErr string
	}{
		{"valid", func(a *Artifact) {}, ""},
		{"single class", func(a *Artifact) { a.Classes = []int{0} }, "two classes"},
		{"duplicate class", func(a *Artifact) { a.Classes = []int{0, 1, 1} }, "duplicate"},
		{"intercept count", func(a *Artifact) { a.Intercepts = a.Intercepts[:2] }, "intercepts"},
		{"ragged rows", func(a *Artifact) { a.Coefficients[1] = []float64{1, 2} }, "row 1"},
		{"non-finite coefficient", func(a *Artifact) { a.Coefficients[2][0] = math.Inf(1) }, "non-finite"},
		{"non-finite intercept", func(a *Artifact) { a.Intercepts[0] = math.NaN() }, "non-finite"},
		{"feature names", func(a *Artifact) { a.FeatureNames = []string{"a"} }, "feature names"},
		{"class names", func(a *Artifact) { a.ClassNames = []string{"a", "b"} }, "class names"},
		{"empty rows", func(a *Artifact) {
			a.Coefficients = [][]float64{{}, {}, {}}
		}, "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := irisArtifact()
			tt.mutate(a)

			err := a.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
