package model

// irisArtifact returns a small multinomial model shaped like the shipped iris artifact
func irisArtifact() *Artifact {
	return &Artifact{
		Version:      "iris-test",
		FeatureNames: []string{"sepal_length", "sepal_width", "petal_length", "petal_width"},
		Classes:      []int{0, 1, 2},
		ClassNames:   []string{"setosa", "versicolor", "virginica"},
		Coefficients: [][]float64{
			{-0.3935, 0.9625, -2.3751, -0.9987},
			{0.5085, -0.2549, -0.2129, -0.7757},
			{-0.1150, -0.7076, 2.5880, 1.7744},
		},
		Intercepts: []float64{9.0078, 1.8675, -10.8753},
	}
}
