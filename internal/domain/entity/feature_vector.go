package entity

import (
	"strconv"
	"strings"
)

// FeatureVector is the ordered numeric input to a classifier
type FeatureVector []float64

// NewFeatureVector copies values so the caller can't mutate the vector after hand-off
func NewFeatureVector(values []float64) FeatureVector {
	v := make(FeatureVector, len(values))
	copy(v, values)
	return v
}

// Key returns a stable string form of the vector, usable as a cache key
func (v FeatureVector) Key() string {
	var b strings.Builder
	for i, x := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(x, 'g', -1, 64))
	}
	return b.String()
}
