package model

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/niallroche/data-engineering-mlops/internal/domain/entity"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
)

// CachedClassifier memoizes a pure Classifier in a bounded LRU.
// Only successful results are cached; cached results are shared and read-only.
type CachedClassifier struct {
	next  service.Classifier
	cache *lru.Cache[string, *entity.PredictionResult]
}

// NewCachedClassifier wraps next with an LRU holding up to size results
func NewCachedClassifier(next service.Classifier, size int) (*CachedClassifier, error) {
	cache, err := lru.New[string, *entity.PredictionResult](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction cache: %w", err)
	}
	return &CachedClassifier{next: next, cache: cache}, nil
}

// Classify returns a cached result for features, classifying on a miss
func (c *CachedClassifier) Classify(ctx context.Context, features entity.FeatureVector) (*entity.PredictionResult, error) {
	key := features.Key()
	if result, ok := c.cache.Get(key); ok {
		return result, nil
	}

	result, err := c.next.Classify(ctx, features)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, result)
	return result, nil
}

// Info returns metadata about the wrapped model
func (c *CachedClassifier) Info() service.ModelInfo {
	return c.next.Info()
}

// size returns the number of cached results
func (c *CachedClassifier) size() int {
	return c.cache.Len()
}

// Ping checks the wrapped classifier if it supports it
func (c *CachedClassifier) Ping(ctx context.Context) error {
	if p, ok := c.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
