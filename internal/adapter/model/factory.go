package model

import (
	"fmt"

	"github.com/niallroche/data-engineering-mlops/internal/adapter/client"
	"github.com/niallroche/data-engineering-mlops/internal/domain/service"
	"github.com/niallroche/data-engineering-mlops/internal/infrastructure/config"
)

// NewClassifier builds the configured classifier, wrapping it in a prediction
// cache when cfg.CacheSize is positive. It is called once at startup.
func NewClassifier(cfg *config.ModelConfig) (service.Classifier, error) {
	var classifier service.Classifier

	switch cfg.Backend {
	case config.BackendLocal:
		lr, err := Load(cfg.Path)
		if err != nil {
			return nil, err
		}
		classifier = lr
	case config.BackendRemote:
		mc := client.NewModelClient(cfg.RemoteURL, cfg.Timeout)
		classifier = client.NewRemoteClassifier(mc, cfg.FeatureCount, cfg.Classes, cfg.Version)
	default:
		return nil, fmt.Errorf("unsupported model backend %q", cfg.Backend)
	}

	if cfg.CacheSize > 0 {
		return NewCachedClassifier(classifier, cfg.CacheSize)
	}
	return classifier, nil
}
