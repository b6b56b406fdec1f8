package config

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/marmos91/htstore/pkg/store"
)

// CreateStore creates a credential store instance from configuration.
func CreateStore(cfg StoreConfig) (*store.Store, error) {
	files := make([]store.FileConfig, 0, len(cfg.Files))
	for _, f := range cfg.Files {
		files = append(files, store.FileConfig{
			Path:    f.Path,
			Group:   f.Group,
			Default: f.Default,
		})
	}

	s, err := store.New(store.Config{
		Files:    files,
		MaxUsers: cfg.MaxUsers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create credential store: %w", err)
	}

	return s, nil
}

// CreateMetrics registers store metrics on the default Prometheus registerer.
//
// Returns nil when metrics are disabled; the store treats nil metrics as a
// no-op, so callers can pass the result to SetMetrics unconditionally.
func CreateMetrics(cfg MetricsConfig) *store.Metrics {
	if !cfg.Enabled {
		return nil
	}

	return store.NewMetrics(prometheus.DefaultRegisterer)
}
