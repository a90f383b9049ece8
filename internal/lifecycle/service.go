// Package lifecycle orchestrates the training-job lifecycle: job records,
// dataset classes, preprocessing, training, deployment, inference and
// approval. It is the only package that coordinates the store, the compute
// backend and the object store; handlers stay thin.
package lifecycle

import (
	"time"

	"github.com/acousticlabs/trainyard/internal/cache"
	"github.com/acousticlabs/trainyard/internal/compute"
	"github.com/acousticlabs/trainyard/internal/objectstore"
	"github.com/acousticlabs/trainyard/internal/store"
)

// Config carries the service-level knobs the orchestrator needs.
type Config struct {
	Bucket       string
	PresignTTL   time.Duration
	ClassListTTL time.Duration
}

// Service implements every lifecycle operation. All dependencies are
// interfaces injected at construction.
type Service struct {
	store   store.Store
	compute compute.Provider
	objects objectstore.Store
	cache   cache.Cache
	cfg     Config
}

// NewService creates a Service.
func NewService(st store.Store, cp compute.Provider, obj objectstore.Store, ca cache.Cache, cfg Config) *Service {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	if cfg.ClassListTTL <= 0 {
		cfg.ClassListTTL = 60 * time.Second
	}
	return &Service{
		store:   st,
		compute: cp,
		objects: obj,
		cache:   ca,
		cfg:     cfg,
	}
}
