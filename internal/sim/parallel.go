package sim

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/scene"
)

// MetricFactory builds fresh metrics for one scene; metrics carry state and
// are never shared between runs.
type MetricFactory func(sc *scene.Scene) []Metric

// Ensemble runs several configs at once. Each run builds, steps and
// releases its own scene on its own goroutine.
type Ensemble struct {
	configs []*config.Config
	metrics MetricFactory
	opts    []physics.Option
	limit   int
}

func NewEnsemble(configs []*config.Config, metrics MetricFactory, opts ...physics.Option) *Ensemble {
	return &Ensemble{configs: configs, metrics: metrics, opts: opts, limit: -1}
}

// SetLimit caps the number of concurrent runs; n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) {
	if n <= 0 {
		n = -1
	}
	e.limit = n
}

// Run returns one result per config, in config order. The first failure
// cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.configs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for i, cfg := range e.configs {
		g.Go(func() error {
			sc, err := scene.Build(cfg, e.opts...)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			defer sc.Release()

			s := New(sc)
			if e.metrics != nil {
				for _, m := range e.metrics(sc) {
					s.AddMetric(m)
				}
			}
			res, err := s.Run(gctx, Config{Dt: cfg.Dt, Steps: cfg.Steps})
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
