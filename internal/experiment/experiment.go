// Package experiment ties a scene config, its metrics and a simulator into
// one run.
package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/scene"
	"github.com/san-kum/cpsafe/internal/sim"
)

type Experiment struct {
	cfg       *config.Config
	scene     *scene.Scene
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg}
}

// Setup builds the scene and attaches the metrics. Call Close when done.
func (e *Experiment) Setup(metrics []string, opts ...physics.Option) error {
	sc, err := scene.Build(e.cfg, opts...)
	if err != nil {
		return err
	}
	ms, err := DefaultRegistry.Build(metrics, sc)
	if err != nil {
		sc.Release()
		return err
	}

	e.scene = sc
	e.simulator = sim.New(sc)
	for _, m := range ms {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, sim.Config{Dt: e.cfg.Dt, Steps: e.cfg.Steps})
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Scene() *scene.Scene { return e.scene }

func (e *Experiment) Close() {
	if e.scene != nil {
		e.scene.Release()
		e.scene, e.simulator = nil, nil
	}
}
