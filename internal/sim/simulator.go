package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/scene"
)

// Simulator steps one scene and samples every body after each step. It
// borrows the scene; the caller still releases it.
type Simulator struct {
	scene     *scene.Scene
	metrics   []Metric
	observers []Observer
	contacts  int
	hooked    bool
}

func New(sc *scene.Scene) *Simulator {
	return &Simulator{
		scene:     sc,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Sample writes the current scene state into dst, growing it as needed.
func (s *Simulator) Sample(dst State) State {
	n := len(s.scene.Bodies) * StateWidth
	if cap(dst) < n {
		dst = make(State, n)
	}
	dst = dst[:n]
	for i, b := range s.scene.Bodies {
		p, v := b.Position(), b.Velocity()
		copy(dst.Body(i), []float64{p.X, p.Y, b.Angle(), v.X, v.Y, b.AngularVelocity()})
	}
	return dst
}

// hook installs the pre-solve hook once per scene. Hooks cannot be removed
// from a Space, so later runs reuse it.
func (s *Simulator) hook() {
	if s.hooked {
		return
	}
	s.hooked = true
	s.scene.Space.OnPreSolve(func(arb *physics.Arbiter) bool {
		s.contacts++
		for _, m := range s.metrics {
			if co, ok := m.(ContactObserver); ok {
				co.OnContact(arb)
			}
		}
		return true
	})
}

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		States:  make([]State, 0, cfg.Steps+1),
		Times:   make([]float64, 0, cfg.Steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}
	s.hook()
	s.contacts = 0

	pool := PoolFor(len(s.scene.Bodies))
	x := s.Sample(pool.Get())
	t := 0.0
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)

	var runErr error
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}
		for _, obs := range s.observers {
			obs.OnStep(x, t)
		}

		s.scene.Space.Step(cfg.Dt)
		t += cfg.Dt
		x = s.Sample(x)

		if !x.IsValid() {
			runErr = fmt.Errorf("%w: step %d, t=%.4f", ErrUnbounded, i, t)
			break
		}

		result.StepsTaken++
		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
	}

	if runErr == nil {
		for _, m := range s.metrics {
			m.Observe(x, t)
		}
	}
	pool.Put(x)

	result.Contacts = s.contacts
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, runErr
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Steps <= 0 {
		return fmt.Errorf("%w: steps must be positive, got %d", ErrInvalidConfig, cfg.Steps)
	}
	if len(s.scene.Bodies) == 0 {
		return fmt.Errorf("%w: scene has no bodies", ErrInvalidConfig)
	}
	return nil
}

// RunWithCallback steps until cfg.Steps, the context ends, or callback
// returns false. It records nothing; the State passed to callback is reused
// and must be cloned to keep.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(State, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}

	pool := PoolFor(len(s.scene.Bodies))
	x := s.Sample(pool.Get())
	defer func() { pool.Put(x) }()
	t := 0.0
	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !callback(x, t) {
			return nil
		}

		s.scene.Space.Step(cfg.Dt)
		t += cfg.Dt
		x = s.Sample(x)

		if !x.IsValid() {
			return fmt.Errorf("%w: t=%.4f", ErrUnbounded, t)
		}
	}
	callback(x, t)
	return nil
}
