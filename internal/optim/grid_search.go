// Package optim sweeps scene parameters and picks the best run by metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/experiment"
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/scene"
	"github.com/san-kum/cpsafe/internal/sim"
)

var ErrUnknownParam = errors.New("optim: unknown parameter")

// Setter writes one swept value into a config.
type Setter func(cfg *config.Config, v float64)

func eachShape(cfg *config.Config, fn func(*config.ShapeConfig)) {
	for i := range cfg.Bodies {
		fn(&cfg.Bodies[i].Shape)
	}
}

// Setters are the parameters a sweep may vary. Body parameters apply to
// every body; mass and start_y to the tracked body only.
var Setters = map[string]Setter{
	"elasticity": func(cfg *config.Config, v float64) {
		eachShape(cfg, func(s *config.ShapeConfig) { s.Elasticity = v })
	},
	"friction": func(cfg *config.Config, v float64) {
		eachShape(cfg, func(s *config.ShapeConfig) { s.Friction = v })
	},
	"floor_elasticity": func(cfg *config.Config, v float64) {
		for i := range cfg.Floors {
			cfg.Floors[i].Elasticity = v
		}
	},
	"gravity_y": func(cfg *config.Config, v float64) { cfg.Space.Gravity.Y = v },
	"damping":   func(cfg *config.Config, v float64) { cfg.Space.Damping = &v },
	"mass": func(cfg *config.Config, v float64) {
		if i := cfg.TrackedIndex(); i < len(cfg.Bodies) {
			cfg.Bodies[i].Mass, cfg.Bodies[i].Moment = v, 0
		}
	},
	"start_y": func(cfg *config.Config, v float64) {
		if i := cfg.TrackedIndex(); i < len(cfg.Bodies) {
			cfg.Bodies[i].Position.Y = v
		}
	},
}

type Param struct {
	Name   string
	Values []float64
}

// ParseParam reads "name=v1,v2,..." or "name=min:max:n" for n evenly
// spaced values from min to max.
func ParseParam(s string) (Param, error) {
	name, list, ok := strings.Cut(s, "=")
	if !ok || list == "" {
		return Param{}, fmt.Errorf("parameter %q: want name=v1,v2,... or name=min:max:n", s)
	}
	if _, ok := Setters[name]; !ok {
		return Param{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownParam, name, ListParams())
	}
	p := Param{Name: name}

	if parts := strings.Split(list, ":"); len(parts) == 3 {
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err := errors.Join(err1, err2, err3); err != nil {
			return Param{}, fmt.Errorf("parameter %s: %w", name, err)
		}
		if n < 1 {
			return Param{}, fmt.Errorf("parameter %s: need at least one value", name)
		}
		p.Values = Linspace(lo, hi, n)
		return p, nil
	}

	for _, f := range strings.Split(list, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return Param{}, fmt.Errorf("parameter %s: %w", name, err)
		}
		p.Values = append(p.Values, v)
	}
	return p, nil
}

// Linspace returns n values from lo to hi inclusive; n == 1 gives lo.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = lo
		return out
	}
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

func ListParams() []string {
	return slices.Sorted(maps.Keys(Setters))
}

// Trial is one point of the grid and the metric it produced.
type Trial struct {
	Params map[string]float64
	Value  float64
}

type GridSearch struct {
	params   []Param
	maximize bool
	limit    int
}

func NewGridSearch(params []Param) *GridSearch {
	return &GridSearch{params: params}
}

// Maximize makes Search prefer the largest metric value.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// SetLimit caps concurrent runs; see sim.Ensemble.SetLimit.
func (g *GridSearch) SetLimit(n int) *GridSearch {
	g.limit = n
	return g
}

// Search runs every combination of parameter values on a copy of base and
// returns the best trial and all trials in grid order. Trials whose metric
// is not finite never win.
func (g *GridSearch) Search(ctx context.Context, base *config.Config, metricName string, opts ...physics.Option) (Trial, []Trial, error) {
	if !slices.Contains(experiment.DefaultRegistry.ListMetrics(), metricName) {
		return Trial{}, nil, fmt.Errorf("unknown metric: %s", metricName)
	}

	var points []map[string]float64
	g.searchRecursive(0, map[string]float64{}, &points)

	configs := make([]*config.Config, len(points))
	for i, pt := range points {
		cfg := base.Clone()
		for name, v := range pt {
			set, ok := Setters[name]
			if !ok {
				return Trial{}, nil, fmt.Errorf("%w: %s", ErrUnknownParam, name)
			}
			set(cfg, v)
		}
		if err := cfg.Validate(); err != nil {
			return Trial{}, nil, fmt.Errorf("trial %v: %w", pt, err)
		}
		configs[i] = cfg
	}

	factory := func(sc *scene.Scene) []sim.Metric {
		ms, _ := experiment.DefaultRegistry.Build([]string{metricName}, sc)
		return ms
	}
	ens := sim.NewEnsemble(configs, factory, opts...)
	ens.SetLimit(g.limit)
	results, err := ens.Run(ctx)
	if err != nil {
		return Trial{}, nil, err
	}

	best := Trial{Value: math.Inf(1)}
	if g.maximize {
		best.Value = math.Inf(-1)
	}
	trials := make([]Trial, len(points))
	for i, res := range results {
		trials[i] = Trial{Params: points[i], Value: res.Metrics[metricName]}
		v := trials[i].Value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if (g.maximize && v > best.Value) || (!g.maximize && v < best.Value) {
			best = trials[i]
		}
	}
	if best.Params == nil {
		return best, trials, fmt.Errorf("no trial produced a finite %s", metricName)
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(depth int, current map[string]float64, out *[]map[string]float64) {
	if depth == len(g.params) {
		*out = append(*out, maps.Clone(current))
		return
	}

	p := g.params[depth]
	for _, val := range p.Values {
		current[p.Name] = val
		g.searchRecursive(depth+1, current, out)
	}
	delete(current, p.Name)
}
