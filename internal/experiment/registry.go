package experiment

import (
	"fmt"
	"slices"

	"github.com/san-kum/cpsafe/internal/metrics"
	"github.com/san-kum/cpsafe/internal/scene"
	"github.com/san-kum/cpsafe/internal/sim"
)

// Registry maps metric names to constructors bound to a scene.
type Registry struct {
	metrics map[string]func(*scene.Scene) sim.Metric
}

var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(*scene.Scene) sim.Metric),
	}

	r.metrics["energy"] = func(sc *scene.Scene) sim.Metric {
		masses := sc.Masses()
		moments := make([]float64, len(sc.Bodies))
		for i, b := range sc.Bodies {
			if masses[i] != 0 {
				moments[i] = b.Moment()
			}
		}
		return metrics.NewEnergy(masses, moments)
	}
	r.metrics["max_coordinate"] = func(*scene.Scene) sim.Metric { return metrics.NewBounded() }
	r.metrics["bounces"] = func(sc *scene.Scene) sim.Metric { return metrics.NewBounces(sc.TrackedIndex(), 1) }
	r.metrics["min_height"] = func(sc *scene.Scene) sim.Metric { return metrics.NewMinHeight(sc.TrackedIndex()) }
	r.metrics["max_penetration"] = func(*scene.Scene) sim.Metric { return metrics.NewContacts() }

	return r
}

func (r *Registry) GetMetric(name string, sc *scene.Scene) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(sc), nil
}

// Build constructs the named metrics, or every registered metric when
// names is empty.
func (r *Registry) Build(names []string, sc *scene.Scene) ([]sim.Metric, error) {
	if len(names) == 0 {
		names = r.ListMetrics()
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name, sc)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// DefaultMetrics is the metric set every CLI run records.
func (r *Registry) DefaultMetrics(sc *scene.Scene) []sim.Metric {
	ms, _ := r.Build(nil, sc)
	return ms
}
