package metrics

import "github.com/san-kum/cpsafe/internal/sim"

// Energy is the mean total kinetic energy over all samples, translational
// plus rotational.
type Energy struct {
	name        string
	masses      []float64
	moments     []float64
	samples     int
	totalEnergy float64
}

// NewEnergy takes per-body masses and moments in scene order. Bodies with a
// zero mass contribute nothing.
func NewEnergy(masses, moments []float64) *Energy {
	return &Energy{
		name:    "energy",
		masses:  masses,
		moments: moments,
	}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x sim.State, t float64) {
	total := 0.0
	for i, m := range e.masses {
		if m == 0 || (i+1)*sim.StateWidth > len(x) {
			continue
		}
		b := x.Body(i)
		vx, vy, w := b[3], b[4], b[5]
		total += 0.5 * m * (vx*vx + vy*vy)
		if i < len(e.moments) {
			total += 0.5 * e.moments[i] * w * w
		}
	}
	e.totalEnergy += total
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.totalEnergy / float64(e.samples)
}

func (e *Energy) Reset() {
	e.totalEnergy = 0
	e.samples = 0
}
