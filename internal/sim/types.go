package sim

import (
	"math"

	"github.com/san-kum/cpsafe/internal/physics"
)

// StateWidth is the number of values sampled per body: x, y, angle, vx,
// vy and angular velocity.
const StateWidth = 6

// State is the flattened sample of every scene body, StateWidth values per
// body in scene order.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Bodies() int { return len(s) / StateWidth }

// Body returns the slice of s belonging to body i.
func (s State) Body(i int) State {
	return s[i*StateWidth : (i+1)*StateWidth]
}

func (s State) X(i int) float64  { return s[i*StateWidth] }
func (s State) Y(i int) float64  { return s[i*StateWidth+1] }
func (s State) VX(i int) float64 { return s[i*StateWidth+3] }
func (s State) VY(i int) float64 { return s[i*StateWidth+4] }

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// ContactObserver is implemented by metrics that also want every contact
// pair the Engine reports during a step.
type ContactObserver interface {
	OnContact(arb *physics.Arbiter)
}

type Observer interface {
	OnStep(x State, t float64)
}

type Config struct {
	Dt    float64
	Steps int
}

type Result struct {
	States     []State
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
	Contacts   int
}
