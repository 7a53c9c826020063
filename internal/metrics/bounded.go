package metrics

import (
	"math"

	"github.com/san-kum/cpsafe/internal/sim"
)

// Bounded is the largest absolute position coordinate seen on any body.
type Bounded struct {
	name string
	max  float64
}

func NewBounded() *Bounded {
	return &Bounded{name: "max_coordinate"}
}

func (b *Bounded) Name() string { return b.name }

func (b *Bounded) Observe(x sim.State, t float64) {
	for i := 0; (i+1)*sim.StateWidth <= len(x); i++ {
		b.max = math.Max(b.max, math.Max(math.Abs(x.X(i)), math.Abs(x.Y(i))))
	}
}

func (b *Bounded) Value() float64 { return b.max }

func (b *Bounded) Reset() { b.max = 0 }
