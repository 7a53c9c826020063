package metrics

import "github.com/san-kum/cpsafe/internal/sim"

// Bounces counts how often the tracked body's vertical velocity turns from
// falling to rising faster than threshold.
type Bounces struct {
	name      string
	body      int
	threshold float64
	falling   bool
	count     int
}

func NewBounces(body int, threshold float64) *Bounces {
	return &Bounces{name: "bounces", body: body, threshold: threshold}
}

func (b *Bounces) Name() string { return b.name }

func (b *Bounces) Observe(x sim.State, t float64) {
	if (b.body+1)*sim.StateWidth > len(x) {
		return
	}
	vy := x.VY(b.body)
	switch {
	case vy < -b.threshold:
		b.falling = true
	case vy > b.threshold && b.falling:
		b.falling = false
		b.count++
	}
}

func (b *Bounces) Value() float64 { return float64(b.count) }

func (b *Bounces) Reset() {
	b.falling = false
	b.count = 0
}
