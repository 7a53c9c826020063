package metrics

import (
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/sim"
)

var _ sim.ContactObserver = (*Contacts)(nil)

// Contacts is the deepest penetration reported by any contact pair, as a
// positive distance. It also counts contact points.
type Contacts struct {
	name   string
	points int
	depth  float64
}

func NewContacts() *Contacts {
	return &Contacts{name: "max_penetration"}
}

func (c *Contacts) Name() string { return c.name }

func (c *Contacts) Observe(x sim.State, t float64) {}

func (c *Contacts) OnContact(arb *physics.Arbiter) {
	n := arb.Count()
	c.points += n
	for i := range n {
		if d := -arb.Depth(i); d > c.depth {
			c.depth = d
		}
	}
}

func (c *Contacts) Value() float64 { return c.depth }

// Points is the number of contact points seen since the last Reset.
func (c *Contacts) Points() int { return c.points }

func (c *Contacts) Reset() {
	c.points = 0
	c.depth = 0
}
