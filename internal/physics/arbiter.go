package physics

import (
	"github.com/san-kum/cpsafe/internal/engine"
	"github.com/san-kum/cpsafe/internal/userdata"
)

// PreSolveHook inspects or adjusts a contact pair before the solver runs.
// Returning false drops the pair for the current step.
type PreSolveHook func(arb *Arbiter) bool

// Arbiter is a view of one touching shape pair, valid only while the
// PreSolveHook it was passed to is running. Overrides made through it apply
// to the current step only.
type Arbiter struct {
	eng     engine.Engine
	rec     engine.ArbiterRecord
	expired bool
	data    userdata.Slot
}

func (a *Arbiter) live(op string) {
	if a == nil || a.expired {
		violation("Arbiter."+op, ErrArbiterExpired)
	}
}

func (a *Arbiter) index(op string, i int) {
	a.live(op)
	if i < 0 || i >= a.eng.ArbiterCount(a.rec) {
		violation("Arbiter."+op, ErrIndexOutOfRange)
	}
}

// ContactPointSet returns up to two contact points with the shared normal.
func (a *Arbiter) ContactPointSet() engine.ContactPointSet {
	a.live("ContactPointSet")
	return a.eng.ArbiterContactPointSet(a.rec)
}

func (a *Arbiter) Count() int {
	a.live("Count")
	return a.eng.ArbiterCount(a.rec)
}

// Normal points from shape A to shape B.
func (a *Arbiter) Normal() Vector {
	a.live("Normal")
	return a.eng.ArbiterNormal(a.rec)
}

// Depth is the signed distance of contact i; negative means overlap.
func (a *Arbiter) Depth(i int) float64 {
	a.index("Depth", i)
	return a.eng.ArbiterDepth(a.rec, i)
}

func (a *Arbiter) PointA(i int) Vector {
	a.index("PointA", i)
	return a.eng.ArbiterPointA(a.rec, i)
}

func (a *Arbiter) PointB(i int) Vector {
	a.index("PointB", i)
	return a.eng.ArbiterPointB(a.rec, i)
}

// Friction is the combined friction the solver will use for this pair.
func (a *Arbiter) Friction() float64 {
	a.live("Friction")
	return a.eng.ArbiterFriction(a.rec)
}

func (a *Arbiter) SetFriction(u float64) {
	a.live("SetFriction")
	a.eng.SetArbiterFriction(a.rec, u)
}

// Restitution is the combined elasticity the solver will use for this pair.
func (a *Arbiter) Restitution() float64 {
	a.live("Restitution")
	return a.eng.ArbiterRestitution(a.rec)
}

func (a *Arbiter) SetRestitution(e float64) {
	a.live("SetRestitution")
	a.eng.SetArbiterRestitution(a.rec, e)
}

func (a *Arbiter) SurfaceVelocity() Vector {
	a.live("SurfaceVelocity")
	return a.eng.ArbiterSurfaceVelocity(a.rec)
}

func (a *Arbiter) SetSurfaceVelocity(v Vector) {
	a.live("SetSurfaceVelocity")
	a.eng.SetArbiterSurfaceVelocity(a.rec, v)
}

// Data returns a slot that lives as long as this view.
func (a *Arbiter) Data() *userdata.Slot {
	a.live("Data")
	return &a.data
}

func (a *Arbiter) expire() {
	a.expired = true
	a.rec = nil
}
