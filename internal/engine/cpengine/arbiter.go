package cpengine

import (
	"github.com/jakecoffman/cp"
	"github.com/san-kum/cpsafe/internal/engine"
)

func (e *Engine) ArbiterContactPointSet(r engine.ArbiterRecord) engine.ContactPointSet {
	set := e.arbiter(r).ContactPointSet()
	out := engine.ContactPointSet{
		Count:  set.Count,
		Normal: fromCP(set.Normal),
	}
	for i := 0; i < set.Count && i < len(out.Points); i++ {
		out.Points[i] = engine.ContactPoint{
			PointA:   fromCP(set.Points[i].PointA),
			PointB:   fromCP(set.Points[i].PointB),
			Distance: set.Points[i].Distance,
		}
	}
	return out
}

func (e *Engine) ArbiterCount(r engine.ArbiterRecord) int {
	return e.arbiter(r).Count()
}

func (e *Engine) ArbiterNormal(r engine.ArbiterRecord) engine.Vector {
	return fromCP(e.arbiter(r).Normal())
}

func (e *Engine) ArbiterDepth(r engine.ArbiterRecord, i int) float64 {
	return e.arbiter(r).ContactPointSet().Points[i].Distance
}

func (e *Engine) ArbiterPointA(r engine.ArbiterRecord, i int) engine.Vector {
	return fromCP(e.arbiter(r).ContactPointSet().Points[i].PointA)
}

func (e *Engine) ArbiterPointB(r engine.ArbiterRecord, i int) engine.Vector {
	return fromCP(e.arbiter(r).ContactPointSet().Points[i].PointB)
}

func (e *Engine) ArbiterFriction(r engine.ArbiterRecord) float64 {
	return floatField(e.arbiter(r), "u")
}

func (e *Engine) SetArbiterFriction(r engine.ArbiterRecord, u float64) {
	setFloatField(e.arbiter(r), "u", u)
}

func (e *Engine) ArbiterRestitution(r engine.ArbiterRecord) float64 {
	return floatField(e.arbiter(r), "e")
}

func (e *Engine) SetArbiterRestitution(r engine.ArbiterRecord, el float64) {
	setFloatField(e.arbiter(r), "e", el)
}

// The stored surface velocity is relative to the arbiter's internal shape
// order; it is flipped so callers always see it from shape A.
func (e *Engine) ArbiterSurfaceVelocity(r engine.ArbiterRecord) engine.Vector {
	arb := e.arbiter(r)
	return fromCP(vectorField(arb, "surface_vr").Mult(swapSign(arb)))
}

func (e *Engine) SetArbiterSurfaceVelocity(r engine.ArbiterRecord, v engine.Vector) {
	arb := e.arbiter(r)
	setVectorField(arb, "surface_vr", toCP(v).Mult(swapSign(arb)))
}

func swapSign(arb *cp.Arbiter) float64 {
	if boolField(arb, "swapped") {
		return -1
	}
	return 1
}
