package cpengine

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/cpsafe/internal/engine"
)

type spaceRecord struct {
	space    *cp.Space
	preSolve engine.PreSolveFunc
}

func (e *Engine) SpaceCreate() engine.SpaceRecord {
	// NewSpace builds its static body through cp.NewBody.
	bodyCreateMu.Lock()
	rec := &spaceRecord{space: cp.NewSpace()}
	bodyCreateMu.Unlock()

	// All shapes keep collision type 0, so this handler sees every pair
	// exactly once.
	h := rec.space.NewCollisionHandler(0, 0)
	h.PreSolveFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		if rec.preSolve == nil {
			return true
		}
		return rec.preSolve(arb)
	}

	e.track(rec)
	e.logger.Debug("space created")
	return rec
}

func (e *Engine) SpaceDestroy(r engine.SpaceRecord) {
	rec := e.space(r)
	e.untrack(rec)

	var shapes []*cp.Shape
	rec.space.EachShape(func(s *cp.Shape) { shapes = append(shapes, s) })
	for _, s := range shapes {
		rec.space.RemoveShape(s)
	}

	var bodies []*cp.Body
	rec.space.EachBody(func(b *cp.Body) { bodies = append(bodies, b) })
	for _, b := range bodies {
		if b != rec.space.StaticBody {
			rec.space.RemoveBody(b)
		}
	}

	rec.preSolve = nil
	e.logger.Debug("space destroyed", "detached_shapes", len(shapes), "detached_bodies", len(bodies))
}

func (e *Engine) SpaceAddBody(r engine.SpaceRecord, br engine.BodyRecord) {
	b := e.body(br)
	e.mustOwn(b)
	e.space(r).space.AddBody(b)
}

func (e *Engine) SpaceRemoveBody(r engine.SpaceRecord, br engine.BodyRecord) {
	b := e.body(br)
	e.mustOwn(b)
	e.space(r).space.RemoveBody(b)
}

func (e *Engine) SpaceContainsBody(r engine.SpaceRecord, br engine.BodyRecord) bool {
	return e.space(r).space.ContainsBody(e.body(br))
}

func (e *Engine) SpaceAddShape(r engine.SpaceRecord, sr engine.ShapeRecord) {
	s := e.shape(sr)
	e.mustOwn(s)
	e.space(r).space.AddShape(s)
}

func (e *Engine) SpaceRemoveShape(r engine.SpaceRecord, sr engine.ShapeRecord) {
	s := e.shape(sr)
	e.mustOwn(s)
	e.space(r).space.RemoveShape(s)
}

func (e *Engine) SpaceContainsShape(r engine.SpaceRecord, sr engine.ShapeRecord) bool {
	return e.space(r).space.ContainsShape(e.shape(sr))
}

func (e *Engine) SpaceStep(r engine.SpaceRecord, dt float64) {
	e.space(r).space.Step(dt)
}

func (e *Engine) SetSpacePreSolve(r engine.SpaceRecord, fn engine.PreSolveFunc) {
	e.space(r).preSolve = fn
}

func (e *Engine) SpaceGravity(r engine.SpaceRecord) engine.Vector {
	return fromCP(e.space(r).space.Gravity())
}

func (e *Engine) SetSpaceGravity(r engine.SpaceRecord, g engine.Vector) {
	e.space(r).space.SetGravity(toCP(g))
}

func (e *Engine) SpaceDamping(r engine.SpaceRecord) float64 {
	return e.space(r).space.Damping()
}

func (e *Engine) SetSpaceDamping(r engine.SpaceRecord, d float64) {
	e.space(r).space.SetDamping(d)
}

func (e *Engine) SpaceCollisionSlop(r engine.SpaceRecord) float64 {
	return floatField(e.space(r).space, "collisionSlop")
}

func (e *Engine) SetSpaceCollisionSlop(r engine.SpaceRecord, slop float64) {
	e.space(r).space.SetCollisionSlop(slop)
}

func (e *Engine) SpaceCollisionBias(r engine.SpaceRecord) float64 {
	return floatField(e.space(r).space, "collisionBias")
}

func (e *Engine) SetSpaceCollisionBias(r engine.SpaceRecord, bias float64) {
	setFloatField(e.space(r).space, "collisionBias", bias)
}

func (e *Engine) SpaceCollisionPersistence(r engine.SpaceRecord) uint {
	return uintField(e.space(r).space, "collisionPersistence")
}

func (e *Engine) SetSpaceCollisionPersistence(r engine.SpaceRecord, steps uint) {
	setUintField(e.space(r).space, "collisionPersistence", steps)
}

func (e *Engine) SpaceIdleSpeedThreshold(r engine.SpaceRecord) float64 {
	return e.space(r).space.IdleSpeedThreshold
}

func (e *Engine) SetSpaceIdleSpeedThreshold(r engine.SpaceRecord, v float64) {
	e.space(r).space.IdleSpeedThreshold = v
}

func (e *Engine) SpaceIterations(r engine.SpaceRecord) int {
	return int(e.space(r).space.Iterations)
}

// SetSpaceIterations stores n in cp's unsigned iteration count; a negative n
// wraps.
func (e *Engine) SetSpaceIterations(r engine.SpaceRecord, n int) {
	e.space(r).space.Iterations = uint(n)
}

// SpaceSleepTimeThreshold reports cp's "never sleep" sentinel as +Inf.
func (e *Engine) SpaceSleepTimeThreshold(r engine.SpaceRecord) float64 {
	return fromInfinity(e.space(r).space.SleepTimeThreshold)
}

// fromInfinity maps cp.INFINITY, which is math.MaxFloat64, to +Inf.
func fromInfinity(f float64) float64 {
	if f == cp.INFINITY {
		return math.Inf(1)
	}
	return f
}

func (e *Engine) SetSpaceSleepTimeThreshold(r engine.SpaceRecord, t float64) {
	if math.IsInf(t, 1) {
		t = cp.INFINITY
	}
	e.space(r).space.SleepTimeThreshold = t
}
