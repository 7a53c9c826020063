package cpengine

import (
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/cpsafe/internal/engine"
)

// cp numbers bodies from an unguarded package counter. Every path into
// cp.NewBody, cp.NewSpace included, holds this lock.
var bodyCreateMu sync.Mutex

func (e *Engine) BodyCreate(mass, moment float64) engine.BodyRecord {
	bodyCreateMu.Lock()
	b := cp.NewBody(mass, moment)
	bodyCreateMu.Unlock()
	e.track(b)
	return b
}

func (e *Engine) BodyDestroy(r engine.BodyRecord) {
	b := e.body(r)
	e.untrack(b)
	b.UserData = nil
}

func (e *Engine) BodyKind(r engine.BodyRecord) engine.BodyKind {
	return kindFromCP(e.body(r).GetType())
}

func (e *Engine) SetBodyKind(r engine.BodyRecord, kind engine.BodyKind) {
	e.body(r).SetType(kindToCP(kind))
}

func (e *Engine) BodyPosition(r engine.BodyRecord) engine.Vector {
	return fromCP(e.body(r).Position())
}

func (e *Engine) SetBodyPosition(r engine.BodyRecord, p engine.Vector) {
	e.body(r).SetPosition(toCP(p))
}

func (e *Engine) BodyAngle(r engine.BodyRecord) float64 {
	return e.body(r).Angle()
}

func (e *Engine) SetBodyAngle(r engine.BodyRecord, radians float64) {
	e.body(r).SetAngle(radians)
}

func (e *Engine) BodyVelocity(r engine.BodyRecord) engine.Vector {
	return fromCP(e.body(r).Velocity())
}

func (e *Engine) SetBodyVelocity(r engine.BodyRecord, v engine.Vector) {
	e.body(r).SetVelocityVector(toCP(v))
}

func (e *Engine) BodyAngularVelocity(r engine.BodyRecord) float64 {
	return e.body(r).AngularVelocity()
}

func (e *Engine) SetBodyAngularVelocity(r engine.BodyRecord, w float64) {
	e.body(r).SetAngularVelocity(w)
}

func (e *Engine) BodyForce(r engine.BodyRecord) engine.Vector {
	return fromCP(e.body(r).Force())
}

func (e *Engine) SetBodyForce(r engine.BodyRecord, f engine.Vector) {
	e.body(r).SetForce(toCP(f))
}

func (e *Engine) BodyTorque(r engine.BodyRecord) float64 {
	return e.body(r).Torque()
}

func (e *Engine) SetBodyTorque(r engine.BodyRecord, t float64) {
	e.body(r).SetTorque(t)
}

// BodyMass reports cp's infinite mass sentinel as +Inf.
func (e *Engine) BodyMass(r engine.BodyRecord) float64 {
	return fromInfinity(e.body(r).Mass())
}

func (e *Engine) SetBodyMass(r engine.BodyRecord, m float64) {
	e.body(r).SetMass(m)
}

func (e *Engine) BodyMoment(r engine.BodyRecord) float64 {
	return fromInfinity(e.body(r).Moment())
}

func (e *Engine) SetBodyMoment(r engine.BodyRecord, i float64) {
	e.body(r).SetMoment(i)
}

func (e *Engine) BodyCenterOfGravity(r engine.BodyRecord) engine.Vector {
	return fromCP(e.body(r).CenterOfGravity())
}

// SetBodyCenterOfGravity matches cpBodySetCenterOfGravity: the body is woken
// and the transform is left for the next step to refresh.
func (e *Engine) SetBodyCenterOfGravity(r engine.BodyRecord, cog engine.Vector) {
	b := e.body(r)
	b.Activate()
	setVectorField(b, "cog", toCP(cog))
}

func (e *Engine) ApplyForceAtWorldPoint(r engine.BodyRecord, force, point engine.Vector) {
	e.body(r).ApplyForceAtWorldPoint(toCP(force), toCP(point))
}

func (e *Engine) ApplyImpulseAtWorldPoint(r engine.BodyRecord, impulse, point engine.Vector) {
	e.body(r).ApplyImpulseAtWorldPoint(toCP(impulse), toCP(point))
}

func (e *Engine) BodyKineticEnergy(r engine.BodyRecord) float64 {
	return e.body(r).KineticEnergy()
}

func (e *Engine) BodySleeping(r engine.BodyRecord) bool {
	return e.body(r).IsSleeping()
}

func (e *Engine) ActivateBody(r engine.BodyRecord) {
	e.body(r).Activate()
}
