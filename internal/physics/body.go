package physics

import (
	"log/slog"
	"math"
	"sync"

	"github.com/san-kum/cpsafe/internal/engine"
	"github.com/san-kum/cpsafe/internal/userdata"
)

type bodyCell struct {
	mu     sync.Mutex
	eng    engine.Engine
	rec    engine.BodyRecord
	refs   int
	space  *spaceCell
	data   userdata.Slot
	logger *slog.Logger
}

// Body is a handle to one Engine body record.
type Body struct {
	c        *bodyCell
	borrowed bool
}

// NewBody creates a dynamic body. Mass and moment are not validated.
func NewBody(mass, moment float64, opts ...Option) *Body {
	o := buildOptions(opts)
	return newBody(o, o.engine.BodyCreate(mass, moment))
}

// NewKinematicBody creates a body moved only by its velocity.
func NewKinematicBody(opts ...Option) *Body {
	return newKindBody(Kinematic, opts)
}

// NewStaticBody creates an immovable body.
func NewStaticBody(opts ...Option) *Body {
	return newKindBody(Static, opts)
}

func newKindBody(kind BodyKind, opts []Option) *Body {
	o := buildOptions(opts)
	rec := o.engine.BodyCreate(0, 0)
	o.engine.SetBodyKind(rec, kind)
	return newBody(o, rec)
}

func newBody(o options, rec engine.BodyRecord) *Body {
	return &Body{c: &bodyCell{
		eng:    o.engine,
		rec:    rec,
		refs:   1,
		logger: o.logger,
	}}
}

func (b *Body) live(op string) *bodyCell {
	if b == nil || b.c == nil {
		violation("Body."+op, ErrReleased)
	}
	return b.c
}

func (b *Body) do(op string, fn func(e engine.Engine, r engine.BodyRecord)) {
	c := b.live(op)
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.eng, c.rec)
}

func bodyGet[T any](b *Body, op string, get func(engine.Engine, engine.BodyRecord) T) (v T) {
	b.do(op, func(e engine.Engine, r engine.BodyRecord) { v = get(e, r) })
	return v
}

func bodySet[T any](b *Body, op string, set func(engine.Engine, engine.BodyRecord, T), v T) {
	b.do(op, func(e engine.Engine, r engine.BodyRecord) { set(e, r, v) })
}

// Duplicate returns a new handle to the same record. Every handle observes
// the same state and the same extension data.
func (b *Body) Duplicate() *Body {
	c := b.live("Duplicate")
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()
	return &Body{c: c}
}

// Release drops this handle's reference. The record is destroyed when no
// handle, Shape or Space refers to it any more.
func (b *Body) Release() {
	c := b.live("Release")
	if b.borrowed {
		violation("Body.Release", ErrBorrowedHandle)
	}
	b.c = nil
	c.release()
}

func (c *bodyCell) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refs--
	if c.refs > 0 {
		return
	}
	c.eng.BodyDestroy(c.rec)
	c.rec = nil
	c.logger.Debug("body destroyed")
}

// Released reports whether this handle has been released or exported.
func (b *Body) Released() bool { return b == nil || b.c == nil }

// Same reports whether b and o refer to the same record.
func (b *Body) Same(o *Body) bool {
	return b.live("Same") == o.live("Same")
}

// Data returns the extension slot shared by every handle to this record.
func (b *Body) Data() *userdata.Slot { return &b.live("Data").data }

func (b *Body) Kind() BodyKind {
	return bodyGet(b, "Kind", engine.Engine.BodyKind)
}

func (b *Body) SetKind(kind BodyKind) {
	bodySet(b, "SetKind", engine.Engine.SetBodyKind, kind)
}

func (b *Body) Position() Vector {
	return bodyGet(b, "Position", engine.Engine.BodyPosition)
}

func (b *Body) SetPosition(p Vector) {
	bodySet(b, "SetPosition", engine.Engine.SetBodyPosition, p)
}

// Angle is in radians.
func (b *Body) Angle() float64 {
	return bodyGet(b, "Angle", engine.Engine.BodyAngle)
}

func (b *Body) SetAngle(radians float64) {
	bodySet(b, "SetAngle", engine.Engine.SetBodyAngle, radians)
}

func (b *Body) AngleDegrees() float64 {
	return b.Angle() * 180 / math.Pi
}

func (b *Body) SetAngleDegrees(degrees float64) {
	b.SetAngle(degrees * math.Pi / 180)
}

func (b *Body) Velocity() Vector {
	return bodyGet(b, "Velocity", engine.Engine.BodyVelocity)
}

func (b *Body) SetVelocity(v Vector) {
	bodySet(b, "SetVelocity", engine.Engine.SetBodyVelocity, v)
}

// AngularVelocity is in radians per second.
func (b *Body) AngularVelocity() float64 {
	return bodyGet(b, "AngularVelocity", engine.Engine.BodyAngularVelocity)
}

func (b *Body) SetAngularVelocity(w float64) {
	bodySet(b, "SetAngularVelocity", engine.Engine.SetBodyAngularVelocity, w)
}

func (b *Body) AngularVelocityDegrees() float64 {
	return b.AngularVelocity() * 180 / math.Pi
}

func (b *Body) SetAngularVelocityDegrees(w float64) {
	b.SetAngularVelocity(w * math.Pi / 180)
}

// Force is the accumulated force applied at the center of gravity. Whether
// it survives a step is up to the Engine; callers that want impulse-style
// forces clear it themselves.
func (b *Body) Force() Vector {
	return bodyGet(b, "Force", engine.Engine.BodyForce)
}

func (b *Body) SetForce(f Vector) {
	bodySet(b, "SetForce", engine.Engine.SetBodyForce, f)
}

func (b *Body) Torque() float64 {
	return bodyGet(b, "Torque", engine.Engine.BodyTorque)
}

func (b *Body) SetTorque(t float64) {
	bodySet(b, "SetTorque", engine.Engine.SetBodyTorque, t)
}

// Mass is independent of any mass derived from shape densities; setting it
// does not touch the shapes. Static and kinematic bodies report +Inf.
func (b *Body) Mass() float64 {
	return bodyGet(b, "Mass", engine.Engine.BodyMass)
}

func (b *Body) SetMass(m float64) {
	bodySet(b, "SetMass", engine.Engine.SetBodyMass, m)
}

func (b *Body) Moment() float64 {
	return bodyGet(b, "Moment", engine.Engine.BodyMoment)
}

func (b *Body) SetMoment(i float64) {
	bodySet(b, "SetMoment", engine.Engine.SetBodyMoment, i)
}

// CenterOfGravity is in body-local coordinates.
func (b *Body) CenterOfGravity() Vector {
	return bodyGet(b, "CenterOfGravity", engine.Engine.BodyCenterOfGravity)
}

func (b *Body) SetCenterOfGravity(cog Vector) {
	bodySet(b, "SetCenterOfGravity", engine.Engine.SetBodyCenterOfGravity, cog)
}

func (b *Body) ApplyForceAtWorldPoint(force, point Vector) {
	b.do("ApplyForceAtWorldPoint", func(e engine.Engine, r engine.BodyRecord) {
		e.ApplyForceAtWorldPoint(r, force, point)
	})
}

func (b *Body) ApplyImpulseAtWorldPoint(impulse, point Vector) {
	b.do("ApplyImpulseAtWorldPoint", func(e engine.Engine, r engine.BodyRecord) {
		e.ApplyImpulseAtWorldPoint(r, impulse, point)
	})
}

func (b *Body) KineticEnergy() float64 {
	return bodyGet(b, "KineticEnergy", engine.Engine.BodyKineticEnergy)
}

func (b *Body) IsSleeping() bool {
	return bodyGet(b, "IsSleeping", engine.Engine.BodySleeping)
}

func (b *Body) Activate() {
	b.do("Activate", engine.Engine.ActivateBody)
}
