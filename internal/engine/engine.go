package engine

import (
	"fmt"
	"math"
)

// Vector is a 2D vector in Engine units.
type Vector struct {
	X, Y float64
}

func (v Vector) Add(o Vector) Vector    { return Vector{v.X + o.X, v.Y + o.Y} }
func (v Vector) Sub(o Vector) Vector    { return Vector{v.X - o.X, v.Y - o.Y} }
func (v Vector) Scale(s float64) Vector { return Vector{v.X * s, v.Y * s} }
func (v Vector) Dot(o Vector) float64   { return v.X*o.X + v.Y*o.Y }
func (v Vector) Length() float64        { return math.Hypot(v.X, v.Y) }
func (v Vector) String() string         { return fmt.Sprintf("(%g, %g)", v.X, v.Y) }
func (v Vector) Equal(o Vector) bool    { return v.X == o.X && v.Y == o.Y }
func (v Vector) Near(o Vector, eps float64) bool {
	return math.Abs(v.X-o.X) <= eps && math.Abs(v.Y-o.Y) <= eps
}

type BodyKind int

const (
	Dynamic BodyKind = iota
	Kinematic
	Static
)

func (k BodyKind) String() string {
	switch k {
	case Dynamic:
		return "dynamic"
	case Kinematic:
		return "kinematic"
	case Static:
		return "static"
	default:
		return fmt.Sprintf("BodyKind(%d)", int(k))
	}
}

type Geometry int

const (
	Circle Geometry = iota
	Segment
	Polygon
)

func (g Geometry) String() string {
	switch g {
	case Circle:
		return "circle"
	case Segment:
		return "segment"
	case Polygon:
		return "polygon"
	default:
		return fmt.Sprintf("Geometry(%d)", int(g))
	}
}

// ContactPoint is one point of a contact pair in world coordinates.
type ContactPoint struct {
	PointA, PointB Vector
	// Distance is negative when the shapes overlap.
	Distance float64
}

// ContactPointSet holds up to two contact points sharing one normal.
type ContactPointSet struct {
	Count  int
	Normal Vector
	Points [2]ContactPoint
}

// Opaque Engine records. Handles pass them back to the Engine that created
// them and never look inside.
type (
	BodyRecord    any
	ShapeRecord   any
	SpaceRecord   any
	ArbiterRecord any
)

// PreSolveFunc is invoked by SpaceStep once per touching shape pair before
// the solver runs. Returning false drops the pair for the current step.
type PreSolveFunc func(arb ArbiterRecord) bool

type BodyEngine interface {
	BodyCreate(mass, moment float64) BodyRecord
	BodyDestroy(b BodyRecord)

	BodyKind(b BodyRecord) BodyKind
	SetBodyKind(b BodyRecord, kind BodyKind)

	BodyPosition(b BodyRecord) Vector
	SetBodyPosition(b BodyRecord, p Vector)
	BodyAngle(b BodyRecord) float64
	SetBodyAngle(b BodyRecord, radians float64)
	BodyVelocity(b BodyRecord) Vector
	SetBodyVelocity(b BodyRecord, v Vector)
	BodyAngularVelocity(b BodyRecord) float64
	SetBodyAngularVelocity(b BodyRecord, w float64)
	BodyForce(b BodyRecord) Vector
	SetBodyForce(b BodyRecord, f Vector)
	BodyTorque(b BodyRecord) float64
	SetBodyTorque(b BodyRecord, t float64)
	BodyMass(b BodyRecord) float64
	SetBodyMass(b BodyRecord, m float64)
	BodyMoment(b BodyRecord) float64
	SetBodyMoment(b BodyRecord, i float64)
	BodyCenterOfGravity(b BodyRecord) Vector
	SetBodyCenterOfGravity(b BodyRecord, cog Vector)

	ApplyForceAtWorldPoint(b BodyRecord, force, point Vector)
	ApplyImpulseAtWorldPoint(b BodyRecord, impulse, point Vector)
	BodyKineticEnergy(b BodyRecord) float64
	BodySleeping(b BodyRecord) bool
	ActivateBody(b BodyRecord)
}

type ShapeEngine interface {
	ShapeCreateCircle(b BodyRecord, radius float64, offset Vector) ShapeRecord
	ShapeCreateSegment(b BodyRecord, a, bEnd Vector, radius float64) ShapeRecord
	ShapeCreatePolygon(b BodyRecord, verts []Vector, radius float64) ShapeRecord
	ShapeCreateBox(b BodyRecord, width, height, radius float64) ShapeRecord
	ShapeDestroy(s ShapeRecord)

	ShapeGeometry(s ShapeRecord) Geometry

	ShapeDensity(s ShapeRecord) float64
	SetShapeDensity(s ShapeRecord, density float64)
	ShapeMass(s ShapeRecord) float64
	SetShapeMass(s ShapeRecord, mass float64)
	ShapeFriction(s ShapeRecord) float64
	SetShapeFriction(s ShapeRecord, u float64)
	ShapeElasticity(s ShapeRecord) float64
	SetShapeElasticity(s ShapeRecord, e float64)
	ShapeSensor(s ShapeRecord) bool
	SetShapeSensor(s ShapeRecord, sensor bool)
	ShapeSurfaceVelocity(s ShapeRecord) Vector
	SetShapeSurfaceVelocity(s ShapeRecord, v Vector)

	CircleRadius(s ShapeRecord) float64
	CircleOffset(s ShapeRecord) Vector
	SegmentA(s ShapeRecord) Vector
	SegmentB(s ShapeRecord) Vector
	SegmentNormal(s ShapeRecord) Vector
	SegmentRadius(s ShapeRecord) float64
	PolyCount(s ShapeRecord) int
	PolyVertex(s ShapeRecord, i int) Vector
	PolyRadius(s ShapeRecord) float64
}

type SpaceEngine interface {
	SpaceCreate() SpaceRecord
	// SpaceDestroy releases any bodies and shapes the space still tracks.
	SpaceDestroy(sp SpaceRecord)

	SpaceAddBody(sp SpaceRecord, b BodyRecord)
	SpaceRemoveBody(sp SpaceRecord, b BodyRecord)
	SpaceContainsBody(sp SpaceRecord, b BodyRecord) bool
	SpaceAddShape(sp SpaceRecord, s ShapeRecord)
	SpaceRemoveShape(sp SpaceRecord, s ShapeRecord)
	SpaceContainsShape(sp SpaceRecord, s ShapeRecord) bool

	SpaceStep(sp SpaceRecord, dt float64)
	SetSpacePreSolve(sp SpaceRecord, fn PreSolveFunc)

	SpaceGravity(sp SpaceRecord) Vector
	SetSpaceGravity(sp SpaceRecord, g Vector)
	SpaceDamping(sp SpaceRecord) float64
	SetSpaceDamping(sp SpaceRecord, d float64)
	SpaceCollisionSlop(sp SpaceRecord) float64
	SetSpaceCollisionSlop(sp SpaceRecord, slop float64)
	SpaceCollisionBias(sp SpaceRecord) float64
	SetSpaceCollisionBias(sp SpaceRecord, bias float64)
	SpaceCollisionPersistence(sp SpaceRecord) uint
	SetSpaceCollisionPersistence(sp SpaceRecord, steps uint)
	SpaceIdleSpeedThreshold(sp SpaceRecord) float64
	SetSpaceIdleSpeedThreshold(sp SpaceRecord, v float64)
	SpaceIterations(sp SpaceRecord) int
	SetSpaceIterations(sp SpaceRecord, n int)
	SpaceSleepTimeThreshold(sp SpaceRecord) float64
	SetSpaceSleepTimeThreshold(sp SpaceRecord, t float64)
}

type ArbiterEngine interface {
	ArbiterContactPointSet(a ArbiterRecord) ContactPointSet
	ArbiterCount(a ArbiterRecord) int
	ArbiterNormal(a ArbiterRecord) Vector
	ArbiterDepth(a ArbiterRecord, i int) float64
	ArbiterPointA(a ArbiterRecord, i int) Vector
	ArbiterPointB(a ArbiterRecord, i int) Vector

	ArbiterFriction(a ArbiterRecord) float64
	SetArbiterFriction(a ArbiterRecord, u float64)
	ArbiterRestitution(a ArbiterRecord) float64
	SetArbiterRestitution(a ArbiterRecord, e float64)
	ArbiterSurfaceVelocity(a ArbiterRecord) Vector
	SetArbiterSurfaceVelocity(a ArbiterRecord, v Vector)
}

// Engine is the full capability set the handle layer consumes.
type Engine interface {
	BodyEngine
	ShapeEngine
	SpaceEngine
	ArbiterEngine
}
