package physics

import (
	"log/slog"
	"sync"

	"github.com/san-kum/cpsafe/internal/engine"
	"github.com/san-kum/cpsafe/internal/userdata"
)

type shapeCell struct {
	mu     sync.Mutex
	eng    engine.Engine
	rec    engine.ShapeRecord
	geom   Geometry
	refs   int
	body   *Body
	space  *spaceCell
	data   userdata.Slot
	logger *slog.Logger
}

// Shape is a handle to one Engine collision shape. It keeps its Body alive.
type Shape struct {
	c *shapeCell
}

// NewCircle attaches a circle of the given radius, centered at offset in
// body coordinates.
func NewCircle(body *Body, radius float64, offset Vector) *Shape {
	return newShape(body, "NewCircle", func(e engine.Engine, r engine.BodyRecord) engine.ShapeRecord {
		return e.ShapeCreateCircle(r, radius, offset)
	})
}

// NewSegment attaches a segment from a to b, thickened by radius.
func NewSegment(body *Body, a, b Vector, radius float64) *Shape {
	return newShape(body, "NewSegment", func(e engine.Engine, r engine.BodyRecord) engine.ShapeRecord {
		return e.ShapeCreateSegment(r, a, b, radius)
	})
}

// NewPoly attaches a convex polygon with rounded corners. The vertices are
// used as given: they must be convex and wound counter-clockwise.
func NewPoly(body *Body, verts []Vector, radius float64) *Shape {
	vs := make([]Vector, len(verts))
	copy(vs, verts)
	return newShape(body, "NewPoly", func(e engine.Engine, r engine.BodyRecord) engine.ShapeRecord {
		return e.ShapeCreatePolygon(r, vs, radius)
	})
}

// NewBox attaches a width x height box centered on the body.
func NewBox(body *Body, width, height, radius float64) *Shape {
	return newShape(body, "NewBox", func(e engine.Engine, r engine.BodyRecord) engine.ShapeRecord {
		return e.ShapeCreateBox(r, width, height, radius)
	})
}

func newShape(body *Body, op string, create func(engine.Engine, engine.BodyRecord) engine.ShapeRecord) *Shape {
	body.live(op)
	owner := body.Duplicate()
	bc := owner.c

	bc.mu.Lock()
	rec := create(bc.eng, bc.rec)
	bc.mu.Unlock()

	return &Shape{c: &shapeCell{
		eng:    bc.eng,
		rec:    rec,
		geom:   bc.eng.ShapeGeometry(rec),
		refs:   1,
		body:   owner,
		logger: bc.logger,
	}}
}

func (s *Shape) live(op string) *shapeCell {
	if s == nil || s.c == nil {
		violation("Shape."+op, ErrReleased)
	}
	return s.c
}

func (s *Shape) do(op string, fn func(e engine.Engine, r engine.ShapeRecord)) {
	c := s.live(op)
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.eng, c.rec)
}

func shapeGet[T any](s *Shape, op string, get func(engine.Engine, engine.ShapeRecord) T) (v T) {
	s.do(op, func(e engine.Engine, r engine.ShapeRecord) { v = get(e, r) })
	return v
}

func shapeSet[T any](s *Shape, op string, set func(engine.Engine, engine.ShapeRecord, T), v T) {
	s.do(op, func(e engine.Engine, r engine.ShapeRecord) { set(e, r, v) })
}

func (s *Shape) Duplicate() *Shape {
	c := s.live("Duplicate")
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()
	return &Shape{c: c}
}

// Release drops this handle's reference. On the last one the Engine shape is
// destroyed first and the Shape's reference to its Body is dropped after.
func (s *Shape) Release() {
	c := s.live("Release")
	s.c = nil

	c.mu.Lock()
	c.refs--
	if c.refs > 0 {
		c.mu.Unlock()
		return
	}
	c.eng.ShapeDestroy(c.rec)
	c.rec = nil
	owner := c.body
	c.body = nil
	c.mu.Unlock()

	c.logger.Debug("shape destroyed", "geometry", c.geom)
	owner.Release()
}

func (s *Shape) Released() bool { return s == nil || s.c == nil }

func (s *Shape) Same(o *Shape) bool {
	return s.live("Same") == o.live("Same")
}

// Body returns a new handle to the body this shape is attached to. The
// caller owns it and must release it.
func (s *Shape) Body() *Body {
	c := s.live("Body")
	c.mu.Lock()
	owner := c.body
	c.mu.Unlock()
	return owner.Duplicate()
}

func (s *Shape) Data() *userdata.Slot { return &s.live("Data").data }

func (s *Shape) Geometry() Geometry { return s.live("Geometry").geom }

func (s *Shape) Density() float64 {
	return shapeGet(s, "Density", engine.Engine.ShapeDensity)
}

// SetDensity lets the Engine derive the shape's mass from its area. The
// Engine may fold that mass into the body.
func (s *Shape) SetDensity(density float64) {
	shapeSet(s, "SetDensity", engine.Engine.SetShapeDensity, density)
}

func (s *Shape) Mass() float64 {
	return shapeGet(s, "Mass", engine.Engine.ShapeMass)
}

func (s *Shape) SetMass(mass float64) {
	shapeSet(s, "SetMass", engine.Engine.SetShapeMass, mass)
}

func (s *Shape) Friction() float64 {
	return shapeGet(s, "Friction", engine.Engine.ShapeFriction)
}

func (s *Shape) SetFriction(u float64) {
	shapeSet(s, "SetFriction", engine.Engine.SetShapeFriction, u)
}

// Elasticity is the shape's own restitution coefficient, combined with the
// other shape's by the Engine to form the Arbiter restitution.
func (s *Shape) Elasticity() float64 {
	return shapeGet(s, "Elasticity", engine.Engine.ShapeElasticity)
}

func (s *Shape) SetElasticity(e float64) {
	shapeSet(s, "SetElasticity", engine.Engine.SetShapeElasticity, e)
}

// IsSensor reports whether the shape only detects contacts.
func (s *Shape) IsSensor() bool {
	return shapeGet(s, "IsSensor", engine.Engine.ShapeSensor)
}

func (s *Shape) SetSensor(sensor bool) {
	shapeSet(s, "SetSensor", engine.Engine.SetShapeSensor, sensor)
}

// SurfaceVelocity only feeds the friction computation.
func (s *Shape) SurfaceVelocity() Vector {
	return shapeGet(s, "SurfaceVelocity", engine.Engine.ShapeSurfaceVelocity)
}

func (s *Shape) SetSurfaceVelocity(v Vector) {
	shapeSet(s, "SetSurfaceVelocity", engine.Engine.SetShapeSurfaceVelocity, v)
}

// Circle returns the circle view of s, or false for other geometries.
func (s *Shape) Circle() (Circle, bool) {
	return Circle{s}, s.Geometry() == engine.Circle
}

func (s *Shape) Segment() (Segment, bool) {
	return Segment{s}, s.Geometry() == engine.Segment
}

func (s *Shape) Poly() (Poly, bool) {
	return Poly{s}, s.Geometry() == engine.Polygon
}

func (s *Shape) geometry(op string, want Geometry) *Shape {
	if s.Geometry() != want {
		violation("Shape."+op, ErrWrongGeometry)
	}
	return s
}

// Circle is the geometry view of a circle shape.
type Circle struct{ s *Shape }

func (c Circle) Radius() float64 {
	return shapeGet(c.s.geometry("Radius", engine.Circle), "Radius", engine.Engine.CircleRadius)
}

func (c Circle) Offset() Vector {
	return shapeGet(c.s.geometry("Offset", engine.Circle), "Offset", engine.Engine.CircleOffset)
}

// Segment is the geometry view of a segment shape.
type Segment struct{ s *Shape }

func (g Segment) A() Vector {
	return shapeGet(g.s.geometry("A", engine.Segment), "A", engine.Engine.SegmentA)
}

func (g Segment) B() Vector {
	return shapeGet(g.s.geometry("B", engine.Segment), "B", engine.Engine.SegmentB)
}

// Normal is derived by the Engine from the endpoints.
func (g Segment) Normal() Vector {
	return shapeGet(g.s.geometry("Normal", engine.Segment), "Normal", engine.Engine.SegmentNormal)
}

func (g Segment) Radius() float64 {
	return shapeGet(g.s.geometry("Radius", engine.Segment), "Radius", engine.Engine.SegmentRadius)
}

// Poly is the geometry view of a polygon shape.
type Poly struct{ s *Shape }

func (p Poly) Count() int {
	return shapeGet(p.s.geometry("Count", engine.Polygon), "Count", engine.Engine.PolyCount)
}

func (p Poly) Vertex(i int) Vector {
	p.s.geometry("Vertex", engine.Polygon)
	var v Vector
	p.s.do("Vertex", func(e engine.Engine, r engine.ShapeRecord) {
		if i < 0 || i >= e.PolyCount(r) {
			violation("Poly.Vertex", ErrIndexOutOfRange)
		}
		v = e.PolyVertex(r, i)
	})
	return v
}

// Vertices returns every vertex in order.
func (p Poly) Vertices() []Vector {
	n := p.Count()
	out := make([]Vector, n)
	for i := range out {
		out[i] = p.Vertex(i)
	}
	return out
}

func (p Poly) Radius() float64 {
	return shapeGet(p.s.geometry("Radius", engine.Polygon), "Radius", engine.Engine.PolyRadius)
}
