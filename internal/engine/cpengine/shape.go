package cpengine

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/cpsafe/internal/engine"
)

func (e *Engine) ShapeCreateCircle(r engine.BodyRecord, radius float64, offset engine.Vector) engine.ShapeRecord {
	b := e.body(r)
	e.mustOwn(b)
	s := cp.NewCircle(b, radius, toCP(offset))
	e.track(s)
	return s
}

func (e *Engine) ShapeCreateSegment(r engine.BodyRecord, a, bEnd engine.Vector, radius float64) engine.ShapeRecord {
	b := e.body(r)
	e.mustOwn(b)
	s := cp.NewSegment(b, toCP(a), toCP(bEnd), radius)
	e.track(s)
	return s
}

// ShapeCreatePolygon uses the vertices as given, without computing a hull.
func (e *Engine) ShapeCreatePolygon(r engine.BodyRecord, verts []engine.Vector, radius float64) engine.ShapeRecord {
	b := e.body(r)
	e.mustOwn(b)
	cv := make([]cp.Vector, len(verts))
	for i, v := range verts {
		cv[i] = toCP(v)
	}
	s := cp.NewPolyShapeRaw(b, len(cv), cv, radius)
	e.track(s)
	return s
}

func (e *Engine) ShapeCreateBox(r engine.BodyRecord, width, height, radius float64) engine.ShapeRecord {
	b := e.body(r)
	e.mustOwn(b)
	s := cp.NewBox(b, width, height, radius)
	e.track(s)
	return s
}

func (e *Engine) ShapeDestroy(r engine.ShapeRecord) {
	s := e.shape(r)
	e.untrack(s)
	s.UserData = nil
}

func (e *Engine) ShapeGeometry(r engine.ShapeRecord) engine.Geometry {
	switch c := e.shape(r).Class.(type) {
	case *cp.Circle:
		return engine.Circle
	case *cp.Segment:
		return engine.Segment
	case *cp.PolyShape:
		return engine.Polygon
	default:
		panic(fmt.Sprintf("cpengine: unsupported shape class %T", c))
	}
}

func (e *Engine) ShapeDensity(r engine.ShapeRecord) float64 {
	return e.shape(r).Density()
}

func (e *Engine) SetShapeDensity(r engine.ShapeRecord, density float64) {
	e.shape(r).SetDensity(density)
}

func (e *Engine) ShapeMass(r engine.ShapeRecord) float64 {
	return e.shape(r).Mass()
}

func (e *Engine) SetShapeMass(r engine.ShapeRecord, mass float64) {
	e.shape(r).SetMass(mass)
}

func (e *Engine) ShapeFriction(r engine.ShapeRecord) float64 {
	return e.shape(r).Friction()
}

func (e *Engine) SetShapeFriction(r engine.ShapeRecord, u float64) {
	e.shape(r).SetFriction(u)
}

func (e *Engine) ShapeElasticity(r engine.ShapeRecord) float64 {
	return e.shape(r).Elasticity()
}

func (e *Engine) SetShapeElasticity(r engine.ShapeRecord, el float64) {
	e.shape(r).SetElasticity(el)
}

func (e *Engine) ShapeSensor(r engine.ShapeRecord) bool {
	return e.shape(r).Sensor()
}

func (e *Engine) SetShapeSensor(r engine.ShapeRecord, sensor bool) {
	e.shape(r).SetSensor(sensor)
}

func (e *Engine) ShapeSurfaceVelocity(r engine.ShapeRecord) engine.Vector {
	return fromCP(vectorField(e.shape(r), "surfaceV"))
}

func (e *Engine) SetShapeSurfaceVelocity(r engine.ShapeRecord, v engine.Vector) {
	e.shape(r).SetSurfaceV(toCP(v))
}

func (e *Engine) circle(r engine.ShapeRecord) *cp.Circle {
	c, ok := e.shape(r).Class.(*cp.Circle)
	if !ok {
		panic(fmt.Sprintf("cpengine: %T is not a circle", e.shape(r).Class))
	}
	return c
}

func (e *Engine) segment(r engine.ShapeRecord) *cp.Segment {
	s, ok := e.shape(r).Class.(*cp.Segment)
	if !ok {
		panic(fmt.Sprintf("cpengine: %T is not a segment", e.shape(r).Class))
	}
	return s
}

func (e *Engine) poly(r engine.ShapeRecord) *cp.PolyShape {
	p, ok := e.shape(r).Class.(*cp.PolyShape)
	if !ok {
		panic(fmt.Sprintf("cpengine: %T is not a polygon", e.shape(r).Class))
	}
	return p
}

func (e *Engine) CircleRadius(r engine.ShapeRecord) float64 {
	return e.circle(r).Radius()
}

func (e *Engine) CircleOffset(r engine.ShapeRecord) engine.Vector {
	return fromCP(vectorField(e.circle(r), "c"))
}

func (e *Engine) SegmentA(r engine.ShapeRecord) engine.Vector {
	return fromCP(e.segment(r).A())
}

func (e *Engine) SegmentB(r engine.ShapeRecord) engine.Vector {
	return fromCP(e.segment(r).B())
}

func (e *Engine) SegmentNormal(r engine.ShapeRecord) engine.Vector {
	return fromCP(e.segment(r).Normal())
}

func (e *Engine) SegmentRadius(r engine.ShapeRecord) float64 {
	return e.segment(r).Radius()
}

func (e *Engine) PolyCount(r engine.ShapeRecord) int {
	return e.poly(r).Count()
}

func (e *Engine) PolyVertex(r engine.ShapeRecord, i int) engine.Vector {
	return fromCP(e.poly(r).Vert(i))
}

func (e *Engine) PolyRadius(r engine.ShapeRecord) float64 {
	return e.poly(r).Radius()
}
