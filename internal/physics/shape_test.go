package physics

import (
	"testing"

	"github.com/san-kum/cpsafe/internal/userdata"
)

func TestCircleGeometry(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()
	s := NewCircle(b, 2.5, Vector{X: 1, Y: -1})
	defer s.Release()

	c, ok := s.Circle()
	if !ok {
		t.Fatalf("expected circle view, geometry is %v", s.Geometry())
	}
	if r := c.Radius(); r != 2.5 {
		t.Errorf("expected radius 2.5, got %f", r)
	}
	if o := c.Offset(); o != (Vector{X: 1, Y: -1}) {
		t.Errorf("expected offset (1, -1), got %v", o)
	}
	if _, ok := s.Segment(); ok {
		t.Error("expected no segment view on a circle")
	}
}

func TestSegmentGeometry(t *testing.T) {
	b := NewStaticBody()
	defer b.Release()
	s := NewSegment(b, Vector{}, Vector{X: 10}, 0.5)
	defer s.Release()

	g, ok := s.Segment()
	if !ok {
		t.Fatalf("expected segment view, geometry is %v", s.Geometry())
	}
	if g.A() != (Vector{}) || g.B() != (Vector{X: 10}) {
		t.Errorf("expected endpoints (0, 0) and (10, 0), got %v and %v", g.A(), g.B())
	}
	if n := g.Normal(); n != (Vector{Y: -1}) {
		t.Errorf("expected normal (0, -1), got %v", n)
	}
	if r := g.Radius(); r != 0.5 {
		t.Errorf("expected radius 0.5, got %f", r)
	}
}

func TestPolyGeometry(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()
	verts := []Vector{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}}
	s := NewPoly(b, verts, 0.1)
	defer s.Release()

	verts[0] = Vector{X: 100}

	p, ok := s.Poly()
	if !ok {
		t.Fatalf("expected poly view, geometry is %v", s.Geometry())
	}
	if n := p.Count(); n != 3 {
		t.Fatalf("expected 3 vertices, got %d", n)
	}
	want := []Vector{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 1, Y: 2}}
	for i, v := range p.Vertices() {
		if v != want[i] {
			t.Errorf("vertex %d: expected %v, got %v", i, want[i], v)
		}
	}
	if r := p.Radius(); r != 0.1 {
		t.Errorf("expected radius 0.1, got %f", r)
	}

	expectViolation(t, ErrIndexOutOfRange, func() { p.Vertex(3) })
	expectViolation(t, ErrIndexOutOfRange, func() { p.Vertex(-1) })
}

func TestBoxIsPoly(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()
	s := NewBox(b, 4, 2, 0)
	defer s.Release()

	p, ok := s.Poly()
	if !ok {
		t.Fatalf("expected box to be a polygon, got %v", s.Geometry())
	}
	if n := p.Count(); n != 4 {
		t.Errorf("expected 4 vertices, got %d", n)
	}
}

func TestWrongGeometryView(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()
	s := NewCircle(b, 1, Vector{})
	defer s.Release()

	seg, _ := s.Segment()
	expectViolation(t, ErrWrongGeometry, func() { seg.A() })
	poly, _ := s.Poly()
	expectViolation(t, ErrWrongGeometry, func() { poly.Count() })
}

func TestSetFrictionLeavesElasticity(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()
	s := NewCircle(b, 1, Vector{})
	defer s.Release()

	s.SetElasticity(0.3)
	s.SetFriction(0.9)

	if e := s.Elasticity(); e != 0.3 {
		t.Errorf("expected elasticity 0.3 after SetFriction, got %f", e)
	}
	if u := s.Friction(); u != 0.9 {
		t.Errorf("expected friction 0.9, got %f", u)
	}
}

func TestShapeMaterial(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()
	s := NewCircle(b, 1, Vector{})
	defer s.Release()

	s.SetSensor(true)
	if !s.IsSensor() {
		t.Error("expected sensor")
	}

	s.SetSurfaceVelocity(Vector{X: 2})
	if v := s.SurfaceVelocity(); v != (Vector{X: 2}) {
		t.Errorf("expected surface velocity (2, 0), got %v", v)
	}

	s.SetMass(3)
	if m := s.Mass(); m != 3 {
		t.Errorf("expected shape mass 3, got %f", m)
	}
}

func TestShapeKeepsBodyAlive(t *testing.T) {
	rec, opt := recorded()
	b := NewBody(1, 1, opt)
	s := NewCircle(b, 1, Vector{})

	b.Release()
	if n := rec.Count("BodyDestroy", "body#1"); n != 0 {
		t.Fatalf("expected body to outlive its handle, got %d destroys", n)
	}

	owner := s.Body()
	if owner.Mass() != 1 {
		t.Errorf("expected owner mass 1, got %f", owner.Mass())
	}
	owner.Release()

	s.Release()
	want := []string{"ShapeDestroy(shape#1)", "BodyDestroy(body#1)"}
	got := rec.Ops("")
	got = got[len(got)-2:]
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestShapeDuplicate(t *testing.T) {
	rec, opt := recorded()
	b := NewBody(1, 1, opt)
	defer b.Release()
	s := NewCircle(b, 1, Vector{})
	d := s.Duplicate()

	if !s.Same(d) {
		t.Fatal("expected duplicate to refer to the same shape")
	}
	userdata.Set(d.Data(), 7)
	if v, ok := userdata.Get[int](s.Data()); !ok || v != 7 {
		t.Errorf("expected 7, got %d, %v", v, ok)
	}

	s.Release()
	if n := rec.Count("ShapeDestroy", "shape#1"); n != 0 {
		t.Errorf("expected no destroy while a handle remains, got %d", n)
	}
	d.Release()
	if n := rec.Count("ShapeDestroy", "shape#1"); n != 1 {
		t.Errorf("expected exactly one destroy, got %d", n)
	}
	expectViolation(t, ErrReleased, func() { d.Friction() })
}
