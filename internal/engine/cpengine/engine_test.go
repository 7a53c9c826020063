package cpengine

import (
	"math"
	"sync"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/cpsafe/internal/engine"
)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	fn()
}

func TestSpaceDefaults(t *testing.T) {
	e := New()
	sp := e.SpaceCreate()
	defer e.SpaceDestroy(sp)

	if g := e.SpaceGravity(sp); g != (engine.Vector{}) {
		t.Errorf("expected zero gravity, got %v", g)
	}
	if d := e.SpaceDamping(sp); d != 1.0 {
		t.Errorf("expected damping 1, got %f", d)
	}
	if s := e.SpaceCollisionSlop(sp); s != 0.1 {
		t.Errorf("expected slop 0.1, got %f", s)
	}
	if b := e.SpaceCollisionBias(sp); b != math.Pow(0.9, 60) {
		t.Errorf("expected bias 0.9^60, got %f", b)
	}
	if p := e.SpaceCollisionPersistence(sp); p != 3 {
		t.Errorf("expected persistence 3, got %d", p)
	}
	if n := e.SpaceIterations(sp); n != 10 {
		t.Errorf("expected 10 iterations, got %d", n)
	}
	if v := e.SpaceIdleSpeedThreshold(sp); v != 0 {
		t.Errorf("expected idle threshold 0, got %f", v)
	}
	if s := e.SpaceSleepTimeThreshold(sp); !math.IsInf(s, 1) {
		t.Errorf("expected +Inf sleep threshold, got %f", s)
	}
}

func TestSpaceTunablesRoundTrip(t *testing.T) {
	e := New()
	sp := e.SpaceCreate()
	defer e.SpaceDestroy(sp)

	e.SetSpaceCollisionSlop(sp, 0.5)
	e.SetSpaceCollisionBias(sp, 0.25)
	e.SetSpaceCollisionPersistence(sp, 7)
	e.SetSpaceIterations(sp, -4)
	e.SetSpaceSleepTimeThreshold(sp, 2)

	if s := e.SpaceCollisionSlop(sp); s != 0.5 {
		t.Errorf("expected slop 0.5, got %f", s)
	}
	if b := e.SpaceCollisionBias(sp); b != 0.25 {
		t.Errorf("expected bias 0.25, got %f", b)
	}
	if p := e.SpaceCollisionPersistence(sp); p != 7 {
		t.Errorf("expected persistence 7, got %d", p)
	}
	if n := e.SpaceIterations(sp); n != -4 {
		t.Errorf("expected iterations to round trip as -4, got %d", n)
	}
	if s := e.SpaceSleepTimeThreshold(sp); s != 2 {
		t.Errorf("expected sleep threshold 2, got %f", s)
	}

	e.SetSpaceSleepTimeThreshold(sp, math.Inf(1))
	if raw := e.space(sp).space.SleepTimeThreshold; raw != cp.INFINITY {
		t.Errorf("expected cp infinity sentinel, got %g", raw)
	}
}

func TestUnexportedFieldAccess(t *testing.T) {
	e := New()
	b := e.BodyCreate(1, 1)
	c := e.ShapeCreateCircle(b, 2, engine.Vector{X: 1, Y: -1})
	defer e.BodyDestroy(b)
	defer e.ShapeDestroy(c)

	if off := e.CircleOffset(c); off != (engine.Vector{X: 1, Y: -1}) {
		t.Errorf("expected offset (1,-1), got %v", off)
	}

	e.SetShapeSurfaceVelocity(c, engine.Vector{X: 3})
	if v := e.ShapeSurfaceVelocity(c); v != (engine.Vector{X: 3}) {
		t.Errorf("expected surface velocity (3,0), got %v", v)
	}

	e.SetBodyCenterOfGravity(b, engine.Vector{X: 0.5, Y: 0.25})
	if cog := e.BodyCenterOfGravity(b); cog != (engine.Vector{X: 0.5, Y: 0.25}) {
		t.Errorf("expected cog (0.5,0.25), got %v", cog)
	}
}

func TestKinds(t *testing.T) {
	e := New()
	for _, kind := range []engine.BodyKind{engine.Kinematic, engine.Static, engine.Dynamic} {
		b := e.BodyCreate(0, 0)
		e.SetBodyKind(b, kind)
		if got := e.BodyKind(b); got != kind {
			t.Errorf("expected %v, got %v", kind, got)
		}
		e.BodyDestroy(b)
	}
}

func TestNonDynamicMassIsInfinite(t *testing.T) {
	e := New()
	for _, kind := range []engine.BodyKind{engine.Kinematic, engine.Static} {
		b := e.BodyCreate(1, 1)
		e.SetBodyKind(b, kind)
		if m := e.BodyMass(b); !math.IsInf(m, 1) {
			t.Errorf("%v: expected +Inf mass, got %g", kind, m)
		}
		if i := e.BodyMoment(b); !math.IsInf(i, 1) {
			t.Errorf("%v: expected +Inf moment, got %g", kind, i)
		}
		e.BodyDestroy(b)
	}
}

func TestConcurrentCreate(t *testing.T) {
	e := New()
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				sp := e.SpaceCreate()
				b := e.BodyCreate(1, 1)
				e.SpaceAddBody(sp, b)
				e.SpaceRemoveBody(sp, b)
				e.BodyDestroy(b)
				e.SpaceDestroy(sp)
			}
		}()
	}
	wg.Wait()
	if st := e.Stats(); st.Total() != 0 {
		t.Errorf("expected no live records, got %+v", st)
	}
}

func TestDoubleDestroyPanics(t *testing.T) {
	e := New()
	b := e.BodyCreate(1, 1)
	e.BodyDestroy(b)
	mustPanic(t, "body", func() { e.BodyDestroy(b) })

	sp := e.SpaceCreate()
	e.SpaceDestroy(sp)
	mustPanic(t, "space", func() { e.SpaceDestroy(sp) })
}

func TestForeignRecordPanics(t *testing.T) {
	a, b := New(), New()
	body := a.BodyCreate(1, 1)
	defer a.BodyDestroy(body)

	mustPanic(t, "shape on foreign body", func() { b.ShapeCreateCircle(body, 1, engine.Vector{}) })
	mustPanic(t, "wrong record type", func() { a.BodyMass("not a body") })
}

func TestSpaceDestroyDetaches(t *testing.T) {
	e := New()
	sp := e.SpaceCreate()
	b := e.BodyCreate(1, 1)
	s := e.ShapeCreateCircle(b, 1, engine.Vector{})
	e.SpaceAddBody(sp, b)
	e.SpaceAddShape(sp, s)

	raw := e.space(sp).space
	e.SpaceDestroy(sp)

	if raw.ContainsBody(e.body(b)) {
		t.Error("expected body detached from destroyed space")
	}
	if raw.ContainsShape(e.shape(s)) {
		t.Error("expected shape detached from destroyed space")
	}

	stats := e.Stats()
	if stats.Bodies != 1 || stats.Shapes != 1 || stats.Spaces != 0 {
		t.Errorf("expected 1 body, 1 shape, 0 spaces live, got %+v", stats)
	}

	e.ShapeDestroy(s)
	e.BodyDestroy(b)
	if total := e.Stats().Total(); total != 0 {
		t.Errorf("expected no live records, got %d", total)
	}
}

func TestPreSolveArbiter(t *testing.T) {
	e := New()
	sp := e.SpaceCreate()
	e.SetSpaceGravity(sp, engine.Vector{Y: -100})

	ground := e.BodyCreate(0, 0)
	e.SetBodyKind(ground, engine.Static)
	floor := e.ShapeCreateSegment(ground, engine.Vector{X: -20}, engine.Vector{X: 20}, 0)
	e.SetShapeFriction(floor, 1)
	e.SpaceAddBody(sp, ground)
	e.SpaceAddShape(sp, floor)

	ball := e.BodyCreate(1, cp.MomentForCircle(1, 0, 5, cp.Vector{}))
	e.SetBodyPosition(ball, engine.Vector{Y: 4})
	circle := e.ShapeCreateCircle(ball, 5, engine.Vector{})
	e.SetShapeFriction(circle, 0.7)
	e.SpaceAddBody(sp, ball)
	e.SpaceAddShape(sp, circle)

	calls := 0
	e.SetSpacePreSolve(sp, func(r engine.ArbiterRecord) bool {
		calls++
		if n := e.ArbiterCount(r); n < 1 || n > 2 {
			t.Errorf("expected 1 or 2 contacts, got %d", n)
		}
		set := e.ArbiterContactPointSet(r)
		if set.Count != e.ArbiterCount(r) {
			t.Errorf("expected set count %d, got %d", e.ArbiterCount(r), set.Count)
		}
		if d := e.ArbiterDepth(r, 0); d != set.Points[0].Distance {
			t.Errorf("expected depth %f, got %f", set.Points[0].Distance, d)
		}
		if u := e.ArbiterFriction(r); math.Abs(u-0.7) > 1e-12 {
			t.Errorf("expected combined friction 0.7, got %f", u)
		}
		e.SetArbiterFriction(r, 0.2)
		if u := e.ArbiterFriction(r); u != 0.2 {
			t.Errorf("expected overridden friction 0.2, got %f", u)
		}
		e.SetArbiterSurfaceVelocity(r, engine.Vector{X: 1})
		if v := e.ArbiterSurfaceVelocity(r); !v.Near(engine.Vector{X: 1}, 1e-12) {
			t.Errorf("expected surface velocity (1,0), got %v", v)
		}
		return true
	})

	e.SpaceStep(sp, 1.0/60.0)
	if calls == 0 {
		t.Error("expected pre-solve to run for overlapping shapes")
	}

	e.SpaceDestroy(sp)
	e.ShapeDestroy(circle)
	e.ShapeDestroy(floor)
	e.BodyDestroy(ball)
	e.BodyDestroy(ground)
}
