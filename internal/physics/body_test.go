package physics

import (
	"math"
	"testing"

	"github.com/san-kum/cpsafe/internal/userdata"
)

func TestNewBody(t *testing.T) {
	b := NewBody(2.5, 7)
	defer b.Release()

	if m := b.Mass(); m != 2.5 {
		t.Errorf("expected mass 2.5, got %f", m)
	}
	if i := b.Moment(); i != 7 {
		t.Errorf("expected moment 7, got %f", i)
	}
	if k := b.Kind(); k != Dynamic {
		t.Errorf("expected dynamic, got %v", k)
	}
}

func TestBodyKinds(t *testing.T) {
	tests := []struct {
		name string
		new  func(...Option) *Body
		want BodyKind
	}{
		{"kinematic", NewKinematicBody, Kinematic},
		{"static", NewStaticBody, Static},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.new()
			defer b.Release()
			if k := b.Kind(); k != tt.want {
				t.Errorf("expected %v, got %v", tt.want, k)
			}
		})
	}
}

func TestBodyDuplicateAliases(t *testing.T) {
	a := NewBody(1, 1)
	b := a.Duplicate()
	defer a.Release()
	defer b.Release()

	if !a.Same(b) {
		t.Fatal("expected duplicate to refer to the same record")
	}

	b.SetPosition(Vector{X: 3, Y: 4})
	if p := a.Position(); p != (Vector{X: 3, Y: 4}) {
		t.Errorf("expected (3, 4) through the other handle, got %v", p)
	}

	userdata.Set(a.Data(), "shared")
	if v, ok := userdata.Get[string](b.Data()); !ok || v != "shared" {
		t.Errorf("expected shared extension data, got %q, %v", v, ok)
	}
}

func TestBodyRelease(t *testing.T) {
	rec, opt := recorded()
	a := NewBody(1, 1, opt)
	b := a.Duplicate()

	a.Release()
	if !a.Released() {
		t.Error("expected released handle")
	}
	if n := rec.Count("BodyDestroy", "body#1"); n != 0 {
		t.Errorf("expected no destroy while a handle remains, got %d", n)
	}

	b.Release()
	if n := rec.Count("BodyDestroy", "body#1"); n != 1 {
		t.Errorf("expected exactly one destroy, got %d", n)
	}

	expectViolation(t, ErrReleased, func() { a.Position() })
	expectViolation(t, ErrReleased, func() { a.Release() })
	expectViolation(t, ErrReleased, func() { b.Duplicate() })
}

func TestBodyPositionBitwiseRoundTrip(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()

	want := Vector{X: 0.1, Y: -1e-300}
	b.SetPosition(want)
	got := b.Position()
	if math.Float64bits(got.X) != math.Float64bits(want.X) || math.Float64bits(got.Y) != math.Float64bits(want.Y) {
		t.Errorf("expected %v bit for bit, got %v", want, got)
	}
}

func TestBodyDegrees(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()

	b.SetAngle(math.Pi / 2)
	if d := b.AngleDegrees(); math.Abs(d-90) > 1e-12 {
		t.Errorf("expected 90 degrees, got %f", d)
	}

	b.SetAngleDegrees(180)
	if a := b.Angle(); math.Abs(a-math.Pi) > 1e-12 {
		t.Errorf("expected pi radians, got %f", a)
	}

	b.SetAngularVelocity(1)
	if w := b.AngularVelocityDegrees(); math.Abs(w-180/math.Pi) > 1e-12 {
		t.Errorf("expected %f deg/s, got %f", 180/math.Pi, w)
	}

	b.SetAngularVelocityDegrees(-45)
	if w := b.AngularVelocity(); math.Abs(w+math.Pi/4) > 1e-12 {
		t.Errorf("expected -pi/4 rad/s, got %f", w)
	}
}

func TestBodyAccessors(t *testing.T) {
	b := NewBody(1, 1)
	defer b.Release()

	b.SetVelocity(Vector{X: 1, Y: -2})
	if v := b.Velocity(); v != (Vector{X: 1, Y: -2}) {
		t.Errorf("expected velocity (1, -2), got %v", v)
	}

	b.SetForce(Vector{X: 5})
	if f := b.Force(); f != (Vector{X: 5}) {
		t.Errorf("expected force (5, 0), got %v", f)
	}

	b.SetTorque(3)
	if tq := b.Torque(); tq != 3 {
		t.Errorf("expected torque 3, got %f", tq)
	}

	b.SetCenterOfGravity(Vector{X: 0.5})
	if c := b.CenterOfGravity(); c != (Vector{X: 0.5}) {
		t.Errorf("expected cog (0.5, 0), got %v", c)
	}

	b.SetMass(4)
	b.SetMoment(9)
	if b.Mass() != 4 || b.Moment() != 9 {
		t.Errorf("expected mass 4 and moment 9, got %f and %f", b.Mass(), b.Moment())
	}
}

func TestBodyKineticEnergy(t *testing.T) {
	b := NewBody(2, 1)
	defer b.Release()

	b.SetVelocity(Vector{X: 3})
	// cp reports m*v^2 without the 1/2 factor
	if e := b.KineticEnergy(); e != 18 {
		t.Errorf("expected 18, got %f", e)
	}
}

func TestBodyImpulse(t *testing.T) {
	b := NewBody(2, 1)
	defer b.Release()

	b.ApplyImpulseAtWorldPoint(Vector{X: 4}, Vector{})
	if v := b.Velocity(); v != (Vector{X: 2}) {
		t.Errorf("expected velocity (2, 0), got %v", v)
	}
}
