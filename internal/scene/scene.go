// Package scene turns a config.Config into a populated physics.Space.
package scene

import (
	"fmt"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/physics"
)

// Scene owns the application handles for everything it built. Bodies,
// Shapes and Names are index aligned with the config's bodies.
type Scene struct {
	Space  *physics.Space
	Bodies []*physics.Body
	Shapes []*physics.Shape
	Names  []string

	ground *physics.Body
	floors []*physics.Shape
	track  int
}

func vec(v config.Vec) physics.Vector { return physics.Vector{X: v.X, Y: v.Y} }

// Build creates the Space, one shared static body carrying every floor, and
// one Body and Shape per configured body. On error everything created so
// far is released.
func Build(cfg *config.Config, opts ...physics.Option) (sc *Scene, err error) {
	sc = &Scene{
		Space: physics.NewSpace(opts...),
		track: cfg.TrackedIndex(),
	}
	defer func() {
		if err != nil {
			sc.Release()
			sc = nil
		}
	}()

	applySpace(sc.Space, cfg.Space)

	sc.ground = physics.NewStaticBody(opts...)
	sc.Space.AddBody(sc.ground)
	for _, f := range cfg.Floors {
		seg := physics.NewSegment(sc.ground, vec(f.A), vec(f.B), f.Radius)
		seg.SetFriction(f.Friction)
		seg.SetElasticity(f.Elasticity)
		sc.Space.AddShape(seg)
		sc.floors = append(sc.floors, seg)
	}

	for _, bc := range cfg.Bodies {
		body, err := newBody(bc, opts)
		if err != nil {
			return sc, fmt.Errorf("body %q: %w", bc.Name, err)
		}
		shape, err := newShape(body, bc.Shape)
		if err != nil {
			body.Release()
			return sc, fmt.Errorf("body %q: %w", bc.Name, err)
		}

		body.SetPosition(vec(bc.Position))
		body.SetVelocity(vec(bc.Velocity))
		body.SetAngle(bc.Angle)
		body.SetAngularVelocity(bc.AngularVelocity)

		sc.Space.AddBody(body)
		sc.Space.AddShape(shape)
		sc.Bodies = append(sc.Bodies, body)
		sc.Shapes = append(sc.Shapes, shape)
		sc.Names = append(sc.Names, bc.Name)
	}
	return sc, nil
}

func applySpace(s *physics.Space, c config.SpaceConfig) {
	s.SetGravity(vec(c.Gravity))
	if c.Damping != nil {
		s.SetDamping(*c.Damping)
	}
	if c.CollisionSlop != nil {
		s.SetCollisionSlop(*c.CollisionSlop)
	}
	if c.CollisionBias != nil {
		s.SetCollisionBias(*c.CollisionBias)
	}
	if c.CollisionPersistence != nil {
		s.SetCollisionPersistence(*c.CollisionPersistence)
	}
	if c.IdleSpeedThreshold != nil {
		s.SetIdleSpeedThreshold(*c.IdleSpeedThreshold)
	}
	if c.Iterations != nil {
		s.SetIterations(*c.Iterations)
	}
	if c.SleepTimeThreshold != nil {
		s.SetSleepTimeThreshold(*c.SleepTimeThreshold)
	}
}

func newBody(bc config.BodyConfig, opts []physics.Option) (*physics.Body, error) {
	switch bc.Kind {
	case "", "dynamic":
		moment := bc.Moment
		if moment == 0 {
			m, err := Moment(bc.Mass, bc.Shape)
			if err != nil {
				return nil, err
			}
			moment = m
		}
		return physics.NewBody(bc.Mass, moment, opts...), nil
	case "kinematic":
		return physics.NewKinematicBody(opts...), nil
	case "static":
		return physics.NewStaticBody(opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, bc.Kind)
	}
}

func newShape(body *physics.Body, c config.ShapeConfig) (*physics.Shape, error) {
	build, ok := shapeBuilders[c.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownShape, c.Type)
	}
	s := build(body, c)
	s.SetFriction(c.Friction)
	s.SetElasticity(c.Elasticity)
	s.SetSensor(c.Sensor)
	if c.Density > 0 {
		s.SetDensity(c.Density)
	}
	return s, nil
}

var shapeBuilders = map[string]func(*physics.Body, config.ShapeConfig) *physics.Shape{
	"circle": func(b *physics.Body, c config.ShapeConfig) *physics.Shape {
		return physics.NewCircle(b, c.Radius, vec(c.Offset))
	},
	"segment": func(b *physics.Body, c config.ShapeConfig) *physics.Shape {
		return physics.NewSegment(b, vec(c.A), vec(c.B), c.Radius)
	},
	"box": func(b *physics.Body, c config.ShapeConfig) *physics.Shape {
		return physics.NewBox(b, c.Width, c.Height, c.Radius)
	},
	"poly": func(b *physics.Body, c config.ShapeConfig) *physics.Shape {
		return physics.NewPoly(b, verts(c.Verts), c.Radius)
	},
}

func verts(vs []config.Vec) []physics.Vector {
	out := make([]physics.Vector, len(vs))
	for i, v := range vs {
		out[i] = vec(v)
	}
	return out
}

// Moment derives a moment of inertia for mass distributed over the shape.
func Moment(mass float64, c config.ShapeConfig) (float64, error) {
	switch c.Type {
	case "circle":
		return physics.MomentForCircle(mass, 0, c.Radius, vec(c.Offset)), nil
	case "segment":
		return physics.MomentForSegment(mass, vec(c.A), vec(c.B), c.Radius), nil
	case "box":
		return physics.MomentForBox(mass, c.Width, c.Height), nil
	case "poly":
		return physics.MomentForPoly(mass, verts(c.Verts), physics.Vector{}, c.Radius), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownShape, c.Type)
	}
}

// Tracked returns the body sampled by height-based metrics. The Scene keeps
// ownership.
func (sc *Scene) Tracked() *physics.Body {
	if len(sc.Bodies) == 0 {
		return nil
	}
	return sc.Bodies[sc.track]
}

// Floors returns the static floor segments. The Scene keeps ownership.
func (sc *Scene) Floors() []*physics.Shape { return sc.floors }

// TrackedIndex is the index of Tracked in Bodies.
func (sc *Scene) TrackedIndex() int { return sc.track }

// Masses reports each body's mass; non-dynamic bodies report 0.
func (sc *Scene) Masses() []float64 {
	out := make([]float64, len(sc.Bodies))
	for i, b := range sc.Bodies {
		if b.Kind() == physics.Dynamic {
			out[i] = b.Mass()
		}
	}
	return out
}

// Release drops every handle the Scene holds, then the Space.
func (sc *Scene) Release() {
	for _, s := range sc.Shapes {
		s.Release()
	}
	for _, s := range sc.floors {
		s.Release()
	}
	for _, b := range sc.Bodies {
		b.Release()
	}
	if sc.ground != nil {
		sc.ground.Release()
	}
	sc.Space.Release()
	sc.Shapes, sc.floors, sc.Bodies, sc.ground = nil, nil, nil, nil
}
