package scene

import (
	"errors"
	"testing"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/engine/cpengine"
	"github.com/san-kum/cpsafe/internal/physics"
)

func TestBuildDefault(t *testing.T) {
	eng := cpengine.New()
	sc, err := Build(config.DefaultConfig(), physics.WithEngine(eng))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if len(sc.Bodies) != 1 || sc.Names[0] != "ball" {
		t.Fatalf("expected one ball, got %v", sc.Names)
	}
	if p := sc.Tracked().Position(); p != (physics.Vector{Y: 15}) {
		t.Errorf("expected ball at (0, 15), got %v", p)
	}
	if g := sc.Space.Gravity(); g != (physics.Vector{Y: -100}) {
		t.Errorf("expected gravity (0, -100), got %v", g)
	}
	want := physics.MomentForCircle(1, 0, 5, physics.Vector{})
	if m := sc.Tracked().Moment(); m != want {
		t.Errorf("expected derived moment %f, got %f", want, m)
	}
	// ground body plus ball
	if n := sc.Space.BodyCount(); n != 2 {
		t.Errorf("expected 2 registered bodies, got %d", n)
	}

	sc.Release()
	if st := eng.Stats(); st.Total() != 0 {
		t.Errorf("expected no live records after release, got %+v", st)
	}
}

func TestBuildPresets(t *testing.T) {
	for _, name := range config.ListScenes() {
		for _, preset := range config.ListPresets(name) {
			t.Run(name+"/"+preset, func(t *testing.T) {
				eng := cpengine.New()
				cfg := config.GetPreset(name, preset)
				sc, err := Build(cfg, physics.WithEngine(eng))
				if err != nil {
					t.Fatalf("build failed: %v", err)
				}
				if len(sc.Bodies) != len(cfg.Bodies) {
					t.Errorf("expected %d bodies, got %d", len(cfg.Bodies), len(sc.Bodies))
				}
				for range 10 {
					sc.Space.Step(cfg.Dt)
				}
				sc.Release()
				if st := eng.Stats(); st.Total() != 0 {
					t.Errorf("expected no live records after release, got %+v", st)
				}
			})
		}
	}
}

func TestBuildSpaceTunables(t *testing.T) {
	cfg := config.DefaultConfig()
	iters, slop := 25, 0.05
	cfg.Space.Iterations = &iters
	cfg.Space.CollisionSlop = &slop

	sc, err := Build(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer sc.Release()

	if n := sc.Space.Iterations(); n != 25 {
		t.Errorf("expected 25 iterations, got %d", n)
	}
	if s := sc.Space.CollisionSlop(); s != 0.05 {
		t.Errorf("expected slop 0.05, got %f", s)
	}
	if d := sc.Space.Damping(); d != physics.DefaultDamping {
		t.Errorf("expected default damping, got %f", d)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{"unknown shape", func(c *config.Config) { c.Bodies[0].Shape.Type = "star" }, ErrUnknownShape},
		{"unknown kind", func(c *config.Config) { c.Bodies[0].Kind = "ghost" }, ErrUnknownKind},
		{"moment for unknown shape", func(c *config.Config) {
			c.Bodies = append(c.Bodies, config.BodyConfig{Name: "b", Shape: config.ShapeConfig{Type: "blob"}})
		}, ErrUnknownShape},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := cpengine.New()
			cfg := config.DefaultConfig()
			tt.mutate(cfg)

			sc, err := Build(cfg, physics.WithEngine(eng))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if sc != nil {
				t.Error("expected nil scene on error")
			}
			if st := eng.Stats(); st.Total() != 0 {
				t.Errorf("expected partial build to be released, got %+v", st)
			}
		})
	}
}

func TestMomentKinds(t *testing.T) {
	tests := []struct {
		shape config.ShapeConfig
		want  float64
	}{
		{config.ShapeConfig{Type: "circle", Radius: 2}, physics.MomentForCircle(3, 0, 2, physics.Vector{})},
		{config.ShapeConfig{Type: "box", Width: 2, Height: 4}, physics.MomentForBox(3, 2, 4)},
		{config.ShapeConfig{Type: "segment", A: config.Vec{X: -1}, B: config.Vec{X: 1}}, physics.MomentForSegment(3, physics.Vector{X: -1}, physics.Vector{X: 1}, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.shape.Type, func(t *testing.T) {
			got, err := Moment(3, tt.shape)
			if err != nil {
				t.Fatalf("moment failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %f, got %f", tt.want, got)
			}
		})
	}
}
