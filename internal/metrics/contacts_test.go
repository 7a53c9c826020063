package metrics

import (
	"context"
	"testing"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/scene"
	"github.com/san-kum/cpsafe/internal/sim"
)

func TestContactsThroughSimulator(t *testing.T) {
	cfg := config.DefaultConfig()
	sc, err := scene.Build(cfg)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	defer sc.Release()

	contacts := NewContacts()
	bounces := NewBounces(sc.TrackedIndex(), 1)
	low := NewMinHeight(sc.TrackedIndex())
	s := sim.New(sc)
	s.AddMetric(contacts)
	s.AddMetric(bounces)
	s.AddMetric(low)

	result, err := s.Run(context.Background(), sim.Config{Dt: cfg.Dt, Steps: cfg.Steps})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if contacts.Points() == 0 {
		t.Fatal("expected the ball to touch the floor")
	}
	if d := result.Metrics["max_penetration"]; d <= 0 || d > 1 {
		t.Errorf("expected a small positive penetration, got %f", d)
	}
	if h := result.Metrics["min_height"]; h < 4 || h > 5.1 {
		t.Errorf("expected the ball to bottom out near y=5, got %f", h)
	}
}
