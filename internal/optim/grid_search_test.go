package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/engine/cpengine"
	"github.com/san-kum/cpsafe/internal/physics"
)

func TestParseParam(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    []float64
		wantErr error
	}{
		{"list", "elasticity=0.1, 0.5,0.9", []float64{0.1, 0.5, 0.9}, nil},
		{"single", "gravity_y=-10", []float64{-10}, nil},
		{"range", "friction=0:1:5", []float64{0, 0.25, 0.5, 0.75, 1}, nil},
		{"unknown", "spin=1", nil, ErrUnknownParam},
		{"bad range", "friction=0:1:x", nil, nil},
		{"no values", "friction=", nil, nil},
		{"bad value", "friction=a", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseParam(tt.in)
			if tt.want == nil {
				if err == nil {
					t.Fatal("expected an error")
				}
				if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
					t.Errorf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(p.Values) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, p.Values)
			}
			for i := range tt.want {
				if p.Values[i] != tt.want[i] {
					t.Errorf("value %d: expected %f, got %f", i, tt.want[i], p.Values[i])
				}
			}
		})
	}
}

func TestGridSearchGrid(t *testing.T) {
	g := NewGridSearch([]Param{
		{Name: "elasticity", Values: []float64{0, 0.5}},
		{Name: "friction", Values: []float64{0.1, 0.2, 0.3}},
	})

	var points []map[string]float64
	g.searchRecursive(0, map[string]float64{}, &points)
	if len(points) != 6 {
		t.Fatalf("expected 6 points, got %d", len(points))
	}
	if points[0]["elasticity"] != 0 || points[5]["friction"] != 0.3 {
		t.Errorf("unexpected grid order: %v", points)
	}
}

func TestGridSearchBouncesMost(t *testing.T) {
	eng := cpengine.New()
	base := config.DefaultConfig()
	base.Steps = 240

	g := NewGridSearch([]Param{
		{Name: "elasticity", Values: []float64{0, 0.9}},
		{Name: "floor_elasticity", Values: []float64{0.9}},
	}).Maximize().SetLimit(2)

	best, trials, err := g.Search(context.Background(), base, "bounces", physics.WithEngine(eng))
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(trials) != 2 {
		t.Fatalf("expected 2 trials, got %d", len(trials))
	}
	if best.Params["elasticity"] != 0.9 {
		t.Errorf("expected the elastic ball to bounce most, got %v (trials %v)", best.Params, trials)
	}
	if total := eng.Stats().Total(); total != 0 {
		t.Errorf("expected every record released, %d alive", total)
	}
	if base.Bodies[0].Shape.Elasticity == 0.9 {
		t.Error("expected the base config to be left alone")
	}
}

func TestGridSearchUnknownMetric(t *testing.T) {
	g := NewGridSearch([]Param{{Name: "friction", Values: []float64{1}}})
	if _, _, err := g.Search(context.Background(), config.DefaultConfig(), "nope"); err == nil {
		t.Error("expected an unknown metric error")
	}
}

func TestGridSearchUnknownParam(t *testing.T) {
	g := NewGridSearch([]Param{{Name: "spin", Values: []float64{1}}})
	_, _, err := g.Search(context.Background(), config.DefaultConfig(), "energy")
	if !errors.Is(err, ErrUnknownParam) {
		t.Errorf("expected %v, got %v", ErrUnknownParam, err)
	}
}
