package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/cpsafe/internal/sim"
)

func TestApexes(t *testing.T) {
	ys := []float64{16, 8, 0, 2, 4, 2, 0, 0.5, 1, 1, 0.5, 0}
	got := Apexes(ys)
	want := []float64{4, 1}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("apex %d: expected %f, got %f", i, want[i], got[i])
		}
	}
}

func TestApexesIgnoresUnfinishedRise(t *testing.T) {
	if got := Apexes([]float64{5, 0, 1, 2, 3}); len(got) != 0 {
		t.Errorf("expected no apexes, got %v", got)
	}
}

func TestRestitution(t *testing.T) {
	e, ok := Restitution([]float64{16, 4, 1}, 0)
	if !ok {
		t.Fatal("expected an estimate")
	}
	if math.Abs(e-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", e)
	}

	if _, ok := Restitution([]float64{3}, 0); ok {
		t.Error("expected no estimate from a single apex")
	}
	if _, ok := Restitution([]float64{1, 2}, 5); ok {
		t.Error("expected no estimate from apexes below rest")
	}
}

func TestPhasePortrait(t *testing.T) {
	states := []sim.State{{1, 2, 3}, {4, 5, 6}}

	p := PhasePortrait(states, 0, 2)
	if p == nil {
		t.Fatal("expected a portrait")
	}
	if len(p.Points) != 2 || p.Points[1] != (Point{X: 4, Y: 6}) {
		t.Errorf("unexpected points %v", p.Points)
	}

	if PhasePortrait(states, 0, 3) != nil {
		t.Error("expected nil for an out of range index")
	}
	if PhasePortrait(nil, 0, 0) != nil {
		t.Error("expected nil for no states")
	}
}

func TestCrossings(t *testing.T) {
	states := []sim.State{
		{0, 0},
		{2, 10},
		{4, 20},
		{0, 30},
		{3, 40},
	}

	got := Crossings(states, 0, 1, 0, 1)
	if len(got) != 2 {
		t.Fatalf("expected 2 crossings, got %v", got)
	}
	if got[0] != (Point{X: 1, Y: 5}) {
		t.Errorf("expected interpolated (1, 5), got %v", got[0])
	}
	if math.Abs(got[1].X-1) > 1e-9 || got[1].Y <= 30 {
		t.Errorf("expected second crossing past t=30, got %v", got[1])
	}
}

func TestColumn(t *testing.T) {
	got := Column([]sim.State{{1, 2}, {3}, {5, 6}}, 1)
	if len(got) != 2 || got[0] != 2 || got[1] != 6 {
		t.Errorf("expected [2 6], got %v", got)
	}
}

func TestToASCII(t *testing.T) {
	out := ToASCII([]Point{{X: -1, Y: -1}, {X: 1, Y: 1}}, 20, 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 {
		t.Fatalf("expected 10 rows, got %d", len(lines))
	}
	if strings.Count(out, "•") != 2 {
		t.Errorf("expected 2 points, got %q", out)
	}
	if !strings.Contains(out, "┼") {
		t.Error("expected the axes to cross")
	}
	if ToASCII(nil, 20, 10) != "" {
		t.Error("expected empty output for no points")
	}
}
