package export

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/sim"
)

func TestTrajectorySVG(t *testing.T) {
	cfg := config.DefaultConfig()
	states := []sim.State{
		{0, 15, 0, 0, 0, 0},
		{0, 10, 0, 0, -5, 0},
		{0, 5, 0, 0, -10, 0},
	}

	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, cfg, states, 400, 300); err != nil {
		t.Fatalf("svg failed: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.HasSuffix(out, "</svg>\n") {
		t.Error("expected a complete svg document")
	}
	if n := strings.Count(out, "<line"); n != len(cfg.Floors) {
		t.Errorf("expected %d floor lines, got %d", len(cfg.Floors), n)
	}
	if !strings.Contains(out, `id="ball"`) {
		t.Error("expected a path named after the body")
	}
	if n := strings.Count(out, " L"); n != 2 {
		t.Errorf("expected 2 line segments, got %d", n)
	}
}

func TestTrajectorySVGBreaksOnInvalid(t *testing.T) {
	states := []sim.State{
		{0, 1, 0, 0, 0, 0},
		{math.NaN(), 1, 0, 0, 0, 0},
		{1, 1, 0, 0, 0, 0},
	}

	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, &config.Config{}, states, 100, 100); err != nil {
		t.Fatalf("svg failed: %v", err)
	}
	if n := strings.Count(buf.String(), "M"); n != 2 {
		t.Errorf("expected the path to restart after the invalid sample, got %d moves", n)
	}
}

func TestTrajectorySVGEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, config.DefaultConfig(), nil, 100, 100); err == nil {
		t.Error("expected an error for no states")
	}
}
