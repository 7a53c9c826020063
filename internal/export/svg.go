// Package export renders stored runs to SVG.
package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/sim"
)

var palette = []string{"#00ff88", "#00ccff", "#ff00ff", "#ffaa00", "#ff4444", "#aaaaff"}

type bounds struct{ minX, maxX, minY, maxY float64 }

func (b *bounds) add(x, y float64) {
	if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
		return
	}
	b.minX, b.maxX = math.Min(b.minX, x), math.Max(b.maxX, x)
	b.minY, b.maxY = math.Min(b.minY, y), math.Max(b.maxY, y)
}

// pad grows the box by 10% per side; a degenerate axis gets a unit range.
func (b *bounds) pad() {
	rangeX := max(b.maxX-b.minX, 1)
	rangeY := max(b.maxY-b.minY, 1)
	b.minX -= rangeX * 0.1
	b.maxX += rangeX * 0.1
	b.minY -= rangeY * 0.1
	b.maxY += rangeY * 0.1
}

// TrajectorySVG draws the floors of cfg and the path of every body through
// states. Body i uses columns i*sim.StateWidth and i*sim.StateWidth+1.
func TrajectorySVG(w io.Writer, cfg *config.Config, states []sim.State, width, height int) error {
	if len(states) == 0 {
		return fmt.Errorf("no states to draw")
	}

	b := bounds{math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)}
	for _, f := range cfg.Floors {
		b.add(f.A.X, f.A.Y)
		b.add(f.B.X, f.B.Y)
	}
	for _, s := range states {
		for i := 0; i+1 < len(s); i += sim.StateWidth {
			b.add(s[i], s[i+1])
		}
	}
	if math.IsInf(b.minX, 0) {
		return fmt.Errorf("no finite positions to draw")
	}
	b.pad()

	// uniform scale so circles stay round
	scale := math.Min(float64(width)/(b.maxX-b.minX), float64(height)/(b.maxY-b.minY))
	px := func(x, y float64) (float64, float64) {
		return (x - b.minX) * scale, float64(height) - (y-b.minY)*scale
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for _, f := range cfg.Floors {
		x1, y1 := px(f.A.X, f.A.Y)
		x2, y2 := px(f.B.X, f.B.Y)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#888899" stroke-width="%.1f"/>
`, x1, y1, x2, y2, max(2*f.Radius*scale, 1.5))
	}

	bodies := len(states[0]) / sim.StateWidth
	for i := 0; i < bodies; i++ {
		name := fmt.Sprintf("body%d", i)
		if i < len(cfg.Bodies) {
			name = cfg.Bodies[i].Name
		}
		fmt.Fprintf(&sb, `<path id="%s" fill="none" stroke="%s" stroke-width="1.5" d="`, name, palette[i%len(palette)])
		move := true
		for _, s := range states {
			if len(s) < (i+1)*sim.StateWidth || !s.Body(i).IsValid() {
				move = true
				continue
			}
			x, y := px(s.X(i), s.Y(i))
			if move {
				fmt.Fprintf(&sb, "M%.1f,%.1f", x, y)
				move = false
			} else {
				fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
			}
		}
		sb.WriteString("\"/>\n")
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
