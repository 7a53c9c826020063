package analysis

import (
	"math"
	"strings"

	"github.com/san-kum/cpsafe/internal/sim"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D holds data for a 2D phase space plot
type PhasePortrait2D struct {
	XIndex, YIndex int
	Points         []Point
}

// Column extracts one flat state index from every sample. Samples too short
// to hold it are skipped.
func Column(states []sim.State, idx int) []float64 {
	out := make([]float64, 0, len(states))
	for _, s := range states {
		if idx < len(s) {
			out = append(out, s[idx])
		}
	}
	return out
}

// PhasePortrait pairs state columns xIdx and yIdx of every sample. It
// returns nil when either index is outside the first sample.
func PhasePortrait(states []sim.State, xIdx, yIdx int) *PhasePortrait2D {
	if len(states) == 0 || xIdx < 0 || yIdx < 0 || xIdx >= len(states[0]) || yIdx >= len(states[0]) {
		return nil
	}

	portrait := &PhasePortrait2D{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(states)),
	}
	for _, s := range states {
		if xIdx >= len(s) || yIdx >= len(s) {
			continue
		}
		portrait.Points = append(portrait.Points, Point{X: s[xIdx], Y: s[yIdx]})
	}
	return portrait
}

// Crossings records columns recordX and recordY, linearly interpolated,
// wherever column crossIdx passes threshold going upwards.
func Crossings(states []sim.State, crossIdx int, threshold float64, recordX, recordY int) []Point {
	var out []Point
	for i := 1; i < len(states); i++ {
		prev, curr := states[i-1], states[i]
		if max(crossIdx, recordX, recordY) >= min(len(prev), len(curr)) {
			continue
		}
		if !(prev[crossIdx] < threshold && curr[crossIdx] >= threshold) {
			continue
		}
		frac := (threshold - prev[crossIdx]) / (curr[crossIdx] - prev[crossIdx])
		if math.IsNaN(frac) || math.IsInf(frac, 0) {
			frac = 0.5
		}
		out = append(out, Point{
			X: prev[recordX] + frac*(curr[recordX]-prev[recordX]),
			Y: prev[recordY] + frac*(curr[recordY]-prev[recordY]),
		})
	}
	return out
}

// ToASCII plots points on a width by height grid with axes where they
// cross the visible area.
func ToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}

	rangeX := max(maxX-minX, 1)
	rangeY := max(maxY-minY, 1)
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	col := func(x float64) int { return int((x - minX) / rangeX * float64(width-1)) }
	row := func(y float64) int { return height - 1 - int((y-minY)/rangeY*float64(height-1)) }

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		c := col(0)
		for r := range grid {
			grid[r][c] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		r := row(0)
		for c := range grid[r] {
			if grid[r][c] == '│' {
				grid[r][c] = '┼'
			} else {
				grid[r][c] = '─'
			}
		}
	}

	for _, p := range points {
		r, c := row(p.Y), col(p.X)
		if r >= 0 && r < height && c >= 0 && c < width {
			grid[r][c] = '•'
		}
	}

	var sb strings.Builder
	for _, line := range grid {
		sb.WriteString(string(line))
		sb.WriteRune('\n')
	}
	return sb.String()
}
