package tui

import (
	"math"
	"strings"

	"github.com/san-kum/cpsafe/internal/physics"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = 0x2800

// Canvas is a braille grid mapped onto a rectangle of world space.
// World y grows upwards; canvas rows grow downwards.
type Canvas struct {
	Width, Height int
	grid          [][]rune

	origin physics.Vector
	scale  float64
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{Width: w, Height: h, grid: make([][]rune, h), scale: 1}
	for i := range c.grid {
		c.grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// Fit centers the world rectangle [min, max] on the canvas with a uniform
// scale.
func (c *Canvas) Fit(min, max physics.Vector) {
	pw, ph := float64(c.Width*2), float64(c.Height*4)
	w, h := max.X-min.X, max.Y-min.Y
	if w <= 0 || h <= 0 {
		return
	}
	c.scale = math.Min(pw/w, ph/h)
	center := min.Add(max).Scale(0.5)
	c.origin = physics.Vector{
		X: center.X - pw/(2*c.scale),
		Y: center.Y + ph/(2*c.scale),
	}
}

func (c *Canvas) pixel(p physics.Vector) (int, int) {
	return int(math.Round((p.X - c.origin.X) * c.scale)), int(math.Round((c.origin.Y - p.Y) * c.scale))
}

func (c *Canvas) set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.grid {
		for j := range c.grid[i] {
			c.grid[i][j] = blank
		}
	}
}

func (c *Canvas) Point(p physics.Vector) {
	c.set(c.pixel(p))
}

// Line draws a segment between two world points with Bresenham's algorithm.
func (c *Canvas) Line(a, b physics.Vector) {
	x0, y0 := c.pixel(a)
	x1, y1 := c.pixel(b)
	if !inRange(x0, y0) || !inRange(x1, y1) {
		return
	}
	dx, dy := absInt(x1-x0), absInt(y1-y0)
	sx, sy := -1, -1
	if x0 < x1 {
		sx = 1
	}
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for {
		c.set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// Circle outlines a world circle and marks its rotation with a spoke.
func (c *Canvas) Circle(center physics.Vector, r, angle float64) {
	steps := max(12, int(2*math.Pi*r*c.scale))
	prev := center.Add(physics.Vector{X: r})
	for i := 1; i <= steps; i++ {
		a := 2 * math.Pi * float64(i) / float64(steps)
		p := center.Add(physics.Vector{X: r * math.Cos(a), Y: r * math.Sin(a)})
		c.Line(prev, p)
		prev = p
	}
	c.Line(center, center.Add(physics.Vector{X: r * math.Cos(angle), Y: r * math.Sin(angle)}))
}

// Polygon outlines a closed polygon given in world coordinates.
func (c *Canvas) Polygon(verts []physics.Vector) {
	for i := range verts {
		c.Line(verts[i], verts[(i+1)%len(verts)])
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

// inRange rejects pixel coordinates far enough off screen to stall the
// line walk, such as a body that has tunnelled to infinity.
func inRange(x, y int) bool {
	const limit = 1 << 16
	return x > -limit && x < limit && y > -limit && y < limit
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
