// Package tui renders a scene live in the terminal with bubbletea.
package tui

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/cpsafe/internal/config"
	"github.com/san-kum/cpsafe/internal/physics"
	"github.com/san-kum/cpsafe/internal/scene"
)

const (
	canvasWidth  = 70
	canvasHeight = 20
	historyLen   = 120
	margin       = 5.0
)

type tickMsg time.Time

// ReloadMsg swaps in a new scene config, keeping the pause state.
type ReloadMsg struct {
	Config *config.Config
}

// WatchErrMsg reports a config file that failed to load.
type WatchErrMsg struct {
	Err error
}

// Model steps a scene once per frame and draws every body on a braille
// canvas. It owns its Scene; call Close after the program exits.
type Model struct {
	cfg     *config.Config
	sc      *scene.Scene
	canvas  *Canvas
	watcher *config.Watcher
	logger  *slog.Logger

	fps      int
	substeps int
	paused   bool
	simTime  float64
	contacts int
	history  []float64
	err      error
}

type Option func(*Model)

func WithFPS(fps int) Option {
	return func(m *Model) {
		if fps > 0 {
			m.fps = fps
		}
	}
}

// WithWatcher feeds config reloads from w into the model.
func WithWatcher(w *config.Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Model) { m.logger = l }
}

func NewModel(cfg *config.Config, opts ...Option) (*Model, error) {
	m := &Model{
		fps:    30,
		canvas: NewCanvas(canvasWidth, canvasHeight),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(m)
	}
	if err := m.load(cfg); err != nil {
		return nil, err
	}
	return m, nil
}

// load builds cfg and replaces the current scene only on success.
func (m *Model) load(cfg *config.Config) error {
	sc, err := scene.Build(cfg)
	if err != nil {
		return err
	}
	sc.Space.OnPreSolve(func(*physics.Arbiter) bool {
		m.contacts++
		return true
	})

	if m.sc != nil {
		m.sc.Release()
	}
	m.cfg, m.sc = cfg, sc
	m.simTime, m.contacts, m.history, m.err = 0, 0, m.history[:0], nil
	m.substeps = max(1, int(math.Round(1/(float64(m.fps)*cfg.Dt))))
	lo, hi := bounds(cfg)
	m.canvas.Fit(lo, hi)
	m.logger.Debug("scene loaded", "scene", cfg.Scene, "bodies", len(cfg.Bodies), "substeps", m.substeps)
	return nil
}

// bounds covers every floor endpoint and starting body position.
func bounds(cfg *config.Config) (physics.Vector, physics.Vector) {
	lo := physics.Vector{X: math.Inf(1), Y: math.Inf(1)}
	hi := physics.Vector{X: math.Inf(-1), Y: math.Inf(-1)}
	grow := func(p config.Vec, r float64) {
		lo.X, lo.Y = math.Min(lo.X, p.X-r), math.Min(lo.Y, p.Y-r)
		hi.X, hi.Y = math.Max(hi.X, p.X+r), math.Max(hi.Y, p.Y+r)
	}
	for _, f := range cfg.Floors {
		grow(f.A, f.Radius)
		grow(f.B, f.Radius)
	}
	for _, b := range cfg.Bodies {
		grow(b.Position, math.Max(b.Shape.Radius, math.Max(b.Shape.Width, b.Shape.Height)))
	}
	if math.IsInf(lo.X, 0) {
		lo, hi = physics.Vector{}, physics.Vector{}
	}
	pad := physics.Vector{X: margin, Y: margin}
	return lo.Sub(pad), hi.Add(pad)
}

// Close releases the scene.
func (m *Model) Close() {
	if m.sc != nil {
		m.sc.Release()
		m.sc = nil
	}
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return tickMsg(t) })
}

// watch waits for the next config or error from the watcher.
func (m *Model) watch() tea.Cmd {
	if m.watcher == nil {
		return nil
	}
	w := m.watcher
	return func() tea.Msg {
		select {
		case cfg, ok := <-w.Configs:
			if !ok {
				return nil
			}
			return ReloadMsg{Config: cfg}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return WatchErrMsg{Err: err}
		}
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.watch())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ", "p":
			m.paused = !m.paused
		case "r":
			if err := m.load(m.cfg); err != nil {
				m.err = err
			}
		case "n":
			if m.paused {
				m.step()
			}
		}
		return m, nil
	case tickMsg:
		if !m.paused {
			m.step()
		}
		return m, m.tick()
	case ReloadMsg:
		if err := m.load(msg.Config); err != nil {
			m.err = err
		}
		return m, m.watch()
	case WatchErrMsg:
		m.err = msg.Err
		return m, m.watch()
	}
	return m, nil
}

// step advances one frame of substeps and records the tracked height.
func (m *Model) step() {
	for range m.substeps {
		m.sc.Space.Step(m.cfg.Dt)
		m.simTime += m.cfg.Dt
	}
	if b := m.sc.Tracked(); b != nil {
		y := b.Position().Y
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return
		}
		m.history = append(m.history, y)
		if len(m.history) > historyLen {
			m.history = m.history[1:]
		}
	}
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, s := range m.sc.Floors() {
		m.drawShape(s)
	}
	for _, s := range m.sc.Shapes {
		m.drawShape(s)
	}
}

func (m *Model) drawShape(s *physics.Shape) {
	body := s.Body()
	defer body.Release()
	pos, angle := body.Position(), body.Angle()
	world := func(p physics.Vector) physics.Vector {
		sin, cos := math.Sincos(angle)
		return pos.Add(physics.Vector{X: p.X*cos - p.Y*sin, Y: p.X*sin + p.Y*cos})
	}

	if c, ok := s.Circle(); ok {
		m.canvas.Circle(world(c.Offset()), c.Radius(), angle)
		return
	}
	if g, ok := s.Segment(); ok {
		m.canvas.Line(world(g.A()), world(g.B()))
		return
	}
	if p, ok := s.Poly(); ok {
		verts := p.Vertices()
		for i := range verts {
			verts[i] = world(verts[i])
		}
		m.canvas.Polygon(verts)
	}
}

func (m *Model) View() string {
	if m.sc == nil {
		return ""
	}
	m.draw()

	var b strings.Builder
	status := statusRunning.Render("running")
	if m.paused {
		status = statusPaused.Render("paused")
	}
	fmt.Fprintf(&b, "%s  %s  %s\n", title.Render(m.cfg.Scene), subtle.Render(fmt.Sprintf("t=%.2fs", m.simTime)), status)
	b.WriteString(panel.Render(m.canvas.String()))
	b.WriteString("\n")

	if body := m.sc.Tracked(); body != nil {
		p, v := body.Position(), body.Velocity()
		name := m.sc.Names[m.sc.TrackedIndex()]
		fmt.Fprintf(&b, "%s  %s  %s  %s  %s\n",
			subtle.Render(name),
			metric("y", "%.2f", p.Y),
			metric("vy", "%.2f", v.Y),
			metric("angle", "%.1f°", body.AngleDegrees()),
			metric("contacts", "%.0f", float64(m.contacts)))
	}

	if len(m.history) > 1 {
		b.WriteString(asciigraph.Plot(m.history,
			asciigraph.Height(6),
			asciigraph.Width(canvasWidth-10),
			asciigraph.Caption("tracked height")))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString(errorText.Render("error: "+m.err.Error()) + "\n")
	}
	b.WriteString(keyHint.Render("space pause · n step · r reset · q quit"))
	return b.String()
}
