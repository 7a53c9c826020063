// Package cpengine implements engine.Engine on top of github.com/jakecoffman/cp.
//
// Records handed out are *cp.Body, *cp.Shape, *cp.Arbiter and an internal
// space wrapper. The Engine keeps a table of live records so that destroying
// a record twice, or using one created by another Engine, panics instead of
// corrupting cp state.
package cpengine

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/cpsafe/internal/engine"
)

var _ engine.Engine = (*Engine)(nil)

type Engine struct {
	mu     sync.Mutex
	live   map[any]struct{}
	logger *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		live:   make(map[any]struct{}),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide Engine used when no other is configured.
func Default() *Engine {
	defaultOnce.Do(func() { defaultEngine = New() })
	return defaultEngine
}

// Stats counts live records by kind.
type Stats struct {
	Bodies int
	Shapes int
	Spaces int
}

func (s Stats) Total() int { return s.Bodies + s.Shapes + s.Spaces }

func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var s Stats
	for rec := range e.live {
		switch rec.(type) {
		case *cp.Body:
			s.Bodies++
		case *cp.Shape:
			s.Shapes++
		case *spaceRecord:
			s.Spaces++
		}
	}
	return s
}

func (e *Engine) track(rec any) {
	e.mu.Lock()
	e.live[rec] = struct{}{}
	e.mu.Unlock()
}

func (e *Engine) untrack(rec any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.live[rec]; !ok {
		panic(fmt.Sprintf("cpengine: destroy of unknown or already destroyed %T", rec))
	}
	delete(e.live, rec)
}

func (e *Engine) mustOwn(rec any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.live[rec]; !ok {
		panic(fmt.Sprintf("cpengine: %T was not created by this engine or is destroyed", rec))
	}
}

func (e *Engine) body(r engine.BodyRecord) *cp.Body {
	b, ok := r.(*cp.Body)
	if !ok {
		panic(fmt.Sprintf("cpengine: %T is not a body record", r))
	}
	return b
}

func (e *Engine) shape(r engine.ShapeRecord) *cp.Shape {
	s, ok := r.(*cp.Shape)
	if !ok {
		panic(fmt.Sprintf("cpengine: %T is not a shape record", r))
	}
	return s
}

func (e *Engine) space(r engine.SpaceRecord) *spaceRecord {
	s, ok := r.(*spaceRecord)
	if !ok {
		panic(fmt.Sprintf("cpengine: %T is not a space record", r))
	}
	return s
}

func (e *Engine) arbiter(r engine.ArbiterRecord) *cp.Arbiter {
	a, ok := r.(*cp.Arbiter)
	if !ok {
		panic(fmt.Sprintf("cpengine: %T is not an arbiter record", r))
	}
	return a
}

func toCP(v engine.Vector) cp.Vector   { return cp.Vector{X: v.X, Y: v.Y} }
func fromCP(v cp.Vector) engine.Vector { return engine.Vector{X: v.X, Y: v.Y} }

func kindToCP(k engine.BodyKind) int {
	switch k {
	case engine.Kinematic:
		return cp.BODY_KINEMATIC
	case engine.Static:
		return cp.BODY_STATIC
	default:
		return cp.BODY_DYNAMIC
	}
}

func kindFromCP(t int) engine.BodyKind {
	switch t {
	case cp.BODY_KINEMATIC:
		return engine.Kinematic
	case cp.BODY_STATIC:
		return engine.Static
	default:
		return engine.Dynamic
	}
}
