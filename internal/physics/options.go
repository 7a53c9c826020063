package physics

import (
	"log/slog"

	"github.com/san-kum/cpsafe/internal/engine"
	"github.com/san-kum/cpsafe/internal/engine/cpengine"
)

type (
	Vector   = engine.Vector
	BodyKind = engine.BodyKind
	Geometry = engine.Geometry
)

const (
	Dynamic   = engine.Dynamic
	Kinematic = engine.Kinematic
	Static    = engine.Static
)

type options struct {
	engine engine.Engine
	logger *slog.Logger
}

// Option configures the Engine and logger behind a new Space or Body.
// Shapes inherit both from their Body.
type Option func(*options)

// WithEngine selects the Engine. The default is cpengine.Default().
func WithEngine(e engine.Engine) Option {
	return func(o *options) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithLogger sets the logger used for lifecycle debug records.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.engine == nil {
		o.engine = cpengine.Default()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}
	return o
}

func MomentForCircle(mass, innerRadius, outerRadius float64, offset Vector) float64 {
	return cpengine.MomentForCircle(mass, innerRadius, outerRadius, offset)
}

func MomentForSegment(mass float64, a, b Vector, radius float64) float64 {
	return cpengine.MomentForSegment(mass, a, b, radius)
}

func MomentForBox(mass, width, height float64) float64 {
	return cpengine.MomentForBox(mass, width, height)
}

func MomentForPoly(mass float64, verts []Vector, offset Vector, radius float64) float64 {
	return cpengine.MomentForPoly(mass, verts, offset, radius)
}
