// Package enginetest provides an engine.Engine decorator that records
// lifecycle calls so tests can assert on destruction counts and ordering.
package enginetest

import (
	"fmt"
	"strings"
	"sync"

	"github.com/san-kum/cpsafe/internal/engine"
)

// Call is one recorded lifecycle operation. Target names the record in
// creation order, e.g. "body#2"; Arg names a second record when the
// operation has one.
type Call struct {
	Op     string
	Target string
	Arg    string
}

func (c Call) String() string {
	if c.Arg == "" {
		return fmt.Sprintf("%s(%s)", c.Op, c.Target)
	}
	return fmt.Sprintf("%s(%s, %s)", c.Op, c.Target, c.Arg)
}

// Recorder wraps an Engine. Only lifecycle methods are intercepted; all
// accessors go straight to the wrapped Engine.
type Recorder struct {
	engine.Engine

	mu     sync.Mutex
	calls  []Call
	names  map[any]string
	counts map[string]int
}

func New(inner engine.Engine) *Recorder {
	return &Recorder{
		Engine: inner,
		names:  make(map[any]string),
		counts: make(map[string]int),
	}
}

func (r *Recorder) name(rec any, kind string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.names[rec]; ok {
		return n
	}
	r.counts[kind]++
	n := fmt.Sprintf("%s#%d", kind, r.counts[kind])
	r.names[rec] = n
	return n
}

func (r *Recorder) lookup(rec any) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n, ok := r.names[rec]; ok {
		return n
	}
	return "?"
}

func (r *Recorder) record(op, target, arg string) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{Op: op, Target: target, Arg: arg})
	r.mu.Unlock()
}

// Calls returns a copy of every recorded call in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}

// Ops returns the recorded calls whose Op starts with prefix, formatted
// with Call.String.
func (r *Recorder) Ops(prefix string) []string {
	var out []string
	for _, c := range r.Calls() {
		if strings.HasPrefix(c.Op, prefix) {
			out = append(out, c.String())
		}
	}
	return out
}

// Count returns how many times op was called on target.
func (r *Recorder) Count(op, target string) int {
	n := 0
	for _, c := range r.Calls() {
		if c.Op == op && c.Target == target {
			n++
		}
	}
	return n
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func (r *Recorder) BodyCreate(mass, moment float64) engine.BodyRecord {
	rec := r.Engine.BodyCreate(mass, moment)
	r.record("BodyCreate", r.name(rec, "body"), "")
	return rec
}

func (r *Recorder) BodyDestroy(b engine.BodyRecord) {
	r.record("BodyDestroy", r.lookup(b), "")
	r.Engine.BodyDestroy(b)
}

func (r *Recorder) ShapeCreateCircle(b engine.BodyRecord, radius float64, offset engine.Vector) engine.ShapeRecord {
	return r.shapeCreated("ShapeCreateCircle", b, r.Engine.ShapeCreateCircle(b, radius, offset))
}

func (r *Recorder) ShapeCreateSegment(b engine.BodyRecord, a, bEnd engine.Vector, radius float64) engine.ShapeRecord {
	return r.shapeCreated("ShapeCreateSegment", b, r.Engine.ShapeCreateSegment(b, a, bEnd, radius))
}

func (r *Recorder) ShapeCreatePolygon(b engine.BodyRecord, verts []engine.Vector, radius float64) engine.ShapeRecord {
	return r.shapeCreated("ShapeCreatePolygon", b, r.Engine.ShapeCreatePolygon(b, verts, radius))
}

func (r *Recorder) ShapeCreateBox(b engine.BodyRecord, width, height, radius float64) engine.ShapeRecord {
	return r.shapeCreated("ShapeCreateBox", b, r.Engine.ShapeCreateBox(b, width, height, radius))
}

func (r *Recorder) shapeCreated(op string, b engine.BodyRecord, s engine.ShapeRecord) engine.ShapeRecord {
	r.record(op, r.name(s, "shape"), r.lookup(b))
	return s
}

func (r *Recorder) ShapeDestroy(s engine.ShapeRecord) {
	r.record("ShapeDestroy", r.lookup(s), "")
	r.Engine.ShapeDestroy(s)
}

func (r *Recorder) SpaceCreate() engine.SpaceRecord {
	rec := r.Engine.SpaceCreate()
	r.record("SpaceCreate", r.name(rec, "space"), "")
	return rec
}

func (r *Recorder) SpaceDestroy(sp engine.SpaceRecord) {
	r.record("SpaceDestroy", r.lookup(sp), "")
	r.Engine.SpaceDestroy(sp)
}

func (r *Recorder) SpaceAddBody(sp engine.SpaceRecord, b engine.BodyRecord) {
	r.record("SpaceAddBody", r.lookup(sp), r.lookup(b))
	r.Engine.SpaceAddBody(sp, b)
}

func (r *Recorder) SpaceRemoveBody(sp engine.SpaceRecord, b engine.BodyRecord) {
	r.record("SpaceRemoveBody", r.lookup(sp), r.lookup(b))
	r.Engine.SpaceRemoveBody(sp, b)
}

func (r *Recorder) SpaceAddShape(sp engine.SpaceRecord, s engine.ShapeRecord) {
	r.record("SpaceAddShape", r.lookup(sp), r.lookup(s))
	r.Engine.SpaceAddShape(sp, s)
}

func (r *Recorder) SpaceRemoveShape(sp engine.SpaceRecord, s engine.ShapeRecord) {
	r.record("SpaceRemoveShape", r.lookup(sp), r.lookup(s))
	r.Engine.SpaceRemoveShape(sp, s)
}

func (r *Recorder) SpaceStep(sp engine.SpaceRecord, dt float64) {
	r.record("SpaceStep", r.lookup(sp), "")
	r.Engine.SpaceStep(sp, dt)
}
