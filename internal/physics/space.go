package physics

import (
	"log/slog"
	"sync"

	"github.com/san-kum/cpsafe/internal/engine"
	"github.com/san-kum/cpsafe/internal/userdata"
)

// Documented defaults of a fresh Space. Slop, bias and persistence are the
// Engine's own values and are reported, not imposed.
const (
	DefaultDamping              = 1.0
	DefaultIterations           = 10
	DefaultCollisionPersistence = 3
	DefaultIdleSpeedThreshold   = 0.0
)

type spaceCell struct {
	mu     sync.Mutex
	eng    engine.Engine
	rec    engine.SpaceRecord
	refs   int
	locked bool
	bodies []*Body
	shapes []*Shape
	hooks  []PreSolveHook
	data   userdata.Slot
	logger *slog.Logger
}

// Space is a handle to an Engine space. It holds a reference to every Body
// and Shape registered in it.
type Space struct {
	c *spaceCell
}

func NewSpace(opts ...Option) *Space {
	o := buildOptions(opts)
	c := &spaceCell{
		eng:    o.engine,
		rec:    o.engine.SpaceCreate(),
		refs:   1,
		logger: o.logger,
	}
	c.eng.SetSpacePreSolve(c.rec, c.preSolve)
	c.logger.Debug("space created")
	return &Space{c: c}
}

func (s *Space) live(op string) *spaceCell {
	if s == nil || s.c == nil {
		violation("Space."+op, ErrReleased)
	}
	return s.c
}

// lock acquires the cell and rejects structural changes during Step. The
// caller must unlock.
func (s *Space) lock(op string) *spaceCell {
	c := s.live(op)
	c.mu.Lock()
	if c.locked {
		c.mu.Unlock()
		violation("Space."+op, ErrSpaceLocked)
	}
	return c
}

func (s *Space) do(op string, fn func(e engine.Engine, r engine.SpaceRecord)) {
	c := s.live(op)
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.eng, c.rec)
}

func spaceGet[T any](s *Space, op string, get func(engine.Engine, engine.SpaceRecord) T) (v T) {
	s.do(op, func(e engine.Engine, r engine.SpaceRecord) { v = get(e, r) })
	return v
}

func spaceSet[T any](s *Space, op string, set func(engine.Engine, engine.SpaceRecord, T), v T) {
	s.do(op, func(e engine.Engine, r engine.SpaceRecord) { set(e, r, v) })
}

func (s *Space) Duplicate() *Space {
	c := s.live("Duplicate")
	c.mu.Lock()
	c.refs++
	c.mu.Unlock()
	return &Space{c: c}
}

// Release drops this handle's reference. The last release removes and
// releases every registered shape, then every registered body, then
// destroys the Engine space.
func (s *Space) Release() {
	c := s.lock("Release")
	s.c = nil
	c.refs--
	if c.refs > 0 {
		c.mu.Unlock()
		return
	}
	shapes, bodies := c.shapes, c.bodies
	c.shapes, c.bodies, c.hooks = nil, nil, nil
	c.locked = true
	c.mu.Unlock()

	for _, sh := range shapes {
		sc := sh.c
		sc.mu.Lock()
		c.eng.SpaceRemoveShape(c.rec, sc.rec)
		sc.space = nil
		sc.mu.Unlock()
		sh.Release()
	}
	for _, b := range bodies {
		bc := b.c
		bc.mu.Lock()
		c.eng.SpaceRemoveBody(c.rec, bc.rec)
		bc.space = nil
		bc.mu.Unlock()
		b.Release()
	}
	c.eng.SpaceDestroy(c.rec)
	c.rec = nil
	c.logger.Debug("space destroyed", "shapes", len(shapes), "bodies", len(bodies))
}

func (s *Space) Released() bool { return s == nil || s.c == nil }

func (s *Space) Data() *userdata.Slot { return &s.live("Data").data }

// AddBody registers b and keeps a reference to it until it is removed or
// the Space is destroyed.
func (s *Space) AddBody(b *Body) {
	c := s.lock("AddBody")
	defer c.mu.Unlock()
	bc := b.live("AddBody")
	if bc.eng != c.eng {
		violation("Space.AddBody", ErrEngineMismatch)
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()
	if bc.space != nil {
		violation("Space.AddBody", ErrAlreadyRegistered)
	}
	c.eng.SpaceAddBody(c.rec, bc.rec)
	bc.space = c
	bc.refs++
	c.bodies = append(c.bodies, &Body{c: bc})
	c.logger.Debug("body added", "bodies", len(c.bodies))
}

// AddShape registers sh. Its Body is not registered implicitly; a body that
// is never added is not integrated.
func (s *Space) AddShape(sh *Shape) {
	c := s.lock("AddShape")
	defer c.mu.Unlock()
	sc := sh.live("AddShape")
	if sc.eng != c.eng {
		violation("Space.AddShape", ErrEngineMismatch)
	}

	sc.mu.Lock()
	defer sc.mu.Unlock()
	if sc.space != nil {
		violation("Space.AddShape", ErrAlreadyRegistered)
	}
	c.eng.SpaceAddShape(c.rec, sc.rec)
	sc.space = c
	sc.refs++
	c.shapes = append(c.shapes, &Shape{c: sc})
	c.logger.Debug("shape added", "shapes", len(c.shapes), "geometry", sc.geom)
}

// RemoveBody deregisters b and drops the Space's reference to it.
func (s *Space) RemoveBody(b *Body) {
	bc := b.live("RemoveBody")
	c := s.lock("RemoveBody")

	i := indexOf(c.bodies, func(h *Body) bool { return h.c == bc })
	if i < 0 {
		c.mu.Unlock()
		violation("Space.RemoveBody", ErrNotRegistered)
	}
	held := c.bodies[i]
	c.bodies = append(c.bodies[:i], c.bodies[i+1:]...)

	bc.mu.Lock()
	c.eng.SpaceRemoveBody(c.rec, bc.rec)
	bc.space = nil
	bc.mu.Unlock()
	c.mu.Unlock()

	held.Release()
}

// RemoveShape deregisters sh and drops the Space's reference to it.
func (s *Space) RemoveShape(sh *Shape) {
	sc := sh.live("RemoveShape")
	c := s.lock("RemoveShape")

	i := indexOf(c.shapes, func(h *Shape) bool { return h.c == sc })
	if i < 0 {
		c.mu.Unlock()
		violation("Space.RemoveShape", ErrNotRegistered)
	}
	held := c.shapes[i]
	c.shapes = append(c.shapes[:i], c.shapes[i+1:]...)

	sc.mu.Lock()
	c.eng.SpaceRemoveShape(c.rec, sc.rec)
	sc.space = nil
	sc.mu.Unlock()
	c.mu.Unlock()

	held.Release()
}

func indexOf[T any](xs []T, match func(T) bool) int {
	for i, x := range xs {
		if match(x) {
			return i
		}
	}
	return -1
}

func (s *Space) ContainsBody(b *Body) bool {
	c := s.live("ContainsBody")
	bc := b.live("ContainsBody")
	bc.mu.Lock()
	defer bc.mu.Unlock()
	return bc.space == c
}

func (s *Space) ContainsShape(sh *Shape) bool {
	c := s.live("ContainsShape")
	sc := sh.live("ContainsShape")
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.space == c
}

func (s *Space) BodyCount() int {
	c := s.live("BodyCount")
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bodies)
}

func (s *Space) ShapeCount() int {
	c := s.live("ShapeCount")
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.shapes)
}

// EachBody calls fn with a borrowed handle to every registered body, in
// registration order. Borrowed handles cannot be released; Duplicate one to
// keep it.
func (s *Space) EachBody(fn func(b *Body)) {
	c := s.live("EachBody")
	c.mu.Lock()
	bodies := make([]*Body, len(c.bodies))
	for i, b := range c.bodies {
		bodies[i] = &Body{c: b.c, borrowed: true}
	}
	c.mu.Unlock()

	for _, b := range bodies {
		fn(b)
	}
}

// OnPreSolve registers a hook called for every touching shape pair during
// Step, in Engine order. All hooks run; the pair is kept only if every hook
// returns true.
func (s *Space) OnPreSolve(hook PreSolveHook) {
	c := s.lock("OnPreSolve")
	defer c.mu.Unlock()
	c.hooks = append(c.hooks, hook)
}

func (c *spaceCell) preSolve(rec engine.ArbiterRecord) bool {
	if len(c.hooks) == 0 {
		return true
	}
	arb := &Arbiter{eng: c.eng, rec: rec}
	defer arb.expire()

	keep := true
	for _, hook := range c.hooks {
		if !hook(arb) {
			keep = false
		}
	}
	return keep
}

// Step advances the simulation by dt, which is passed through unchecked.
// Hooks run on the calling goroutine before Step returns.
func (s *Space) Step(dt float64) {
	c := s.lock("Step")
	c.locked = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.locked = false
		c.mu.Unlock()
	}()
	c.eng.SpaceStep(c.rec, dt)
}

// Locked reports whether a Step is in progress.
func (s *Space) Locked() bool {
	c := s.live("Locked")
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

func (s *Space) Gravity() Vector {
	return spaceGet(s, "Gravity", engine.Engine.SpaceGravity)
}

func (s *Space) SetGravity(g Vector) {
	spaceSet(s, "SetGravity", engine.Engine.SetSpaceGravity, g)
}

// Damping is the fraction of velocity kept per second; 1 disables damping.
func (s *Space) Damping() float64 {
	return spaceGet(s, "Damping", engine.Engine.SpaceDamping)
}

func (s *Space) SetDamping(d float64) {
	spaceSet(s, "SetDamping", engine.Engine.SetSpaceDamping, d)
}

// CollisionSlop is the overlap allowed before correction kicks in.
func (s *Space) CollisionSlop() float64 {
	return spaceGet(s, "CollisionSlop", engine.Engine.SpaceCollisionSlop)
}

func (s *Space) SetCollisionSlop(slop float64) {
	spaceSet(s, "SetCollisionSlop", engine.Engine.SetSpaceCollisionSlop, slop)
}

// CollisionBias is the fraction of overlap left uncorrected after one
// second. The default corrects 10% per step at 60 Hz.
func (s *Space) CollisionBias() float64 {
	return spaceGet(s, "CollisionBias", engine.Engine.SpaceCollisionBias)
}

func (s *Space) SetCollisionBias(bias float64) {
	spaceSet(s, "SetCollisionBias", engine.Engine.SetSpaceCollisionBias, bias)
}

// CollisionPersistence is how many steps a contact is cached.
func (s *Space) CollisionPersistence() uint {
	return spaceGet(s, "CollisionPersistence", engine.Engine.SpaceCollisionPersistence)
}

func (s *Space) SetCollisionPersistence(steps uint) {
	spaceSet(s, "SetCollisionPersistence", engine.Engine.SetSpaceCollisionPersistence, steps)
}

func (s *Space) IdleSpeedThreshold() float64 {
	return spaceGet(s, "IdleSpeedThreshold", engine.Engine.SpaceIdleSpeedThreshold)
}

func (s *Space) SetIdleSpeedThreshold(v float64) {
	spaceSet(s, "SetIdleSpeedThreshold", engine.Engine.SetSpaceIdleSpeedThreshold, v)
}

func (s *Space) Iterations() int {
	return spaceGet(s, "Iterations", engine.Engine.SpaceIterations)
}

// SetIterations passes n to the Engine as is, negative values included.
func (s *Space) SetIterations(n int) {
	spaceSet(s, "SetIterations", engine.Engine.SetSpaceIterations, n)
}

// SleepTimeThreshold is +Inf when sleeping is disabled.
func (s *Space) SleepTimeThreshold() float64 {
	return spaceGet(s, "SleepTimeThreshold", engine.Engine.SpaceSleepTimeThreshold)
}

func (s *Space) SetSleepTimeThreshold(t float64) {
	spaceSet(s, "SetSleepTimeThreshold", engine.Engine.SetSpaceSleepTimeThreshold, t)
}
