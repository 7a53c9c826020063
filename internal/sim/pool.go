package sim

import "sync"

// StatePool recycles sample buffers for scenes with a fixed body count.
// Pools are shared per body count, so ensemble runs of one scene reuse
// each other's buffers.
type StatePool struct {
	pool   sync.Pool
	bodies int
}

var pools sync.Map // body count -> *StatePool

// PoolFor returns the shared pool for scenes with n bodies.
func PoolFor(bodies int) *StatePool {
	if p, ok := pools.Load(bodies); ok {
		return p.(*StatePool)
	}
	p, _ := pools.LoadOrStore(bodies, newStatePool(bodies))
	return p.(*StatePool)
}

func newStatePool(bodies int) *StatePool {
	width := bodies * StateWidth
	return &StatePool{
		bodies: bodies,
		pool: sync.Pool{
			New: func() any { return make(State, width) },
		},
	}
}

func (p *StatePool) Bodies() int { return p.bodies }

func (p *StatePool) Get() State {
	return p.pool.Get().(State)
}

// Put drops buffers of the wrong width.
func (p *StatePool) Put(s State) {
	if s.Bodies() != p.bodies || len(s)%StateWidth != 0 {
		return
	}
	clear(s)
	p.pool.Put(s)
}

// Snapshot returns a pooled copy of src.
func (p *StatePool) Snapshot(src State) State {
	dst := p.Get()
	copy(dst, src)
	return dst
}
