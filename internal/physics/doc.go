// Package physics is the handle layer over an engine.Engine.
//
// Space, Body and Shape are reference-counted handles. Duplicate returns a
// second handle to the same Engine record; Release drops one reference and
// the record is destroyed when the last reference goes. Shapes hold their
// own reference to the Body they were built on, and a Space holds one to
// every Body and Shape registered in it, so records are never destroyed
// while something can still reach them.
//
//	space := physics.NewSpace()
//	defer space.Release()
//	space.SetGravity(physics.Vector{Y: -100})
//
//	ball := physics.NewBody(1, physics.MomentForCircle(1, 0, 5, physics.Vector{}))
//	defer ball.Release()
//	circle := physics.NewCircle(ball, 5, physics.Vector{})
//	defer circle.Release()
//
//	space.AddBody(ball)
//	space.AddShape(circle)
//	space.Step(1.0 / 60.0)
//
// # Contract violations
//
// Using a released handle, indexing past an Arbiter's contact count, or
// mutating a Space from inside its own Step panics with a *ContractError.
// Numeric arguments are never validated and go to the Engine as given.
//
// # Goroutines
//
// Each Engine record is guarded by its own mutex, so handles to one record
// may be used from several goroutines. A Space and the entities registered
// in it must still be driven by one goroutine at a time: Step mutates every
// registered record without taking their locks.
package physics
