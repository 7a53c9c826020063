// Package engine declares the capability interface through which the handle
// layer drives a 2D rigid-body physics engine.
//
// The engine owns every record it creates and performs collision detection,
// solving and integration internally. It does no reference counting: a record
// passed to a Destroy method must not be used again, and a body must outlive
// every shape created against it. The physics package enforces those rules;
// implementations of Engine only have to be correct for correct callers.
//
// Implementations:
//
//	cpengine    - backed by github.com/jakecoffman/cp
//	enginetest  - a recording decorator for tests
package engine
