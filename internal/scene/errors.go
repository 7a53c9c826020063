package scene

import "errors"

var (
	ErrUnknownShape = errors.New("scene: unknown shape type")
	ErrUnknownKind  = errors.New("scene: unknown body kind")
)
