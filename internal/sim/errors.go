package sim

import "errors"

var (
	ErrInvalidConfig = errors.New("sim: invalid config")
	ErrUnbounded     = errors.New("sim: state is no longer finite")
)
