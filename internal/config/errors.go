package config

import "errors"

var (
	ErrUnknownScene  = errors.New("config: unknown scene")
	ErrUnknownPreset = errors.New("config: unknown preset")
	ErrInvalid       = errors.New("config: invalid config")
)
