package renderer

import "errors"

var (
	ErrNoDisplay   = errors.New("renderer: no display available")
	ErrInterrupted = errors.New("renderer: interrupted while rendering")
)
