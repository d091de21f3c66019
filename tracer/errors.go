package tracer

import "errors"

// Failure classes reported by the render kernel. Callers match them with
// errors.Is; the wrapped error carries the device specific details.
var (
	ErrInitialization  = errors.New("tracer: initialization failed")
	ErrResourceMapping = errors.New("tracer: graphics resource mapping failed")
	ErrAllocation      = errors.New("tracer: device allocation failed")
	ErrComputePass     = errors.New("tracer: compute pass failed")
)

var (
	ErrAlreadyMapped     = errors.New("tracer: graphics resource is already mapped")
	ErrNotMapped         = errors.New("tracer: graphics resource is not mapped")
	ErrClosed            = errors.New("tracer: render kernel is closed")
	ErrInvalidDimensions = errors.New("tracer: invalid frame dimensions")
	ErrDegenerateCamera  = errors.New("tracer: camera forward and up vectors are parallel")
)
