package opencl

import "errors"

var (
	ErrNoDevices      = errors.New("opencl tracer: no matching opencl devices found")
	ErrForeignBuffer  = errors.New("opencl tracer: buffer was not allocated by this device")
	ErrDeviceClosed   = errors.New("opencl tracer: device is closed")
	ErrBufferTooSmall = errors.New("opencl tracer: buffer too small for frame dimensions")
)
