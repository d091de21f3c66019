package tracer

import (
	"fmt"
	"reflect"
	"time"
	"unsafe"

	"github.com/achilleasa/polaris-live/types"
)

// Names of the device buffers allocated by the scene store.
const (
	CameraBuffer   = "camera"
	ShapesBuffer   = "shapes"
	RngStateBuffer = "rngState"
	FrameBuffer    = "frame"
)

// The number of float32 components written per pixel (RGBA).
const FrameComponents = 4

// A Device executes trace passes in a massively parallel compute domain.
type Device interface {
	// Get device name.
	Name() string

	// Create an unallocated named buffer.
	Buffer(name string) Buffer

	// Run a trace pass with one logical unit of work per pixel and block
	// until it completes.
	Trace(args KernelArgs) (time.Duration, error)

	// Shutdown and release device resources.
	Close()
}

// A Buffer is a block of device-resident memory.
type Buffer interface {
	// Get buffer name.
	Name() string

	// Get allocated size in bytes.
	Size() int

	// Allocate size bytes, releasing any previous allocation.
	Allocate(size int) error

	// Copy the contents of a host slice into the buffer starting at the
	// given byte offset.
	WriteData(data interface{}, offset int) error

	// Copy size bytes starting at srcOffset into a host slice starting at
	// byte dstOffset. If size is <= 0 the entire buffer is read.
	ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error

	// Release the allocation. Calling Release more than once is a no-op.
	Release()
}

// The arguments for a single trace pass.
type KernelArgs struct {
	Camera   Buffer
	Shapes   Buffer
	RngState Buffer
	Frame    Buffer

	NumShapes uint32
	FrameW    uint32
	FrameH    uint32

	// Pass sequence number; salts the per-pixel random streams.
	Pass uint32

	Shade   ShadeMode
	Jitter  bool
	BgColor types.Vec3
}

// Given an interface{} containing a non-empty slice return a pointer to its
// data and its length in bytes.
func SliceData(data interface{}) (unsafe.Pointer, int, error) {
	reflVal := reflect.ValueOf(data)
	if reflVal.Kind() != reflect.Slice {
		return nil, 0, fmt.Errorf("tracer: expected a slice; got %T", data)
	}

	sliceElemCount := reflVal.Len()
	if sliceElemCount == 0 {
		return nil, 0, fmt.Errorf("tracer: supplied %T slice is empty", data)
	}

	return unsafe.Pointer(reflVal.Index(0).Addr().Pointer()),
		sliceElemCount * int(reflVal.Type().Elem().Size()),
		nil
}
