package device

import (
	"fmt"
	"unsafe"

	"github.com/achilleasa/gopencl/v1.2/cl"
	"github.com/achilleasa/polaris-live/tracer"
)

// Buffer is a tracer.Buffer backed by an opencl memory object.
type Buffer struct {
	// Handle to opencl buffer.
	bufHandle cl.Mem

	// Associated Device.
	device *Device

	// A name for identifying the buffer.
	name string

	flags cl.MemFlags

	// Allocated size.
	size int
}

func (b *Buffer) Name() string {
	return b.name
}

// Get buffer size.
func (b *Buffer) Size() int {
	return b.size
}

// Allocate a buffer with the given size. Any previous allocation is released.
func (b *Buffer) Allocate(size int) error {
	var errCode cl.ErrorCode

	b.Release()

	b.bufHandle = cl.CreateBuffer(
		*b.device.ctx,
		b.flags,
		cl.MemFlags(size),
		nil,
		(*int32)(&errCode),
	)

	if errCode != cl.SUCCESS {
		b.bufHandle = nil
		return fmt.Errorf("opencl device (%s): could not allocate buffer %s of size %d (error: %s)", b.device.Name, b.name, size, ErrorName(errCode))
	}

	b.size = size
	return nil
}

// Write a slice to the device buffer starting at the given byte offset.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	dataPtr, dataLen, err := tracer.SliceData(data)
	if err != nil {
		return err
	}

	if offset < 0 || offset+dataLen > b.size {
		return fmt.Errorf("opencl device (%s): insufficient buffer space (%d) in %s for copying data of length %d at offset %d", b.device.Name, b.size, b.name, dataLen, offset)
	}

	errCode := cl.EnqueueWriteBuffer(
		b.device.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		uint64(offset),
		uint64(dataLen),
		dataPtr,
		0,
		nil,
		nil,
	)

	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): error copying host data to device buffer %s (error: %s)", b.device.Name, b.name, ErrorName(errCode))
	}

	return nil
}

// Read data from the device buffer into the supplied host slice. If size is
// <= 0 then ReadData reads the entire buffer. Both src and dst offsets are
// specified in bytes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if size <= 0 {
		size = b.size - srcOffset
	}

	dataPtr, dataLen, err := tracer.SliceData(hostBuffer)
	if err != nil {
		return err
	}

	if srcOffset < 0 || srcOffset+size > b.size || dstOffset < 0 || dstOffset+size > dataLen {
		return fmt.Errorf("opencl device (%s): out of bounds read of %d bytes from %s (src offset %d, dst offset %d)", b.device.Name, size, b.name, srcOffset, dstOffset)
	}

	errCode := cl.EnqueueReadBuffer(
		b.device.cmdQueue,
		b.bufHandle,
		cl.TRUE,
		uint64(srcOffset),
		uint64(size),
		unsafe.Add(dataPtr, dstOffset),
		0,
		nil,
		nil,
	)

	if errCode != cl.SUCCESS {
		return fmt.Errorf("opencl device (%s): error copying device data from %s to host buffer (error: %s)", b.device.Name, b.name, ErrorName(errCode))
	}

	return nil
}

// Release buffer.
func (b *Buffer) Release() {
	if b.bufHandle != nil {
		cl.ReleaseMemObject(b.bufHandle)
		b.bufHandle = nil
	}
	b.size = 0
}

// Get opencl buffer handle.
func (b *Buffer) Handle() cl.Mem {
	return b.bufHandle
}
