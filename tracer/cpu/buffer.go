package cpu

import (
	"fmt"
	"unsafe"

	"github.com/achilleasa/polaris-live/tracer"
)

// Buffer is a block of host memory standing in for device memory. Its
// backing store is 8-byte aligned so it can be viewed as any of the packed
// record types.
type Buffer struct {
	device *Device
	name   string
	words  []uint64
	size   int
}

func (b *Buffer) Name() string {
	return b.name
}

func (b *Buffer) Size() int {
	return b.size
}

// Allocate a zeroed buffer of the given size in bytes.
func (b *Buffer) Allocate(size int) error {
	b.Release()
	if size <= 0 {
		return fmt.Errorf("cpu device: invalid size %d for buffer %s", size, b.name)
	}

	b.words = make([]uint64, (size+7)/8)
	b.size = size
	return nil
}

func (b *Buffer) bytes() []byte {
	if b.size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.words[0])), b.size)
}

// Copy host data into the buffer starting at the given byte offset.
func (b *Buffer) WriteData(data interface{}, offset int) error {
	dataPtr, dataLen, err := tracer.SliceData(data)
	if err != nil {
		return err
	}

	if offset < 0 || offset+dataLen > b.size {
		return fmt.Errorf("cpu device: insufficient buffer space (%d) in %s for copying data of length %d at offset %d", b.size, b.name, dataLen, offset)
	}

	copy(b.bytes()[offset:], unsafe.Slice((*byte)(dataPtr), dataLen))
	return nil
}

// Copy buffer contents into a host slice. If size is <= 0 the entire buffer
// is copied. Both offsets are specified in bytes.
func (b *Buffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if size <= 0 {
		size = b.size
	}

	dataPtr, dataLen, err := tracer.SliceData(hostBuffer)
	if err != nil {
		return err
	}

	if srcOffset < 0 || srcOffset+size > b.size {
		return fmt.Errorf("cpu device: read of %d bytes at offset %d exceeds size %d of buffer %s", size, srcOffset, b.size, b.name)
	}
	if dstOffset < 0 || dstOffset+size > dataLen {
		return fmt.Errorf("cpu device: host buffer of length %d too small for reading %d bytes from %s", dataLen, size, b.name)
	}

	copy(unsafe.Slice((*byte)(dataPtr), dataLen)[dstOffset:], b.bytes()[srcOffset:srcOffset+size])
	return nil
}

// Release the buffer memory.
func (b *Buffer) Release() {
	b.words = nil
	b.size = 0
}

// View the buffer contents as a slice of T.
func view[T any](b *Buffer) []T {
	var zero T
	count := b.size / int(unsafe.Sizeof(zero))
	if count == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&b.words[0])), count)
}
