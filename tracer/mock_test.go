package tracer

import (
	"errors"
	"fmt"
	"time"
	"unsafe"
)

type mockBuffer struct {
	name string
	data []byte

	allocCount   int
	writeCount   int
	releaseCount int

	failAlloc bool
	failRead  bool
}

func (b *mockBuffer) Name() string {
	return b.name
}

func (b *mockBuffer) Size() int {
	return len(b.data)
}

func (b *mockBuffer) Allocate(size int) error {
	if b.failAlloc {
		return errors.New("out of device memory")
	}
	b.allocCount++
	b.data = make([]byte, size)
	return nil
}

func (b *mockBuffer) WriteData(data interface{}, offset int) error {
	ptr, dataLen, err := SliceData(data)
	if err != nil {
		return err
	}
	if offset+dataLen > len(b.data) {
		return fmt.Errorf("write of %d bytes at offset %d overflows buffer %s of size %d", dataLen, offset, b.name, len(b.data))
	}
	b.writeCount++
	copy(b.data[offset:], unsafe.Slice((*byte)(ptr), dataLen))
	return nil
}

func (b *mockBuffer) ReadData(srcOffset, dstOffset, size int, hostBuffer interface{}) error {
	if b.failRead {
		return errors.New("read failed")
	}
	if size <= 0 {
		size = len(b.data)
	}
	ptr, dataLen, err := SliceData(hostBuffer)
	if err != nil {
		return err
	}
	if dstOffset+size > dataLen || srcOffset+size > len(b.data) {
		return fmt.Errorf("read of %d bytes overflows buffer %s", size, b.name)
	}
	copy(unsafe.Slice((*byte)(ptr), dataLen)[dstOffset:], b.data[srcOffset:srcOffset+size])
	return nil
}

func (b *mockBuffer) Release() {
	if b.data != nil {
		b.releaseCount++
		b.data = nil
	}
}

// A device that fills each frame pixel with the pass number.
type mockDevice struct {
	buffers map[string]*mockBuffer

	traceCount int
	traceErr   error
	lastArgs   KernelArgs
}

func newMockDevice() *mockDevice {
	return &mockDevice{buffers: make(map[string]*mockBuffer)}
}

func (d *mockDevice) Name() string {
	return "mock"
}

func (d *mockDevice) Buffer(name string) Buffer {
	buf := &mockBuffer{name: name}
	d.buffers[name] = buf
	return buf
}

func (d *mockDevice) Trace(args KernelArgs) (time.Duration, error) {
	d.traceCount++
	d.lastArgs = args
	if d.traceErr != nil {
		return 0, d.traceErr
	}

	frame := d.buffers[FrameBuffer].data
	pixels := unsafe.Slice((*float32)(unsafe.Pointer(&frame[0])), len(frame)/4)
	for index := range pixels {
		pixels[index] = float32(args.Pass)
	}
	return time.Millisecond, nil
}

func (d *mockDevice) Close() {
}

// A graphics resource that counts map/unmap calls and can inject failures.
type countingResource struct {
	*HostResource

	mapCount   int
	unmapCount int

	mapErr   error
	unmapErr error
}

func newCountingResource(width, height uint32) *countingResource {
	return &countingResource{HostResource: NewHostResource(width, height)}
}

func (r *countingResource) Map() (Surface, error) {
	r.mapCount++
	if r.mapErr != nil {
		return Surface{}, r.mapErr
	}
	return r.HostResource.Map()
}

func (r *countingResource) Unmap() error {
	r.unmapCount++
	if err := r.HostResource.Unmap(); err != nil {
		return err
	}
	return r.unmapErr
}
