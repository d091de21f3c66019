package opengl

import (
	"fmt"
	"unsafe"

	"github.com/achilleasa/polaris-live/tracer"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// PixelBuffer is the tracer.GraphicsResource backing the raw frame texture.
// Mapping it exposes a pixel unpack buffer to the kernel; unmapping uploads
// the buffer contents into the texture.
type PixelBuffer struct {
	pbo     uint32
	texture uint32

	frameW uint32
	frameH uint32
	mapped bool
}

func newPixelBuffer(texture uint32) *PixelBuffer {
	b := &PixelBuffer{texture: texture}
	gl.GenBuffers(1, &b.pbo)
	return b
}

func (b *PixelBuffer) byteSize() int {
	return int(b.frameW) * int(b.frameH) * tracer.FrameComponents * 4
}

func (b *PixelBuffer) resize(frameW, frameH uint32) error {
	if b.mapped {
		return tracer.ErrAlreadyMapped
	}
	b.frameW, b.frameH = frameW, frameH

	gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, b.pbo)
	gl.BufferData(gl.PIXEL_UNPACK_BUFFER, b.byteSize(), nil, gl.STREAM_DRAW)
	gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, 0)
	return checkError("pixel buffer allocation")
}

func (b *PixelBuffer) Map() (tracer.Surface, error) {
	if b.mapped {
		return tracer.Surface{}, tracer.ErrAlreadyMapped
	}

	size := b.byteSize()
	gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, b.pbo)
	// Orphan the previous storage so mapping does not stall on pending uploads.
	gl.BufferData(gl.PIXEL_UNPACK_BUFFER, size, nil, gl.STREAM_DRAW)
	ptr := gl.MapBufferRange(gl.PIXEL_UNPACK_BUFFER, 0, size, gl.MAP_WRITE_BIT|gl.MAP_INVALIDATE_BUFFER_BIT)
	gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, 0)
	if ptr == nil {
		return tracer.Surface{}, fmt.Errorf("opengl: could not map pixel buffer (error 0x%x)", gl.GetError())
	}

	b.mapped = true
	return tracer.Surface{
		Width:  b.frameW,
		Height: b.frameH,
		Pixels: unsafe.Slice((*float32)(ptr), size/4),
	}, nil
}

func (b *PixelBuffer) Unmap() error {
	if !b.mapped {
		return tracer.ErrNotMapped
	}
	b.mapped = false

	gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, b.pbo)
	defer gl.BindBuffer(gl.PIXEL_UNPACK_BUFFER, 0)
	if !gl.UnmapBuffer(gl.PIXEL_UNPACK_BUFFER) {
		return fmt.Errorf("opengl: pixel buffer contents were lost while mapped")
	}

	gl.BindTexture(gl.TEXTURE_2D, b.texture)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(b.frameW), int32(b.frameH), gl.RGBA, gl.FLOAT, gl.PtrOffset(0))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return checkError("raw frame upload")
}

func (b *PixelBuffer) release() {
	if b.mapped {
		b.Unmap()
	}
	gl.DeleteBuffers(1, &b.pbo)
}
