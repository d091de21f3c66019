package accumulator

import (
	"image"
	"image/color"
	"math"

	"github.com/achilleasa/polaris-live/tracer"
)

// HostSurfaces keeps all surfaces in host memory and blends them on the cpu.
// The raw frame surface is exposed as a graphics resource for the render
// kernel.
type HostSurfaces struct {
	raw      *tracer.HostResource
	history  []float32
	snapshot []float32

	frameW uint32
	frameH uint32

	// Number of Present calls.
	presented int
}

// Create an empty host surface set; call Resize to allocate it.
func NewHostSurfaces() *HostSurfaces {
	return &HostSurfaces{
		raw: tracer.NewHostResource(0, 0),
	}
}

// Get the raw frame surface.
func (s *HostSurfaces) Raw() *tracer.HostResource {
	return s.raw
}

// Get the accumulated history.
func (s *HostSurfaces) History() []float32 {
	return s.history
}

// Get the number of presented frames.
func (s *HostSurfaces) Presented() int {
	return s.presented
}

func (s *HostSurfaces) Resize(frameW, frameH uint32) error {
	if err := s.raw.Resize(frameW, frameH); err != nil {
		return err
	}
	components := int(frameW) * int(frameH) * tracer.FrameComponents
	s.history = make([]float32, components)
	s.snapshot = make([]float32, components)
	s.frameW, s.frameH = frameW, frameH
	return nil
}

func (s *HostSurfaces) Snapshot() error {
	copy(s.snapshot, s.history)
	return nil
}

func (s *HostSurfaces) Blend(frameCount uint32) error {
	raw := s.raw.Pixels()
	if frameCount <= 1 {
		copy(s.history, raw)
		return nil
	}

	sampleW, historyW := Weights(frameCount)
	for index, v := range raw {
		s.history[index] = v*sampleW + s.snapshot[index]*historyW
	}
	return nil
}

func (s *HostSurfaces) Present() error {
	s.presented++
	return nil
}

func (s *HostSurfaces) Release() {
	s.history = nil
	s.snapshot = nil
}

// Convert the history surface into an image. Components are clamped to
// [0, 1] and quantized to 8 bits.
func (s *HostSurfaces) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(s.frameW), int(s.frameH)))
	for y := 0; y < int(s.frameH); y++ {
		for x := 0; x < int(s.frameW); x++ {
			offset := (y*int(s.frameW) + x) * tracer.FrameComponents
			img.SetRGBA(x, y, color.RGBA{
				R: quantize(s.history[offset]),
				G: quantize(s.history[offset+1]),
				B: quantize(s.history[offset+2]),
				A: quantize(s.history[offset+3]),
			})
		}
	}
	return img
}

func quantize(v float32) uint8 {
	return uint8(math.Round(math.Min(1, math.Max(0, float64(v))) * 255))
}
