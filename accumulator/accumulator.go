package accumulator

import (
	"fmt"

	"github.com/achilleasa/polaris-live/log"
)

// Surfaces is implemented by the surface sets the accumulator blends. A set
// holds a raw frame surface, a history surface and a snapshot of the history
// taken before each blend so the blend never reads what it writes.
type Surfaces interface {
	// Reallocate all surfaces. The previous contents are discarded.
	Resize(frameW, frameH uint32) error

	// Copy the history surface into the snapshot surface.
	Snapshot() error

	// Write raw*(1/frameCount) + snapshot*((frameCount-1)/frameCount) to
	// the history surface.
	Blend(frameCount uint32) error

	// Present the history surface.
	Present() error

	// Release all surfaces.
	Release()
}

// Get the blend weights for the given frame count. The two weights always
// sum to 1; a zero frame count is treated as 1.
func Weights(frameCount uint32) (sample, history float32) {
	if frameCount <= 1 {
		return 1, 0
	}
	sample = 1 / float32(frameCount)
	return sample, 1 - sample
}

// FrameAccumulator progressively averages successive raw frames into a
// history surface. The frame counter starts at 1 and is reset to 1 whenever
// the camera moves or the frame is resized.
type FrameAccumulator struct {
	logger log.Logger

	surfaces Surfaces
	counter  uint32

	frameW uint32
	frameH uint32
}

// Create an accumulator and allocate its surfaces.
func New(surfaces Surfaces, frameW, frameH uint32) (*FrameAccumulator, error) {
	a := &FrameAccumulator{
		logger:   log.New("frame accumulator"),
		surfaces: surfaces,
	}

	if err := a.Resize(frameW, frameH); err != nil {
		return nil, err
	}
	return a, nil
}

// Get the frame counter that will weight the next blend.
func (a *FrameAccumulator) Counter() uint32 {
	return a.counter
}

// Get the surface dimensions.
func (a *FrameAccumulator) FrameSize() (uint32, uint32) {
	return a.frameW, a.frameH
}

// Discard the accumulated history; the next blend fully replaces it.
func (a *FrameAccumulator) Reset() {
	if a.counter != 1 {
		a.logger.Debugf("reset after %d accumulated frames", a.counter-1)
	}
	a.counter = 1
}

// Reallocate surfaces for new frame dimensions and reset the counter.
func (a *FrameAccumulator) Resize(frameW, frameH uint32) error {
	if frameW == 0 || frameH == 0 {
		return fmt.Errorf("frame accumulator: invalid frame dimensions %dx%d", frameW, frameH)
	}

	if err := a.surfaces.Resize(frameW, frameH); err != nil {
		return fmt.Errorf("frame accumulator: resizing surfaces to %dx%d: %w", frameW, frameH, err)
	}

	a.frameW, a.frameH = frameW, frameH
	a.counter = 1
	a.logger.Infof("surfaces resized to %dx%d", frameW, frameH)
	return nil
}

// Blend the raw frame into the history, present the result and advance the
// counter.
func (a *FrameAccumulator) Accumulate() error {
	if err := a.surfaces.Snapshot(); err != nil {
		return fmt.Errorf("frame accumulator: snapshot: %w", err)
	}
	if err := a.surfaces.Blend(a.counter); err != nil {
		return fmt.Errorf("frame accumulator: blend: %w", err)
	}
	if err := a.Present(); err != nil {
		return err
	}

	a.counter++
	return nil
}

// Present the history surface without blending.
func (a *FrameAccumulator) Present() error {
	if err := a.surfaces.Present(); err != nil {
		return fmt.Errorf("frame accumulator: present: %w", err)
	}
	return nil
}

// Release all surfaces.
func (a *FrameAccumulator) Close() {
	a.surfaces.Release()
}
