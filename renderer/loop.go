package renderer

import (
	"fmt"
	"time"

	"github.com/achilleasa/polaris-live/accumulator"
	"github.com/achilleasa/polaris-live/log"
	"github.com/achilleasa/polaris-live/scene"
)

// PresentationLoop drives a render context: once per tick it polls input,
// renders a raw frame, blends it into the accumulated history and presents
// the result. All calls happen on the thread that invokes Run or Tick.
type PresentationLoop struct {
	logger log.Logger

	display Display
	input   Input
	kernel  Kernel
	accum   *accumulator.FrameAccumulator
	camera  *scene.Camera
	opts    Options

	// Set by the resize callback; reported by the tick that polled the event.
	resizeErr error

	lastTick time.Time
	stats    Stats
}

// Create a presentation loop and register it for display resize events.
func NewPresentationLoop(display Display, input Input, kernel Kernel, accum *accumulator.FrameAccumulator, camera *scene.Camera, opts Options) *PresentationLoop {
	l := &PresentationLoop{
		logger:  log.New("presentation loop"),
		display: display,
		input:   input,
		kernel:  kernel,
		accum:   accum,
		camera:  camera,
		opts:    opts,
	}
	display.SetResizeCallback(l.onResize)
	return l
}

// Propagate new frame dimensions to the surfaces, the kernel and the camera.
// Zero sized frames (e.g. a minimized window) are ignored.
func (l *PresentationLoop) onResize(frameW, frameH uint32) {
	if frameW == 0 || frameH == 0 || l.resizeErr != nil {
		return
	}

	if err := l.accum.Resize(frameW, frameH); err != nil {
		l.resizeErr = err
		return
	}
	if err := l.kernel.UpdateSize(frameW, frameH); err != nil {
		l.resizeErr = err
		return
	}

	l.camera.SetAspect(frameW, frameH)
	l.opts.FrameW, l.opts.FrameH = frameW, frameH
	l.stats.Resizes++
	l.logger.Infof("resized to %dx%d", frameW, frameH)
}

// Run ticks until the display asks to close. A failed tick terminates the
// loop; accumulated history cannot be recovered after a failed pass.
func (l *PresentationLoop) Run() error {
	l.logger.Noticef("starting presentation loop (%dx%d)", l.opts.FrameW, l.opts.FrameH)
	for !l.display.ShouldClose() {
		if err := l.Tick(); err != nil {
			l.logger.Error(err)
			return err
		}
	}
	l.logger.Noticef("display closed after %d ticks", l.stats.Ticks)
	return nil
}

// Run a single tick.
func (l *PresentationLoop) Tick() error {
	tickStart := time.Now()
	var dt time.Duration
	if !l.lastTick.IsZero() {
		dt = tickStart.Sub(l.lastTick)
	}
	l.lastTick = tickStart

	fs := FrameStats{Tick: l.stats.Ticks + 1}

	l.display.PollEvents()
	if l.resizeErr != nil {
		return fmt.Errorf("presentation loop: resize failed: %w", l.resizeErr)
	}

	if l.input.Poll(l.camera, dt) {
		if err := l.kernel.UpdateCamera(l.camera.Position, l.camera.Forward, l.camera.Up); err != nil {
			return fmt.Errorf("presentation loop: camera update failed: %w", err)
		}
		l.accum.Reset()
		fs.CameraMoved = true
	}

	if l.opts.MaxFrames != 0 && l.accum.Counter() > l.opts.MaxFrames {
		if err := l.accum.Present(); err != nil {
			return err
		}
	} else {
		start := time.Now()
		if err := l.kernel.RenderFrame(); err != nil {
			return fmt.Errorf("presentation loop: tick %d: %w", fs.Tick, err)
		}
		fs.RenderTime = time.Since(start)

		fs.Counter = l.accum.Counter()
		start = time.Now()
		if err := l.accum.Accumulate(); err != nil {
			return fmt.Errorf("presentation loop: tick %d: %w", fs.Tick, err)
		}
		fs.AccumulateTime = time.Since(start)
	}

	l.display.SwapBuffers()

	fs.TickTime = time.Since(tickStart)
	l.stats.record(fs)
	if fs.Counter != 0 {
		l.logger.Debugf("tick %d: frame %d rendered in %s, accumulated in %s", fs.Tick, fs.Counter, fs.RenderTime, fs.AccumulateTime)
	}
	return nil
}

// Get loop statistics.
func (l *PresentationLoop) Stats() Stats {
	return l.stats
}
