package tracer

import (
	"fmt"
	"time"

	"github.com/achilleasa/polaris-live/log"
	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
)

// Render kernel statistics.
type KernelStats struct {
	// Number of completed passes.
	Passes uint32

	// Time spent in the last trace pass and in copying its output to the
	// mapped surface.
	TraceTime    time.Duration
	TransferTime time.Duration
}

// RenderKernel runs one ray generation and shading pass per RenderFrame call
// and writes the result into a graphics resource.
//
// RenderFrame must never be invoked concurrently with UpdateCamera or
// UpdateSize; all calls are expected to originate from the same host thread.
type RenderKernel struct {
	logger log.Logger

	device   Device
	store    *SceneStore
	resource GraphicsResource
	opts     Options

	// Non-nil only while RenderFrame holds the resource mapped.
	mapping *Mapping

	pass   uint32
	stats  KernelStats
	closed bool
}

// Create a render kernel that draws sc into res using the supplied device.
// The kernel does not take ownership of the device or the resource.
func NewRenderKernel(dev Device, res GraphicsResource, sc *scene.Scene, frameW, frameH uint32, opts Options) (*RenderKernel, error) {
	store, err := NewSceneStore(dev, sc, frameW, frameH, opts.Seed)
	if err != nil {
		return nil, err
	}

	k := &RenderKernel{
		logger:   log.New("render kernel"),
		device:   dev,
		store:    store,
		resource: res,
		opts:     opts,
	}
	k.logger.Infof("using device %s for %dx%d frames (shade: %s, jitter: %t, seed: %d)", dev.Name(), frameW, frameH, opts.Shade, opts.Jitter, opts.Seed)

	return k, nil
}

// Recompute the camera basis and copy it to the device.
func (k *RenderKernel) UpdateCamera(position, direction, up types.Vec3) error {
	if k.closed {
		return ErrClosed
	}
	if err := k.store.UpdateCamera(position, direction, up); err != nil {
		return err
	}
	k.logger.Debugf("camera updated: pos %v, dir %v", position, direction)
	return nil
}

// Reallocate dimension dependent device buffers. The caller is responsible
// for resizing the graphics resource and resetting accumulation.
func (k *RenderKernel) UpdateSize(frameW, frameH uint32) error {
	if k.closed {
		return ErrClosed
	}
	if err := k.store.Resize(frameW, frameH); err != nil {
		return err
	}
	k.logger.Infof("resized device buffers to %dx%d", frameW, frameH)
	return nil
}

// Map the graphics resource, run a trace pass and copy its output to the
// mapped surface. The resource is always unmapped before returning.
func (k *RenderKernel) RenderFrame() (err error) {
	if k.closed {
		return ErrClosed
	}

	k.mapping, err = Map(k.resource)
	if err != nil {
		return err
	}
	defer func() {
		relErr := k.mapping.Release()
		k.mapping = nil
		if err == nil {
			err = relErr
		}
	}()

	surface := k.mapping.Surface()
	frameW, frameH := k.store.FrameSize()
	if surface.Width != frameW || surface.Height != frameH {
		return fmt.Errorf("%w: mapped surface is %dx%d; kernel renders %dx%d", ErrInvalidDimensions, surface.Width, surface.Height, frameW, frameH)
	}

	k.pass++
	traceTime, err := k.device.Trace(k.store.KernelArgs(k.pass, k.opts))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrComputePass, err)
	}

	start := time.Now()
	if err = k.store.Frame().ReadData(0, 0, 0, surface.Pixels); err != nil {
		return fmt.Errorf("%w: %w", ErrComputePass, err)
	}

	k.stats = KernelStats{
		Passes:       k.stats.Passes + 1,
		TraceTime:    traceTime,
		TransferTime: time.Since(start),
	}
	return nil
}

// Get kernel statistics.
func (k *RenderKernel) Stats() KernelStats {
	return k.stats
}

// Get the scene store backing this kernel.
func (k *RenderKernel) Store() *SceneStore {
	return k.store
}

// Unmap any outstanding mapping and release all device buffers.
func (k *RenderKernel) Close() {
	if k.closed {
		return
	}
	k.closed = true

	if k.mapping != nil {
		if err := k.mapping.Release(); err != nil {
			k.logger.Warningf("releasing outstanding mapping: %v", err)
		}
		k.mapping = nil
	}
	k.store.Release()
	k.logger.Info("released device buffers")
}
