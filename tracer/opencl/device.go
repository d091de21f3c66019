package opencl

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"github.com/achilleasa/polaris-live/log"
	"github.com/achilleasa/polaris-live/tracer"
	"github.com/achilleasa/polaris-live/tracer/opencl/device"
)

const traceKernelName = "tracePrimary"

//go:embed trace.cl
var traceProgramSource string

// Device is a tracer.Device that runs trace passes on an opencl device.
type Device struct {
	sync.Mutex

	logger log.Logger

	clDevice *device.Device
	kernel   *device.Kernel
}

// Select the first opencl device that matches the type mask and whose name
// does not contain any of the blacklisted values, and build the trace
// program for it.
func SelectDevice(typeMask device.DeviceType, blacklist []string) (*Device, error) {
	candidates, err := device.SelectDevices(typeMask, "", blacklist...)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, ErrNoDevices
	}

	// Prefer the fastest device.
	best := candidates[0]
	for _, candidate := range candidates[1:] {
		if candidate.Speed > best.Speed {
			best = candidate
		}
	}
	return NewDevice(best)
}

// Initialize an opencl device and build the trace program.
func NewDevice(clDevice *device.Device) (*Device, error) {
	d := &Device{
		logger:   log.New(fmt.Sprintf("opencl device (%s)", clDevice.Name)),
		clDevice: clDevice,
	}

	if err := clDevice.Init(traceProgramSource, "-cl-fast-relaxed-math"); err != nil {
		return nil, err
	}

	var err error
	d.kernel, err = clDevice.Kernel(traceKernelName)
	if err != nil {
		clDevice.Close()
		return nil, err
	}

	d.logger.Infof("initialized device (approx. %d GFlops)", clDevice.Speed)
	return d, nil
}

func (d *Device) Name() string {
	return fmt.Sprintf("opencl (%s)", d.clDevice.Name)
}

// Create an empty buffer.
func (d *Device) Buffer(name string) tracer.Buffer {
	return d.clDevice.Buffer(name)
}

// Run a trace pass over the whole frame and block until it completes.
func (d *Device) Trace(args tracer.KernelArgs) (time.Duration, error) {
	d.Lock()
	defer d.Unlock()

	if d.kernel == nil {
		return 0, ErrDeviceClosed
	}

	bufs := make([]*device.Buffer, 4)
	for idx, arg := range []tracer.Buffer{args.Camera, args.Shapes, args.RngState, args.Frame} {
		buf, ok := arg.(*device.Buffer)
		if !ok {
			return 0, fmt.Errorf("%w: kernel argument %d", ErrForeignBuffer, idx)
		}
		bufs[idx] = buf
	}

	pixels := int(args.FrameW) * int(args.FrameH)
	if pixels == 0 {
		return 0, fmt.Errorf("opencl tracer: %w: %dx%d", tracer.ErrInvalidDimensions, args.FrameW, args.FrameH)
	}
	if bufs[2].Size() < pixels*4 || bufs[3].Size() < pixels*tracer.FrameComponents*4 {
		return 0, fmt.Errorf("%w: %dx%d", ErrBufferTooSmall, args.FrameW, args.FrameH)
	}

	var jitter uint32
	if args.Jitter {
		jitter = 1
	}

	err := d.kernel.SetArgs(
		bufs[0],
		bufs[1],
		args.NumShapes,
		bufs[2],
		bufs[3],
		args.FrameW,
		args.FrameH,
		args.Pass,
		uint32(args.Shade),
		jitter,
		args.BgColor.Vec4(1),
	)
	if err != nil {
		return 0, err
	}

	elapsed, err := d.kernel.Exec2D(0, 0, int(args.FrameW), int(args.FrameH), 0, 0)
	if err != nil {
		return 0, err
	}

	d.logger.Debugf("pass %d: traced %dx%d frame in %s", args.Pass, args.FrameW, args.FrameH, elapsed)
	return elapsed, nil
}

// Release the kernel and shut down the opencl device.
func (d *Device) Close() {
	d.Lock()
	defer d.Unlock()

	if d.kernel == nil {
		return
	}
	d.kernel.Release()
	d.kernel = nil
	d.clDevice.Close()
	d.logger.Info("closed device")
}
