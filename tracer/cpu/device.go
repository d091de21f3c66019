package cpu

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/achilleasa/polaris-live/log"
	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/tracer"
)

var ErrDeviceClosed = errors.New("cpu device: device is closed")

// Device executes trace passes on a pool of goroutines. Each pass splits the
// frame into row blocks whose heights are balanced by a block scheduler using
// the timings of the previous pass.
type Device struct {
	sync.Mutex
	wg sync.WaitGroup

	logger log.Logger

	workers      []*worker
	blockWorkers []tracer.BlockWorker
	scheduler    tracer.BlockScheduler

	// A channel for signaling the workers to exit.
	closeChan chan struct{}
}

// Create a cpu device with the given number of workers. If numWorkers is
// <= 0, one worker per logical cpu is started.
func NewDevice(numWorkers int) *Device {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	d := &Device{
		logger:       log.New("cpu device"),
		workers:      make([]*worker, numWorkers),
		blockWorkers: make([]tracer.BlockWorker, numWorkers),
		scheduler:    tracer.PerfectScheduler(),
		closeChan:    make(chan struct{}),
	}

	for idx := range d.workers {
		w := newWorker(idx)
		d.workers[idx] = w
		d.blockWorkers[idx] = w

		d.wg.Add(1)
		go w.run(&d.wg, d.closeChan)
	}
	d.logger.Infof("started %d workers", numWorkers)

	return d
}

func (d *Device) Name() string {
	return fmt.Sprintf("cpu (%d workers)", len(d.workers))
}

// Create an empty buffer.
func (d *Device) Buffer(name string) tracer.Buffer {
	return &Buffer{
		device: d,
		name:   name,
	}
}

// Run a trace pass and wait for all workers to complete their blocks.
func (d *Device) Trace(args tracer.KernelArgs) (time.Duration, error) {
	d.Lock()
	defer d.Unlock()

	if d.closeChan == nil {
		return 0, ErrDeviceClosed
	}

	pass, err := d.preparePass(args)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	blockAssignment := d.scheduler.Schedule(d.blockWorkers, args.FrameH)
	doneChan := make(chan error, len(d.workers))
	pending := 0
	var rowStart uint32
	for idx, rows := range blockAssignment {
		w := d.workers[idx]
		if rows == 0 {
			w.stats = tracer.BlockStats{}
			continue
		}
		w.blockReqChan <- blockRequest{
			pass:     pass,
			rowStart: rowStart,
			rows:     rows,
			doneChan: doneChan,
		}
		rowStart += rows
		pending++
	}

	var errList []error
	for ; pending > 0; pending-- {
		if blockErr := <-doneChan; blockErr != nil {
			errList = append(errList, blockErr)
		}
	}
	if len(errList) != 0 {
		return 0, errors.Join(errList...)
	}

	elapsed := time.Since(start)
	d.logger.Debugf("pass %d: traced %dx%d frame in %s (blocks: %v)", args.Pass, args.FrameW, args.FrameH, elapsed, blockAssignment)
	return elapsed, nil
}

// Validate the kernel arguments and build typed views of the argument buffers.
func (d *Device) preparePass(args tracer.KernelArgs) (*passData, error) {
	bufs := make([]*Buffer, 4)
	for idx, arg := range []tracer.Buffer{args.Camera, args.Shapes, args.RngState, args.Frame} {
		buf, ok := arg.(*Buffer)
		if !ok || buf.device != d {
			return nil, fmt.Errorf("cpu device: kernel argument %d is not a buffer allocated by this device", idx)
		}
		bufs[idx] = buf
	}
	camBuf, shapeBuf, rngBuf, frameBuf := bufs[0], bufs[1], bufs[2], bufs[3]

	pixels := int(args.FrameW) * int(args.FrameH)
	switch {
	case pixels == 0:
		return nil, fmt.Errorf("cpu device: %w: %dx%d", tracer.ErrInvalidDimensions, args.FrameW, args.FrameH)
	case camBuf.Size() < tracer.PackedCameraSize:
		return nil, fmt.Errorf("cpu device: camera buffer too small (%d bytes)", camBuf.Size())
	case shapeBuf.Size() < int(args.NumShapes)*tracer.PackedShapeSize:
		return nil, fmt.Errorf("cpu device: shape buffer too small for %d shapes (%d bytes)", args.NumShapes, shapeBuf.Size())
	case rngBuf.Size() < pixels*4:
		return nil, fmt.Errorf("cpu device: rng state buffer too small for %d pixels (%d bytes)", pixels, rngBuf.Size())
	case frameBuf.Size() < pixels*tracer.FrameComponents*4:
		return nil, fmt.Errorf("cpu device: frame buffer too small for %d pixels (%d bytes)", pixels, frameBuf.Size())
	}

	packedShapes := view[tracer.PackedShape](shapeBuf)[:args.NumShapes]
	shapes := make([]scene.Shape, len(packedShapes))
	for idx, p := range packedShapes {
		shapes[idx] = tracer.UnpackShape(p)
	}

	return &passData{
		camera:   view[tracer.PackedCamera](camBuf)[0],
		shapes:   shapes,
		args:     args,
		rngState: view[uint32](rngBuf),
		frame:    view[float32](frameBuf),
	}, nil
}

// Stop all workers.
func (d *Device) Close() {
	d.Lock()
	defer d.Unlock()

	if d.closeChan == nil {
		return
	}
	close(d.closeChan)
	d.wg.Wait()
	d.closeChan = nil
	d.logger.Info("stopped workers")
}

// Get the block assignment statistics of the last pass, one entry per worker.
func (d *Device) BlockStats() []tracer.BlockStats {
	d.Lock()
	defer d.Unlock()

	stats := make([]tracer.BlockStats, len(d.workers))
	for idx, w := range d.workers {
		stats[idx] = w.stats
	}
	return stats
}
