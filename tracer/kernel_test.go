package tracer

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/achilleasa/polaris-live/scene"
	"github.com/achilleasa/polaris-live/types"
)

func newTestKernel(t *testing.T, frameW, frameH uint32) (*RenderKernel, *mockDevice, *countingResource) {
	dev := newMockDevice()
	res := newCountingResource(frameW, frameH)
	sc := scene.Default(float32(frameW) / float32(frameH))

	k, err := NewRenderKernel(dev, res, sc, frameW, frameH, Options{Seed: 42, Jitter: true})
	if err != nil {
		t.Fatal(err)
	}
	return k, dev, res
}

func TestRenderFrameMapsAndUnmapsOnce(t *testing.T) {
	k, dev, res := newTestKernel(t, 4, 2)
	defer k.Close()

	for pass := 1; pass <= 3; pass++ {
		if err := k.RenderFrame(); err != nil {
			t.Fatal(err)
		}

		if res.mapCount != pass || res.unmapCount != pass {
			t.Fatalf("[pass %d] expected %d maps and unmaps; got %d maps and %d unmaps", pass, pass, res.mapCount, res.unmapCount)
		}
		for index, v := range res.Pixels() {
			if v != float32(pass) {
				t.Fatalf("[pass %d] expected pixel component %d to be %d; got %f", pass, index, pass, v)
			}
		}
	}

	if dev.lastArgs.Pass != 3 {
		t.Fatalf("expected last pass number to be 3; got %d", dev.lastArgs.Pass)
	}
	if stats := k.Stats(); stats.Passes != 3 {
		t.Fatalf("expected 3 completed passes; got %d", stats.Passes)
	}
}

func TestRenderFrameFailures(t *testing.T) {
	errInjected := errors.New("injected failure")

	specs := []struct {
		setup       func(dev *mockDevice, res *countingResource)
		expErr      error
		expMaps     int
		expUnmaps   int
		expTraceRun bool
	}{
		{
			setup:       func(dev *mockDevice, _ *countingResource) { dev.traceErr = errInjected },
			expErr:      ErrComputePass,
			expMaps:     1,
			expUnmaps:   1,
			expTraceRun: true,
		},
		{
			setup:       func(dev *mockDevice, _ *countingResource) { dev.buffers[FrameBuffer].failRead = true },
			expErr:      ErrComputePass,
			expMaps:     1,
			expUnmaps:   1,
			expTraceRun: true,
		},
		{
			setup:     func(_ *mockDevice, res *countingResource) { res.mapErr = errInjected },
			expErr:    ErrResourceMapping,
			expMaps:   1,
			expUnmaps: 0,
		},
		{
			setup:       func(_ *mockDevice, res *countingResource) { res.unmapErr = errInjected },
			expErr:      ErrResourceMapping,
			expMaps:     1,
			expUnmaps:   1,
			expTraceRun: true,
		},
		{
			setup:     func(_ *mockDevice, res *countingResource) { res.Resize(8, 8) },
			expErr:    ErrInvalidDimensions,
			expMaps:   1,
			expUnmaps: 1,
		},
	}

	for specIndex, spec := range specs {
		k, dev, res := newTestKernel(t, 4, 2)
		spec.setup(dev, res)

		err := k.RenderFrame()
		if !errors.Is(err, spec.expErr) {
			t.Fatalf("[spec %d] expected error %v; got %v", specIndex, spec.expErr, err)
		}
		if res.mapCount != spec.expMaps || res.unmapCount != spec.expUnmaps {
			t.Fatalf("[spec %d] expected %d maps and %d unmaps; got %d maps and %d unmaps", specIndex, spec.expMaps, spec.expUnmaps, res.mapCount, res.unmapCount)
		}
		if (dev.traceCount > 0) != spec.expTraceRun {
			t.Fatalf("[spec %d] expected trace to run: %t; got %d trace calls", specIndex, spec.expTraceRun, dev.traceCount)
		}
		if res.mapped {
			t.Fatalf("[spec %d] expected resource to be unmapped", specIndex)
		}
		k.Close()
	}
}

func TestUpdateCameraWritesInPlace(t *testing.T) {
	k, dev, _ := newTestKernel(t, 4, 2)
	defer k.Close()

	pos := types.XYZ(1, 2, 3)
	dir := types.XYZ(1, 0, 0)
	up := types.XYZ(0, 1, 0)
	if err := k.UpdateCamera(pos, dir, up); err != nil {
		t.Fatal(err)
	}
	if err := k.UpdateSize(8, 8); err != nil {
		t.Fatal(err)
	}

	camBuf := dev.buffers[CameraBuffer]
	if camBuf.allocCount != 1 || dev.buffers[ShapesBuffer].allocCount != 1 {
		t.Fatalf("expected camera and shape buffers to be allocated once; got %d and %d", camBuf.allocCount, dev.buffers[ShapesBuffer].allocCount)
	}

	devCam := *(*PackedCamera)(unsafe.Pointer(&camBuf.data[0]))
	expRight := dir.Cross(up)
	if !types.ApproxEqual(devCam.Right.Vec3(), expRight, 1e-6) {
		t.Fatalf("expected device camera right vector to be %v; got %v", expRight, devCam.Right.Vec3())
	}
	if devCam.Position.Vec3() != pos {
		t.Fatalf("expected device camera position to be %v; got %v", pos, devCam.Position.Vec3())
	}
	if devCam.Params[1] != 1.0 {
		t.Fatalf("expected device camera aspect to be 1 after resize; got %f", devCam.Params[1])
	}

	if err := k.UpdateCamera(pos, up, up); !errors.Is(err, ErrDegenerateCamera) {
		t.Fatalf("expected ErrDegenerateCamera; got %v", err)
	}
}

func TestUpdateSizeReallocatesFrameBuffers(t *testing.T) {
	k, dev, res := newTestKernel(t, 4, 2)
	defer k.Close()

	if err := k.RenderFrame(); err != nil {
		t.Fatal(err)
	}

	var w2, h2 uint32 = 3, 5
	if err := k.UpdateSize(w2, h2); err != nil {
		t.Fatal(err)
	}
	res.Resize(w2, h2)

	if exp, got := int(w2*h2)*4, dev.buffers[RngStateBuffer].Size(); got != exp {
		t.Fatalf("expected rng state buffer size %d; got %d", exp, got)
	}
	if exp, got := int(w2*h2)*FrameComponents*4, dev.buffers[FrameBuffer].Size(); got != exp {
		t.Fatalf("expected frame buffer size %d; got %d", exp, got)
	}

	if err := k.RenderFrame(); err != nil {
		t.Fatal(err)
	}
	if exp, got := int(w2*h2)*FrameComponents, len(res.Pixels()); got != exp {
		t.Fatalf("expected %d frame components; got %d", exp, got)
	}
	if dev.lastArgs.FrameW != w2 || dev.lastArgs.FrameH != h2 {
		t.Fatalf("expected pass to render %dx%d; got %dx%d", w2, h2, dev.lastArgs.FrameW, dev.lastArgs.FrameH)
	}

	if err := k.UpdateSize(0, 10); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions; got %v", err)
	}
}

func TestCloseReleasesBuffersOnce(t *testing.T) {
	k, dev, _ := newTestKernel(t, 4, 2)
	k.Close()
	k.Close()

	for name, buf := range dev.buffers {
		if buf.releaseCount != 1 {
			t.Fatalf("expected buffer %s to be released once; got %d", name, buf.releaseCount)
		}
	}

	if err := k.RenderFrame(); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed; got %v", err)
	}
	if err := k.UpdateCamera(types.XYZ(0, 0, 0), types.XYZ(0, 0, 1), types.XYZ(0, 1, 0)); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed; got %v", err)
	}
}

func TestNewRenderKernelErrors(t *testing.T) {
	dev := newMockDevice()
	res := newCountingResource(4, 4)

	_, err := NewRenderKernel(dev, res, scene.NewScene(), 4, 4, Options{})
	if !errors.Is(err, ErrInitialization) {
		t.Fatalf("expected ErrInitialization for an empty scene; got %v", err)
	}

	_, err = NewRenderKernel(dev, res, scene.Default(1), 0, 4, Options{})
	if !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("expected ErrInvalidDimensions; got %v", err)
	}

	failing := &failingAllocDevice{mockDevice: newMockDevice(), failOn: FrameBuffer}
	_, err = NewRenderKernel(failing, res, scene.Default(1), 4, 4, Options{})
	if !errors.Is(err, ErrAllocation) {
		t.Fatalf("expected ErrAllocation; got %v", err)
	}
	for name, buf := range failing.buffers {
		if buf.data != nil {
			t.Fatalf("expected buffer %s to be released after a failed construction", name)
		}
	}
}

type failingAllocDevice struct {
	*mockDevice
	failOn string
}

func (d *failingAllocDevice) Buffer(name string) Buffer {
	buf := d.mockDevice.Buffer(name).(*mockBuffer)
	buf.failAlloc = name == d.failOn
	return buf
}
